// Package cli implements the interactive PixKeep client: a REPL over the
// server HTTP API with an idle guard that drops the session after a
// period without commands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/pixkeep/pixkeep/internal/client/api"
	"github.com/pixkeep/pixkeep/internal/client/config"
	"github.com/pixkeep/pixkeep/internal/client/session"
)

// apiClient is the server API surface the CLI uses. The concrete
// api.Client satisfies it; tests substitute stubs.
type apiClient interface {
	Register(ctx context.Context, email, password, username string) error
	Login(ctx context.Context, identifier, password string) (*api.Session, error)
	ListImages(ctx context.Context, search string) ([]api.Image, error)
	UploadImage(ctx context.Context, title, filePath string) (*api.Image, error)
	DeleteImage(ctx context.Context, id string) error
	UpdateUsername(ctx context.Context, username string) error
	ChangeEmail(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, password string) error
	ConfirmEmail(ctx context.Context, token string) error
	DeleteAccount(ctx context.Context, confirmation string) error
	ClearToken()
}

type App struct {
	config *config.Config
	client apiClient
	guard  *session.Guard
	reader *bufio.Reader

	// userName is read by the REPL and cleared by the guard goroutine
	mu       sync.Mutex
	userName string
}

func NewApp(c *config.Config) (*App, error) {
	client := api.NewClient(c.ServerBaseURL, c.RequestTimeout)
	return &App{
		config: c,
		client: client,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
	if a.guard != nil {
		a.guard.Stop()
	}
}

func (a *App) isLoggedIn() bool {
	return a.currentUser() != ""
}

func (a *App) currentUser() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userName
}

func (a *App) setUser(name string) {
	a.mu.Lock()
	a.userName = name
	a.mu.Unlock()
}

// startGuard arms the idle watchdog for a fresh session, replacing any
// guard left over from a previous login.
func (a *App) startGuard() {
	if a.guard != nil {
		a.guard.Stop()
	}
	a.guard = session.NewGuard(a.config.IdleTimeout, a.expireSession)
	a.guard.Start()
}

// expireSession runs on the guard goroutine when the idle timeout elapses.
func (a *App) expireSession() {
	a.client.ClearToken()
	a.setUser("")
	printlnFn()
	printlnFn("Session expired due to inactivity, please log in again.")
}

// touch reports user activity to the idle guard.
func (a *App) touch() {
	if a.guard != nil {
		a.guard.Signal()
	}
}

func (a *App) getStatus() string {
	name := a.currentUser()
	if name == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", name)
}
