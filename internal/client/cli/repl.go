package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	touch()
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context, search string) error
	Upload(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	SetUsername(ctx context.Context) error
	SetEmail(ctx context.Context) error
	ConfirmEmail(ctx context.Context) error
	SetPassword(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
}

// runREPL starts a read-eval-print loop for the PixKeep CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Every non-empty line counts as
// user activity and restarts the idle countdown via touch. Unknown commands
// are reported back to the user. The loop exits on scanner EOF or when the
// user types "exit" or "quit".
//
// Commands while not logged in: register, login, confirmemail, exit.
// Commands while logged in: (l)ist [search], upload, delete <id>,
// setusername, setemail, confirmemail, setpassword, delaccount, logout, exit.
//
// Errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("pix %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		a.touch()

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist [search], upload, delete <id>, setusername, setemail, confirmemail, setpassword, delaccount, logout, exit")
			} else {
				printlnFn("Available commands: register, login, confirmemail, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "list":
			search := ""
			if len(args) > 0 {
				search = strings.Join(args, " ")
			}
			_ = a.List(ctx, search)

		case "upload":
			_ = a.Upload(ctx)

		case "delete":
			if len(args) == 0 {
				printlnFn("Usage: delete <id>")
				continue
			}
			_ = a.Delete(ctx, args[0])

		case "setusername":
			_ = a.SetUsername(ctx)

		case "setemail":
			_ = a.SetEmail(ctx)

		case "confirmemail":
			_ = a.ConfirmEmail(ctx)

		case "setpassword":
			_ = a.SetPassword(ctx)

		case "delaccount":
			_ = a.DeleteAccount(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to PixKeep CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
