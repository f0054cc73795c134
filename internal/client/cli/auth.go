package cli

import (
	"context"
	"errors"
	"os"

	"github.com/pixkeep/pixkeep/internal/client/api"
	"github.com/pixkeep/pixkeep/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, username and password and creates an
// account. The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	username, err := getSimpleText(a.reader, "Choose a username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.Register(ctx, email, string(password), username); err != nil {
		printlnFn("Registration failed:", err.Error())
		return err
	}

	printlnFn("Success! You can now log in.")
	return nil
}

// Login prompts for an identifier (username or email) and a password, and
// authenticates against the server. On success the idle guard is armed and
// the prompt shows the identifier.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter username or email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	_, err = a.client.Login(ctx, identifier, string(password))
	if err != nil {
		if errors.Is(err, api.ErrUnavailable) {
			printlnFn("Server unavailable, try again later.")
		} else {
			printlnFn("Login failed:", err.Error())
		}
		return err
	}

	a.setUser(identifier)
	a.startGuard()
	printlnFn("Login successful")
	return nil
}

// Logout drops the session token and disarms the idle guard.
func (a *App) Logout(ctx context.Context) error {
	a.client.ClearToken()
	a.setUser("")
	if a.guard != nil {
		a.guard.Stop()
	}
	printlnFn("Logged out")
	return nil
}
