package cli

import (
	"context"
	"os"

	"github.com/pixkeep/pixkeep/internal/common"
)

// deleteConfirmationPhrase must be typed verbatim to delete the account.
const deleteConfirmationPhrase = "DELETE"

// SetUsername prompts for a new username and updates the account.
func (a *App) SetUsername(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter new username", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.client.UpdateUsername(ctx, username); err != nil {
		printlnFn("Update failed:", err.Error())
		return err
	}

	a.setUser(username)
	printlnFn("Username updated.")
	return nil
}

// SetEmail starts an email change. The login email stays unchanged until
// the confirmation mailed to the new address is entered via confirmemail.
func (a *App) SetEmail(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter new email", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.client.ChangeEmail(ctx, email); err != nil {
		printlnFn("Email change failed:", err.Error())
		return err
	}

	printlnFn("Confirmation sent to the new address.")
	return nil
}

// ConfirmEmail completes a staged email change with the mailed token.
func (a *App) ConfirmEmail(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter confirmation token", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.client.ConfirmEmail(ctx, token); err != nil {
		printlnFn("Confirmation failed:", err.Error())
		return err
	}

	printlnFn("Email confirmed.")
	return nil
}

// SetPassword prompts for a new password and updates the credential.
func (a *App) SetPassword(ctx context.Context) error {
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.ChangePassword(ctx, string(password)); err != nil {
		printlnFn("Password change failed:", err.Error())
		return err
	}

	printlnFn("Password updated.")
	return nil
}

// DeleteAccount asks the user to type the confirmation phrase and deletes
// the account. Anything other than the exact phrase aborts locally without
// a server call.
func (a *App) DeleteAccount(ctx context.Context) error {
	phrase, err := getSimpleText(a.reader,
		"Type "+deleteConfirmationPhrase+" to permanently remove your account", os.Stdout)
	if err != nil {
		return err
	}

	if phrase != deleteConfirmationPhrase {
		printlnFn("Aborted.")
		return nil
	}

	if err := a.client.DeleteAccount(ctx, phrase); err != nil {
		printlnFn("Account deletion failed:", err.Error())
		return err
	}

	return a.Logout(ctx)
}
