// Package identity models the credential verifier: the component holding
// password credentials and issuing session tokens. The core talks to it
// through the Verifier interface so the hosted implementation can be
// swapped for fakes in tests.
package identity

import (
	"context"
	"time"
)

// Session is a provider-issued credential for an authenticated account.
// Its idle-activity lifecycle is owned by the client; ExpiresAt is the
// hard server-side bound.
type Session struct {
	Token     string
	AccountID string
	ExpiresAt time.Time
}

// CredentialUpdate carries an email and/or a password change. Nil fields
// are left untouched.
type CredentialUpdate struct {
	Email    *string
	Password *string
}

type Verifier interface {
	// SignIn verifies the password for the canonical email and mints a
	// session. Unknown email and wrong password are indistinguishable to
	// the caller.
	SignIn(ctx context.Context, email, password string) (*Session, error)

	// HashPassword validates and hashes a plaintext password for storage.
	HashPassword(password string) ([]byte, error)

	// UpdateCredential applies a credential change. An email change is
	// staged behind a confirmation challenge mailed to the new address;
	// the login email stays unchanged until the challenge is confirmed.
	UpdateCredential(ctx context.Context, accountID string, upd CredentialUpdate) error

	// ConfirmEmailChange completes a staged email change by its token.
	ConfirmEmailChange(ctx context.Context, token string) error

	// DeleteIdentity removes the account's credential-store identity.
	DeleteIdentity(ctx context.Context, accountID string) error
}

// Mailer delivers the email-change confirmation challenge. Template and
// transport are up to the host application.
type Mailer interface {
	SendEmailChallenge(ctx context.Context, email, token string) error
}

// NopMailer discards challenges. Useful in development setups without an
// outbound mail path.
type NopMailer struct{}

func (NopMailer) SendEmailChallenge(context.Context, string, string) error { return nil }
