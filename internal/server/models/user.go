// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account record. The username is an alias for login only; the
// email is the canonical identifier handed to the credential verifier.
type User struct {
	// ID is the immutable, opaque account identifier.
	ID string
	// Username is unique and always stored lower-cased (3-50 characters).
	Username string
	// Email is the unique login email.
	Email string
	// PasswordHash is the bcrypt hash of the account password.
	PasswordHash []byte

	// PendingEmail holds a requested new email until its confirmation
	// challenge is completed; EmailChangeToken is the challenge token.
	PendingEmail     string
	EmailChangeToken string

	// PasswordChangedAt records the last password change, for audit.
	PasswordChangedAt *time.Time

	CreatedAt time.Time
}
