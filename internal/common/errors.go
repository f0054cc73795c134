// Package common defines sentinel errors shared by the client and server
// layers of PixKeep. Callers match these values with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Caller-correctable input errors. Raised before any network or storage
	// call is made.
	ErrValidation = errors.New("validation error")

	// Business-rule rejections.
	ErrIdentifierNotFound   = errors.New("identifier not found")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrEmailTaken           = errors.New("email already taken")
	ErrConfirmationMismatch = errors.New("confirmation phrase mismatch")

	// Authorization.
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")

	// External-dependency failures. The coordinator documents which store
	// a failed operation reached; the record/object state is described by
	// the error, never silently retried.
	ErrStorageWriteFailed   = errors.New("object storage write failed")
	ErrMetadataWriteFailed  = errors.New("metadata write failed")
	ErrMetadataDeleteFailed = errors.New("metadata delete failed")
	ErrAlreadyDeleted       = errors.New("already deleted")
	ErrUpdateFailed         = errors.New("update failed")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Generic internal failure, returned where details must not leak.
	ErrInternal = errors.New("internal error")
)
