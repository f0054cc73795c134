// Package users contains the account repository.
package users

import (
	"context"
	"time"

	"github.com/pixkeep/pixkeep/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetEmailByUsername is the unauthenticated projection used by the
	// identifier resolver. It returns exactly the email field and nothing
	// else about the account.
	GetEmailByUsername(ctx context.Context, username string) (string, error)

	UpdateUsername(ctx context.Context, id, username string) error
	SetPasswordHash(ctx context.Context, id string, hash []byte) error
	TouchPasswordChanged(ctx context.Context, id string, at time.Time) error

	StageEmailChange(ctx context.Context, id, pendingEmail, token string) error
	ConfirmEmailChange(ctx context.Context, token string) error

	Delete(ctx context.Context, id string) error
}
