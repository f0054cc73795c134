// Package services contains the server-side business logic: identifier
// resolution, account lifecycle, and the image asset coordinator keeping
// object storage and metadata consistent.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pixkeep/pixkeep/internal/common"
	"github.com/pixkeep/pixkeep/internal/logging"
	"github.com/pixkeep/pixkeep/internal/server/identity"
	"github.com/pixkeep/pixkeep/internal/server/models"
	"github.com/pixkeep/pixkeep/internal/server/repositories/repomanager"
)

const (
	// DeleteConfirmationPhrase must be typed verbatim before an account
	// deletion is accepted.
	DeleteConfirmationPhrase = "DELETE"

	minUsernameLen = 3
	maxUsernameLen = 50
)

// AccountService handles registration, login and account mutations.
// Credential state lives behind the identity.Verifier; account rows live
// in the users repository.
type AccountService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	verifier identity.Verifier
	logger   logging.Logger
	now      func() time.Time
}

func NewAccountService(db *sql.DB, repos repomanager.RepositoryManager,
	verifier identity.Verifier, logger logging.Logger) *AccountService {
	return &AccountService{
		db:       db,
		repos:    repos,
		verifier: verifier,
		logger:   logger.With("module", "accounts"),
		now:      time.Now,
	}
}

// normalizeUsername lower-cases and validates a user-chosen username.
func normalizeUsername(username string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return "", fmt.Errorf("%w: username must be %d-%d characters",
			common.ErrValidation, minUsernameLen, maxUsernameLen)
	}
	return username, nil
}

// SignUp creates the credential identity and the account row.
func (s *AccountService) SignUp(ctx context.Context, email, password, username string) (*models.User, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", common.ErrValidation)
	}

	hash, err := s.verifier.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: username, Email: email, PasswordHash: hash}
	created, err := s.repos.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) || errors.Is(err, common.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating account: %v", err)
	}

	s.logger.Info(ctx, "account created", "account_id", created.ID)
	return created, nil
}

// UpdateUsername applies a single keyed update. Uniqueness is not
// pre-checked: a store constraint failure surfaces as ErrUsernameTaken.
func (s *AccountService) UpdateUsername(ctx context.Context, accountID, username string) error {
	username, err := normalizeUsername(username)
	if err != nil {
		return err
	}

	if err := s.repos.Users(s.db).UpdateUsername(ctx, accountID, username); err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrUpdateFailed, err)
	}
	return nil
}

// ChangeEmail starts the verifier's email-change flow. The account's login
// email stays unchanged until the mailed challenge is confirmed.
func (s *AccountService) ChangeEmail(ctx context.Context, accountID, newEmail string) error {
	return s.verifier.UpdateCredential(ctx, accountID, identity.CredentialUpdate{Email: &newEmail})
}

// ChangePassword changes the credential, then records the change time for
// audit. The timestamp write is best-effort: its failure never undoes or
// fails the password change.
func (s *AccountService) ChangePassword(ctx context.Context, accountID, newPassword string) error {
	if err := s.verifier.UpdateCredential(ctx, accountID, identity.CredentialUpdate{Password: &newPassword}); err != nil {
		return err
	}

	if err := s.repos.Users(s.db).TouchPasswordChanged(ctx, accountID, s.now()); err != nil {
		s.logger.Warn(ctx, "password change audit timestamp not recorded",
			"account_id", accountID, "error", err.Error())
	}
	return nil
}

// ConfirmEmailChange completes a staged email change by its mailed token.
func (s *AccountService) ConfirmEmailChange(ctx context.Context, token string) error {
	return s.verifier.ConfirmEmailChange(ctx, token)
}

// DeleteAccount removes the credential-store identity after an explicit
// typed confirmation. Image rows cascade in the database; their objects
// are reclaimed by the storage sweeper.
func (s *AccountService) DeleteAccount(ctx context.Context, accountID, confirmation string) error {
	if confirmation != DeleteConfirmationPhrase {
		return common.ErrConfirmationMismatch
	}

	if err := s.verifier.DeleteIdentity(ctx, accountID); err != nil {
		return fmt.Errorf("error deleting account: %w", err)
	}

	s.logger.Info(ctx, "account deleted", "account_id", accountID)
	return nil
}
