package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pixkeep/pixkeep/internal/common"
	"github.com/pixkeep/pixkeep/internal/dbx"
	"github.com/pixkeep/pixkeep/internal/logging"
	"github.com/pixkeep/pixkeep/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLen is the minimum accepted password length.
const MinPasswordLen = 6

// emailChallengeTokenSize is the number of random bytes backing an
// email-change confirmation token.
const emailChallengeTokenSize = 16

// LocalVerifier is a Verifier backed by bcrypt hashes in the users table
// and HS256 JWT session tokens.
type LocalVerifier struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	mailer   Mailer
	logger   logging.Logger
	secret   []byte
	tokenTTL time.Duration
}

func NewLocalVerifier(db *sql.DB, repos repomanager.RepositoryManager, mailer Mailer,
	logger logging.Logger, secret []byte, tokenTTL time.Duration) *LocalVerifier {
	return &LocalVerifier{
		db:       db,
		repos:    repos,
		mailer:   mailer,
		logger:   logger.With("module", "identity"),
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (v *LocalVerifier) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := v.repos.Users(v.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrUnauthorized
	}

	expires := time.Now().Add(v.tokenTTL)
	token, err := GenerateToken(user.ID, v.secret, v.tokenTTL)
	if err != nil {
		return nil, common.ErrInternal
	}

	return &Session{Token: token, AccountID: user.ID, ExpiresAt: expires}, nil
}

func (v *LocalVerifier) HashPassword(password string) ([]byte, error) {
	if len(password) < MinPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, MinPasswordLen)
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

func (v *LocalVerifier) UpdateCredential(ctx context.Context, accountID string, upd CredentialUpdate) error {
	repo := v.repos.Users(v.db)

	if upd.Password != nil {
		hash, err := v.HashPassword(*upd.Password)
		if err != nil {
			return err
		}
		if err := repo.SetPasswordHash(ctx, accountID, hash); err != nil {
			return fmt.Errorf("password update error: %w", err)
		}
	}

	if upd.Email != nil {
		if *upd.Email == "" {
			return fmt.Errorf("%w: email must not be empty", common.ErrValidation)
		}
		token, err := common.MakeRandHexString(emailChallengeTokenSize)
		if err != nil {
			return common.ErrInternal
		}
		// Staging and challenge delivery run in one transaction, so a
		// failed delivery does not leave a live token behind.
		err = dbx.WithTx(ctx, v.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			if err := v.repos.Users(tx).StageEmailChange(ctx, accountID, *upd.Email, token); err != nil {
				return fmt.Errorf("email change staging error: %w", err)
			}
			if err := v.mailer.SendEmailChallenge(ctx, *upd.Email, token); err != nil {
				return fmt.Errorf("email challenge delivery error: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (v *LocalVerifier) ConfirmEmailChange(ctx context.Context, token string) error {
	if err := v.repos.Users(v.db).ConfirmEmailChange(ctx, token); err != nil {
		return err
	}
	v.logger.Info(ctx, "email change confirmed")
	return nil
}

func (v *LocalVerifier) DeleteIdentity(ctx context.Context, accountID string) error {
	if err := v.repos.Users(v.db).Delete(ctx, accountID); err != nil {
		return err
	}
	v.logger.Info(ctx, "identity deleted", "account_id", accountID)
	return nil
}
