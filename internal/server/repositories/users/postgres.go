package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pixkeep/pixkeep/internal/common"
	"github.com/pixkeep/pixkeep/internal/dbx"
	"github.com/pixkeep/pixkeep/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// mapUniqueViolation converts Postgres unique-constraint failures into
// the domain errors surfaced to the user.
func mapUniqueViolation(err error) error {
	switch dbx.UniqueViolationConstraint(err) {
	case "users_username_key":
		return common.ErrUsernameTaken
	case "users_email_key":
		return common.ErrEmailTaken
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, password_changed_at FROM users
		 WHERE id = $1
		 `
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, password_changed_at FROM users
		 WHERE email = $1
		 `
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var changedAt sql.NullTime
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &changedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if changedAt.Valid {
		user.PasswordChangedAt = &changedAt.Time
	}
	return user, nil
}

// GetEmailByUsername selects only the email column. The uniqueness
// constraint guarantees at most one row; if more than one ever comes back
// the lookup reports not-found instead of picking arbitrarily.
func (r *PostgresRepository) GetEmailByUsername(ctx context.Context, username string) (string, error) {
	query :=
		`SELECT email FROM users
		 WHERE username = $1
		 `

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return "", fmt.Errorf("db error: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}

	if len(emails) != 1 || emails[0] == "" {
		return "", common.ErrNotFound
	}
	return emails[0], nil
}

func (r *PostgresRepository) UpdateUsername(ctx context.Context, id, username string) error {
	query :=
		`UPDATE users SET username = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, username)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) SetPasswordHash(ctx context.Context, id string, hash []byte) error {
	query :=
		`UPDATE users SET password_hash = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, hash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) TouchPasswordChanged(ctx context.Context, id string, at time.Time) error {
	query :=
		`UPDATE users SET password_changed_at = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) StageEmailChange(ctx context.Context, id, pendingEmail, token string) error {
	query :=
		`UPDATE users SET pending_email = $2, email_change_token = $3
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, pendingEmail, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) ConfirmEmailChange(ctx context.Context, token string) error {
	query :=
		`UPDATE users SET email = pending_email, pending_email = NULL, email_change_token = NULL
		 WHERE email_change_token = $1 AND pending_email IS NOT NULL
		 `

	res, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query :=
		`DELETE FROM users
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
