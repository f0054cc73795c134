// Package repomanager provides the PostgreSQL RepositoryManager, wiring
// repository constructors and schema migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/pixkeep/pixkeep/internal/dbx"
	"github.com/pixkeep/pixkeep/internal/server/migrations"
	"github.com/pixkeep/pixkeep/internal/server/repositories/images"
	"github.com/pixkeep/pixkeep/internal/server/repositories/users"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Images returns an images.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Images(db dbx.DBTX) images.Repository {
	return images.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations points goose at the embedded migrations and applies them.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
