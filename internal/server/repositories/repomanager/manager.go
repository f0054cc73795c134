package repomanager

import (
	"context"
	"database/sql"

	"github.com/pixkeep/pixkeep/internal/dbx"
	"github.com/pixkeep/pixkeep/internal/server/repositories/images"
	"github.com/pixkeep/pixkeep/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so a service can
// run them against the pool or inside a dbx.WithTx transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Images(db dbx.DBTX) images.Repository
}
