package repomanager

import (
	"context"
	"database/sql"

	"github.com/avolkov/askpdf/internal/dbx"
	"github.com/avolkov/askpdf/internal/server/repositories/files"
)

// RepositoryManager vends repository implementations bound to a DBTX and
// exposes a schema migration hook.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Files(db dbx.DBTX) files.Repository
}
