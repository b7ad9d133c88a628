package files

import (
	"context"
	"fmt"

	"github.com/avolkov/askpdf/internal/dbx"
	"github.com/avolkov/askpdf/internal/server/models"
)

// PostgresRepository implements the upload registry over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts one registry row for a freshly uploaded object.
func (r *PostgresRepository) Create(ctx context.Context, record *models.FileRecord) error {
	query := `
		INSERT INTO files (owner_id, bucket, path, filename)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		record.OwnerID, record.Bucket, record.Path, record.Filename).
		Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's registry rows, newest first, capped at
// limit.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*models.FileRecord, error) {
	query := `
		SELECT id, owner_id, bucket, path, filename, created_at FROM files
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.FileRecord
	for rows.Next() {
		var item models.FileRecord
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Bucket, &item.Path, &item.Filename, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteByPath removes the row for path. Removing an absent row is not an
// error; this is used to undo a registration after a failed upload.
func (r *PostgresRepository) DeleteByPath(ctx context.Context, path string) error {
	query := `DELETE FROM files WHERE path = $1`
	if _, err := r.db.ExecContext(ctx, query, path); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}
	return nil
}
