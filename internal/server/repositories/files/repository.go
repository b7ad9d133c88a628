package files

import (
	"context"

	"github.com/avolkov/askpdf/internal/server/models"
)

// Repository records which owner each uploaded object belongs to.
type Repository interface {
	Create(ctx context.Context, record *models.FileRecord) error
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*models.FileRecord, error)
	DeleteByPath(ctx context.Context, path string) error
}
