// Package services contains server-side business logic. This file
// implements UploadService, which validates uploads, hands them to the
// storage gateway, and keeps the owner-to-file registry in step.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avolkov/askpdf/internal/common"
	"github.com/avolkov/askpdf/internal/logging"
	"github.com/avolkov/askpdf/internal/server/models"
	"github.com/avolkov/askpdf/internal/server/repositories/repomanager"
)

// PDFContentType is the only media type accepted for uploads.
const PDFContentType = "application/pdf"

// historyLimit caps the registry listing, mirroring the provider listing cap.
const historyLimit = 100

// StorageGateway is the part of the object-storage gateway the upload
// service needs.
type StorageGateway interface {
	Upload(ctx context.Context, payload []byte, contentType, originalName, ownerID string) (*models.StoredFile, error)
	List(ctx context.Context, ownerID string) ([]models.FileEntry, error)
	Delete(ctx context.Context, key string) error
}

// UploadService validates and stores documents and records ownership.
type UploadService struct {
	gateway     StorageGateway
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

// NewUploadService constructs an UploadService.
func NewUploadService(gateway StorageGateway, db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) *UploadService {
	return &UploadService{gateway: gateway, db: db, repomanager: rm, logger: logger}
}

// Upload validates the payload, writes it through the gateway, and for
// owned uploads records the owner-to-file relation. A registry failure
// undoes the object write so storage and registry cannot drift apart.
func (s *UploadService) Upload(ctx context.Context, payload []byte, contentType, originalName, ownerID string) (*models.StoredFile, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: no file uploaded", common.ErrInvalidInput)
	}
	if contentType != PDFContentType {
		return nil, fmt.Errorf("%w: only PDF files are allowed", common.ErrInvalidInput)
	}

	file, err := s.gateway.Upload(ctx, payload, contentType, originalName, ownerID)
	if err != nil {
		return nil, err
	}

	if ownerID != "" {
		record := &models.FileRecord{
			OwnerID:  ownerID,
			Bucket:   file.Bucket,
			Path:     file.Path,
			Filename: file.Filename,
		}
		if err := s.repomanager.Files(s.db).Create(ctx, record); err != nil {
			s.logger.Warn(ctx, "registry write failed, undoing upload", "path", file.Path, "error", err)
			_ = s.gateway.Delete(ctx, file.Path)
			return nil, fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
		}
	}

	return file, nil
}

// ListFiles returns the owner's stored objects with fresh signed URLs.
// An empty ownerID yields an empty listing.
func (s *UploadService) ListFiles(ctx context.Context, ownerID string) ([]models.FileEntry, error) {
	return s.gateway.List(ctx, ownerID)
}

// History returns the owner's recorded uploads from the registry, newest
// first.
func (s *UploadService) History(ctx context.Context, ownerID string) ([]*models.FileRecord, error) {
	if ownerID == "" {
		return []*models.FileRecord{}, nil
	}
	records, err := s.repomanager.Files(s.db).ListByOwner(ctx, ownerID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrListFailed, err)
	}
	if records == nil {
		records = []*models.FileRecord{}
	}
	return records, nil
}
