package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/avolkov/askpdf/internal/common"
	"github.com/avolkov/askpdf/internal/server/services"
)

// maxUploadMemory bounds the multipart parser's in-memory buffer.
const maxUploadMemory = 32 << 20

func (s *Server) handleUploadPDF(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.writeFailure(w, r, fmt.Errorf("%w: no file uploaded", common.ErrInvalidInput))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeFailure(w, r, fmt.Errorf("%w: no file uploaded", common.ErrInvalidInput))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != services.PDFContentType {
		s.writeFailure(w, r, fmt.Errorf("%w: only PDF files are allowed", common.ErrInvalidInput))
		return
	}

	ownerID := r.FormValue("userId")
	if err := s.authorizeOwner(r, ownerID); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	payload, err := io.ReadAll(file)
	if err != nil {
		s.writeFailure(w, r, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		return
	}

	stored, err := s.uploads.Upload(r.Context(), payload, contentType, header.Filename, ownerID)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "file uploaded", "path", stored.Path, "owner", ownerID)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"bucket":    stored.Bucket,
		"path":      stored.Path,
		"filename":  stored.Filename,
		"signedUrl": stored.SignedURL,
	})
}

type ownerRequest struct {
	UserID string `json:"userId"`
}

func (s *Server) handleGetFiles(w http.ResponseWriter, r *http.Request) {
	var req ownerRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	if err := s.authorizeOwner(r, req.UserID); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	entries, err := s.uploads.ListFiles(r.Context(), req.UserID)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var req ownerRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	if err := s.authorizeOwner(r, req.UserID); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	records, err := s.uploads.History(r.Context(), req.UserID)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}
