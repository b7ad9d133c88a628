package httpapi

import (
	"fmt"
	"net/http"

	"github.com/avolkov/askpdf/internal/common"
)

type indexRequest struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
}

type queryRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if req.Bucket == "" || req.Path == "" {
		s.writeFailure(w, r, fmt.Errorf("%w: bucket and path are required", common.ErrInvalidInput))
		return
	}

	result, err := s.retriever.Index(r.Context(), req.Bucket, req.Path)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if req.Question == "" {
		s.writeFailure(w, r, fmt.Errorf("%w: question is required", common.ErrInvalidInput))
		return
	}

	result, err := s.retriever.Query(r.Context(), req.Question)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
