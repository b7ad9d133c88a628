package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avolkov/askpdf/internal/common"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeFailure maps a gateway error onto an HTTP status. Input problems
// and rejected credentials are the client's fault; everything else is a
// provider failure answered with 500 and the provider's message.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrAuthRejected):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrUnauthorized):
		status = http.StatusForbidden
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}

	writeError(w, status, err.Error())
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return common.ErrInvalidInput
	}
	return nil
}
