package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/avolkov/askpdf/internal/common"
	"github.com/avolkov/askpdf/internal/server/auth"
)

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info(r.Context(), "request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authorizeOwner verifies that the caller presenting a userId actually is
// that user: the request must carry a bearer token whose subject equals
// ownerID. Requests without an owner scope pass through.
func (s *Server) authorizeOwner(r *http.Request, ownerID string) error {
	if ownerID == "" {
		return nil
	}

	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return common.ErrInvalidToken
	}

	sub, err := auth.GetUserIDFromToken(strings.TrimPrefix(header, prefix), s.jwtSecret)
	if err != nil {
		return err
	}
	if sub != ownerID {
		return common.ErrUnauthorized
	}
	return nil
}
