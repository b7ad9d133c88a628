// Package httpapi binds the gateways to HTTP endpoints. Handlers perform
// presence and media-type validation only; everything else is delegated
// and the result (or translated error) is returned unchanged.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/avolkov/askpdf/internal/logging"
	"github.com/avolkov/askpdf/internal/server/models"
)

// IdentityProvider is the part of the identity gateway the surface needs.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
}

// Retriever proxies indexing and question answering.
type Retriever interface {
	Index(ctx context.Context, bucket, path string) (*models.IndexResult, error)
	Query(ctx context.Context, question string) (*models.AnswerResult, error)
}

// Uploads stores documents and serves per-owner listings.
type Uploads interface {
	Upload(ctx context.Context, payload []byte, contentType, originalName, ownerID string) (*models.StoredFile, error)
	ListFiles(ctx context.Context, ownerID string) ([]models.FileEntry, error)
	History(ctx context.Context, ownerID string) ([]*models.FileRecord, error)
}

// Server is the HTTP front of the gateway.
type Server struct {
	addr      string
	jwtSecret []byte
	logger    logging.Logger

	identity  IdentityProvider
	uploads   Uploads
	retriever Retriever
}

// NewServer wires the HTTP surface.
func NewServer(addr string, jwtSecret []byte, logger logging.Logger, identity IdentityProvider, uploads Uploads, retriever Retriever) *Server {
	return &Server{
		addr:      addr,
		jwtSecret: jwtSecret,
		logger:    logger,
		identity:  identity,
		uploads:   uploads,
		retriever: retriever,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/signup", s.handleSignUp)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	mux.HandleFunc("POST /upload/pdf", s.handleUploadPDF)
	mux.HandleFunc("POST /upload/getFiles", s.handleGetFiles)
	mux.HandleFunc("POST /upload/history", s.handleHistory)

	mux.HandleFunc("POST /rag/index", s.handleIndex)
	mux.HandleFunc("POST /rag/query", s.handleQuery)

	mux.HandleFunc("GET /healthz", s.handleHealth)

	return s.loggingMiddleware(corsMiddleware(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "http server listening", "addr", s.addr)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
