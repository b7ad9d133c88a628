// Package server assembles the gateway: object storage, identity
// provider, retrieval service, upload registry, and the HTTP surface.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/avolkov/askpdf/internal/logging"
	"github.com/avolkov/askpdf/internal/server/config"
	"github.com/avolkov/askpdf/internal/server/httpapi"
	"github.com/avolkov/askpdf/internal/server/identity"
	"github.com/avolkov/askpdf/internal/server/repositories/repomanager"
	"github.com/avolkov/askpdf/internal/server/retrieval"
	"github.com/avolkov/askpdf/internal/server/services"
	"github.com/avolkov/askpdf/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	gateway, err := storage.NewGateway(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	if err := gateway.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("bucket init error: %w", err)
	}

	idp := identity.NewClient(cfg.AuthBaseEndpoint, cfg.AuthServiceKey, nil)
	rag := retrieval.NewClient(cfg.RagBaseEndpoint, nil)
	uploads := services.NewUploadService(gateway, db, rm, logger)

	srv := httpapi.NewServer(cfg.EndpointAddr, []byte(cfg.JWTSecret), logger, idp, uploads, rag)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
