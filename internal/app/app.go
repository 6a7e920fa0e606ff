package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/salonbook/admin-panel/internal/config"
	"github.com/salonbook/admin-panel/internal/database"
	"github.com/salonbook/admin-panel/internal/telemetry"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg               config.Application
	db                *pgxpool.Pool
	router            *mux.Router
	srv               *http.Server
	shutdownTelemetry telemetry.ShutdownFunc
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, err
	}

	// DB + migrations
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(cfg.Database); err != nil {
		db.Close()
		return nil, err
	}

	deps := BuildDependencies(db, cfg, ReadyCheck{Name: "database", Check: database.ReadyCheck(db)})
	r := NewRouter(deps, cfg)

	srv := &http.Server{
		Handler:      otelhttp.NewHandler(r, cfg.Telemetry.ServiceName),
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		WriteTimeout: cfg.Server.WriteTimeout,
		ReadTimeout:  cfg.Server.ReadTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Application{
		cfg:               cfg,
		db:                db,
		router:            r,
		srv:               srv,
		shutdownTelemetry: shutdownTelemetry,
	}, nil
}

// NewRouter builds the router with middleware and all routes registered.
func NewRouter(deps *Dependencies, cfg config.Application) *mux.Router {
	r := mux.NewRouter()
	SetupMiddleware(r, cfg)
	RegisterRoutes(r, deps, cfg)
	return r
}

// Run starts the HTTP server and blocks until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http server shutdown error: %v", err)
	}
	if err := a.shutdownTelemetry(shutdownCtx); err != nil {
		log.Errorf("telemetry shutdown error: %v", err)
	}
	a.db.Close()
	log.Info("Server stopped")

	return serveErr
}
