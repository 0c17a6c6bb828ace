package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/wcs-describe/internal/core/config"
	"github.com/mohammed-shakir/wcs-describe/internal/core/health"
	middleware "github.com/mohammed-shakir/wcs-describe/internal/core/middleware"
	"github.com/mohammed-shakir/wcs-describe/internal/core/router"
)

// Deps are the handlers the HTTP surface dispatches to.
type Deps struct {
	Coverages router.CoverageIndex
	Describe  router.DescribeHandler
	Metrics   http.Handler
	Ready     []health.Check
}

// NewRouter builds the service routes.
func NewRouter(cfg config.Config, logger *slog.Logger, d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(d.Ready...))
	if d.Metrics != nil && cfg.Metrics.Path != "" {
		r.Method(http.MethodGet, cfg.Metrics.Path, d.Metrics)
	}
	r.Get("/wcs", router.HandleWCS(logger, d.Coverages, d.Describe))
	return r
}

// sets up http and starts serving
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, d Deps) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(cfg, logger, d),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
