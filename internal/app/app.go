// Package app assembles the application: configuration, logger, dataset
// cache, services, and the HTTP server, with graceful shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cryptopulse/internal/config"
	"cryptopulse/internal/dataset"
	apierrors "cryptopulse/internal/errors"
	"cryptopulse/internal/infrastructure"
	"cryptopulse/internal/middleware"
	"cryptopulse/internal/services"
	transport "cryptopulse/internal/transport/http"
)

// Version is set at build time.
var Version = "dev"

// Application is the assembled service container.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Router    *chi.Mux
	Server    *http.Server
	Dashboard *services.DashboardService
	Health    *services.HealthService
}

// NewApplication builds the application from configuration. configFile may
// be empty; environment variables then drive everything.
func NewApplication(configFile string) (*Application, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	slog.SetDefault(logger)

	logger.Info("application starting",
		slog.String("version", Version),
		slog.String("dataset", cfg.Dataset.Path),
		slog.Int("port", cfg.Server.Port))

	cache := dataset.NewCache(nil, logger)
	dashboard := services.NewDashboardService(cache, cfg.Dataset.Path, cfg.Analytics, logger)
	health := services.NewHealthService(dashboard)

	app := &Application{
		Config:    cfg,
		Logger:    logger,
		Dashboard: dashboard,
		Health:    health,
	}
	app.Router = app.setupRouter()
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// setupRouter wires the middleware chain and mounts the API routes.
func (a *Application) setupRouter() *chi.Mux {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(a.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Handler)
	if a.Config.Server.RateLimit.Enabled {
		r.Use(middleware.RateLimit(a.Config.Server.RateLimit.RPS, a.Config.Server.RateLimit.Burst))
	}

	errorHandler := apierrors.NewErrorHandler(a.Logger)
	dashboardHandler := transport.NewDashboardHandler(a.Dashboard, a.Config.Analytics, a.Logger, errorHandler)
	healthHandler := transport.NewHealthHandler(a.Health)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", healthHandler.GetHealth)
		api.Mount("/", dashboardHandler.Routes())
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}

// Run starts the HTTP server and blocks until the context is cancelled or
// an interrupt arrives, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warm the dataset cache so the first request doesn't pay for the load
	// and a bad dataset path is visible at startup.
	if ds, err := a.Dashboard.Dataset(ctx); err != nil {
		a.Logger.Warn("dataset not loadable at startup",
			slog.String("error", err.Error()))
	} else {
		a.Logger.Info("dataset ready",
			slog.String("fingerprint", ds.Fingerprint()),
			slog.Int("rows", ds.Len()),
			slog.Int("coins", len(ds.Coins())))
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down",
		slog.Duration("timeout", a.Config.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	a.Logger.Info("server stopped")
	return nil
}
