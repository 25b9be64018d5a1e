package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rajasatyajit/bousai/config"
	"github.com/rajasatyajit/bousai/internal/database"
	"github.com/rajasatyajit/bousai/internal/logger"
	"github.com/rajasatyajit/bousai/internal/messaging"
	"github.com/rajasatyajit/bousai/internal/metrics"
	middlewares "github.com/rajasatyajit/bousai/internal/middleware"
	"github.com/rajasatyajit/bousai/internal/store"
	"github.com/rajasatyajit/bousai/internal/weather"
	"github.com/rajasatyajit/bousai/internal/webhook"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// maxCallbackBody bounds inbound webhook payloads
const maxCallbackBody = 1 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateWebhook(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid webhook config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting bousai webhook",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
		"registry", cfg.Registry.Backend,
		"signature_check", cfg.Line.ChannelSecret != "",
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close()

	registry, err := store.New(ctx, cfg, db)
	if err != nil {
		logger.Fatal("Failed to initialize user registry", "error", err)
	}
	defer closeRegistry(registry)

	handler := webhook.NewHandler(
		registry,
		messaging.NewLineClient(cfg.Line, cfg.HTTP.Timeout),
		weather.NewClient(cfg.Weather, cfg.HTTP.Timeout),
		cfg.Line.ChannelSecret,
		Version, BuildTime, GitCommit,
	)

	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newRouter(cfg, handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

// closeRegistry releases backends that hold connections, such as redis
func closeRegistry(st store.Store) {
	c, ok := st.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logger.Error("Failed to close user registry", "error", err)
	}
}

// newRouter wires the global middleware stack around the webhook routes
func newRouter(cfg *config.Config, h *webhook.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.Logging)
	r.Use(middlewares.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.WriteTimeout))
	r.Use(middlewares.Security)
	r.Use(middlewares.BodyLimit(maxCallbackBody))

	h.RegisterRoutes(r)
	return r
}

func startMetricsServer(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", "address", addr, "path", path)

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server failed", "error", err)
	}
}
