package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"mutafriches/internal/bootstrap"
	"mutafriches/internal/platform/config"
	"mutafriches/internal/platform/httpserver"
	"mutafriches/internal/platform/logger"
	"mutafriches/internal/platform/metrics"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	srv := httpserver.New(cfg.Server.Addr, bootstrap.NewRouter(app, metrics.New()))

	go func() {
		log.Info("starting mutafriches", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	// Pending audit logs and evaluation records are flushed after the last
	// request has returned.
	if err := app.Close(shutdownCtx); err != nil {
		log.Error("release resources", "error", err)
	}
	log.Info("stopped")
}
