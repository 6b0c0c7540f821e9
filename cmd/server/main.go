package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"shareregistry/internal/app"
	"shareregistry/internal/platform/config"
	"shareregistry/internal/platform/httpserver"
	"shareregistry/internal/platform/logger"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New(cfg.Log)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			log.Error("shutdown incomplete", "error", err)
		}
	}()

	if err := a.BootstrapAdmin(ctx); err != nil {
		return err
	}

	srv := httpserver.New(cfg.Server.Addr, a.Router())
	log.Info("starting share registry", "addr", cfg.Server.Addr)
	if err := httpserver.Run(ctx, srv, cfg.Server.ShutdownTimeout); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
