package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"productsapi/internal/config"
	"productsapi/internal/logger"
	"productsapi/internal/server"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// @title Products REST API
// @version 1.0.0
// @description API Docs for Products
// @BasePath /

func main() {
	// --- Configuration ---
	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("Failed to parse flags: %v", err)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Data reset ---
	if cfg.Clear {
		if err := server.Clear(ctx, cfg, zl); err != nil {
			zl.Error("failed to clear database", zap.Error(err))
			os.Exit(1)
		}
		zl.Info("database cleared")
		return
	}

	// --- Dependencies ---
	deps, cleanup, err := server.Bootstrap(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to bootstrap", zap.Error(err))
	}
	defer cleanup()

	app := server.New(deps)

	// --- Start HTTP Server ---
	go func() {
		zl.Info("starting server", zap.String("addr", cfg.AppPort), zap.String("driver", cfg.DBDriver))
		if err := app.Listen(cfg.AppPort); err != nil {
			zl.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-ctx.Done()
	zl.Info("shutting down server")

	if err := app.Shutdown(); err != nil {
		zl.Error("error during fiber shutdown", zap.Error(err))
	}
	zl.Info("server gracefully stopped")
}
