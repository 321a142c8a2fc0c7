package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sakif/taskboard/internal/auth"
	"github.com/sakif/taskboard/internal/config"
	"github.com/sakif/taskboard/internal/server"
	"github.com/sakif/taskboard/internal/telemetry"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	// === 1. READ CONFIGURATION ===
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if portFlag != 0 {
		cfg.Port = portFlag
	}

	// === 2. SET UP LOGGING ===
	logger, err := newLogger(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// SIGINT/SIGTERM cancel ctx, which starts the graceful shutdown.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === 3. TRACING (opt-in) ===
	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown failed", slog.String("error", err.Error()))
		}
	}()

	// === 4. DATABASE ===
	db, err := openStore(ctx, cfg.DB, true)
	if err != nil {
		return err
	}

	// === 5. AUTH ===
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		db.Close()
		return err
	}
	passwords := auth.NewPasswordService(cfg.BcryptCost)

	// === 6. CREATE AND START THE SERVER ===
	// Start blocks until ctx is cancelled and closes the database on the way out.
	srv := server.New(server.Config{Port: cfg.Port}, db, tokens, passwords, logger)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("taskboard: %w", err)
	}
	return nil
}
