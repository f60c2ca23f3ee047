package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rickgao/botrelay/internal/telemetry"
	"github.com/rickgao/botrelay/internal/version"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the hub, the relay links and the health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath, slog.Default())
		},
	}
}

func runServe(configPath string, logger *slog.Logger) error {
	logger.Info("starting botrelay",
		"version", version.Version,
		"commit", version.Commit,
		"config", configPath,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	a, err := openApp(ctx, configPath, logger)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	logger.Info("configuration loaded",
		"instance_id", a.cfg.Instance.ID,
		"store", a.cfg.Store.Driver,
		"links", len(a.cfg.Links),
		"routes", len(a.hub.Routes()),
	)

	shutdownTracing, err := telemetry.Setup(ctx, a.cfg.Telemetry, version.Version)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	sups, err := newSupervisors(a.cfg.Links, a.styles, a.hub, logger)
	if err != nil {
		return err
	}

	healthServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Health.Port),
		Handler:           createHealthHandler(a.cfg.Health.Path, a.store, a.hub, sups, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting health server", "port", a.cfg.Health.Port, "path", a.cfg.Health.Path)
		if err := healthServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server error", "error", err)
		}
	}()

	for _, s := range sups {
		if err := s.Start(ctx); err != nil {
			return err
		}
	}

	logger.Info("botrelay running",
		"instance_id", a.cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d%s", a.cfg.Health.Port, a.cfg.Health.Path),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, s := range sups {
		s.Stop(shutdownCtx)
	}
	healthServer.Shutdown(shutdownCtx)

	logger.Info("botrelay stopped")
	return nil
}
