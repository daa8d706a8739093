package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"spacedesk/internal/gateway/app"
	"spacedesk/internal/gateway/config"
)

const shutdownTimeout = 5 * time.Second

func (a *cliApp) serveCommand() *cobra.Command {
	var (
		port  string
		local bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway (connect RPC, websocket watch, health)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			load := config.Load
			if local {
				load = config.LoadLocal
			}
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if port != "" {
				cfg.Port = config.NormalizePort(port)
			}
			a.applyLogLevel(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, a.logger)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Listen address (overrides PORT)")
	cmd.Flags().BoolVar(&local, "local", false, "Use docker-compose defaults for postgres and minio")
	return cmd
}

// runServer blocks until ctx is done or the listener fails.
func runServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("server exiting")
	return nil
}

func (a *cliApp) applyLogLevel(raw string) {
	if raw == "" || a.verbose || !a.hasLevel {
		return
	}
	lvl, err := zapcore.ParseLevel(raw)
	if err != nil {
		a.logger.Warn("ignoring LOG_LEVEL", zap.String("value", raw), zap.Error(err))
		return
	}
	a.level.SetLevel(lvl)
}
