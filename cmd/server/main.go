package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go-session-auth-service/internal/app"
	"go-session-auth-service/internal/config"
	"go-session-auth-service/internal/observability"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "session-auth-service",
		Short:         "Bearer-token authentication and session revocation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, loggerProvider, err := observability.NewLogger(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	slog.SetDefault(logger)

	runtime, err := observability.InitRuntime(ctx, cfg, logger, loggerProvider)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}
	defer func() {
		if err := runtime.Shutdown(context.Background()); err != nil {
			logger.Error("observability shutdown", "error", err)
		}
	}()

	db, err := app.OpenDatabase(cfg, logger)
	if err != nil {
		return err
	}

	redisClient := app.NewRedisClient(cfg)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("redis close", "error", err)
		}
	}()

	application := app.InitializeApp(cfg, logger, db, redisClient, runtime)
	return application.Run(ctx)
}
