package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/users-api-keywords/internal/app"
	"github.com/samvad-hq/users-api-keywords/internal/config"
	"github.com/samvad-hq/users-api-keywords/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "users api start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("users api starting", "config", map[string]any{
		"app_name":     cfg.AppName,
		"app_env":      cfg.Env,
		"listen_addr":  cfg.ListenAddr,
		"storage_type": cfg.StorageType,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api, err := app.NewUsersAPI(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize users api", "error", err)
		return err
	}

	if err := api.Run(ctx); err != nil {
		return fmt.Errorf("users api run: %w", err)
	}

	return nil
}
