package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/regwatch-hq/regwatch-summarizer/internal/app"
	"github.com/regwatch-hq/regwatch-summarizer/internal/config"
	"github.com/regwatch-hq/regwatch-summarizer/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "summarizer start failed: %v\n", err)
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

	log.InfoObj("summarizer starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize app", "error", err)
		return err
	}

	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("session run: %w", err)
	}

	return nil
}
