package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/newsdeck-hq/newsdeck-aggregator/internal/app"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/config"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "aggregator start failed: %v\n", err)
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

	logger.InfoObj("aggregator starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	aggregator, err := app.NewAggregator(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize aggregator", "error", err)
		return err
	}

	if err := aggregator.Run(ctx); err != nil {
		return fmt.Errorf("aggregator run: %w", err)
	}

	return nil
}
