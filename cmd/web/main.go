// Package main starts the browser-facing storefront web service.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	webcmd "github.com/georgemunganga/nwc-marketplace-clone/internal/cmd/web"
)

func main() {
	cfg, err := webcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	logger, err := webcmd.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Fatalf("configure logging: %v", err)
	}
	slog.SetDefault(logger)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := webcmd.Run(ctx, cfg, logger); err != nil {
		logger.Error("failed to serve", "error", err)
		os.Exit(1)
	}
}
