// Package cmd holds the startup scaffolding shared by service commands.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/platform/config"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/platform/otel"
)

// ServiceWeb names the browser-facing storefront service in telemetry.
const ServiceWeb = "storefront-web"

const defaultTelemetryShutdown = 5 * time.Second

// Load fills cfg from the environment, lets bind register flags whose
// defaults are the environment values, then parses args. A flag given on
// the command line always wins.
func Load[T any](cfg *T, fs *flag.FlagSet, args []string, bind func(*T, *flag.FlagSet)) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	if fs == nil {
		return errors.New("flag set is required")
	}
	if err := config.ParseEnv(cfg); err != nil {
		return err
	}
	if bind != nil {
		bind(cfg, fs)
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// Service wraps a run loop with process telemetry.
type Service struct {
	Name string
	// TelemetryShutdown bounds the exporter flush on exit.
	TelemetryShutdown time.Duration
	Logger            *slog.Logger
}

// Run sets up tracing, runs fn and flushes tracing when fn returns.
func (s Service) Run(ctx context.Context, fn func(context.Context) error) error {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return errors.New("service name is required")
	}
	if fn == nil {
		return errors.New("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	shutdown, err := otel.Setup(ctx, name)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		timeout := s.TelemetryShutdown
		if timeout <= 0 {
			timeout = defaultTelemetryShutdown
		}
		flushCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Error("telemetry shutdown", "service", name, "error", err)
		}
	}()
	return fn(ctx)
}
