// Package web parses storefront web flags and launches the service.
package web

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	entrypoint "github.com/georgemunganga/nwc-marketplace-clone/internal/platform/cmd"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web"
)

// Config holds the web command configuration. Every field reads a
// STOREFRONT_-prefixed environment variable and can be overridden by its
// flag.
type Config struct {
	HTTPAddr            string        `env:"WEB_HTTP_ADDR" envDefault:"localhost:8086"`
	SessionBackend      string        `env:"WEB_SESSION_BACKEND" envDefault:"memory"`
	SessionDBPath       string        `env:"WEB_SESSION_DB_PATH" envDefault:"data/sessions.db"`
	RedisURL            string        `env:"WEB_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisPrefix         string        `env:"WEB_REDIS_PREFIX"`
	CookieKey           string        `env:"WEB_COOKIE_KEY"`
	CookieTTL           time.Duration `env:"WEB_COOKIE_TTL" envDefault:"720h"`
	TrustForwardedProto bool          `env:"WEB_TRUST_FORWARDED_PROTO" envDefault:"false"`
	DemoSessions        bool          `env:"WEB_DEMO_SESSIONS" envDefault:"false"`
	LogLevel            string        `env:"WEB_LOG_LEVEL" envDefault:"info"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.Load(&cfg, fs, args, bindFlags); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.CookieKey) == "" {
		return Config{}, fmt.Errorf("STOREFRONT_WEB_COOKIE_KEY is required")
	}
	return cfg, nil
}

func bindFlags(cfg *Config, fs *flag.FlagSet) {
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.SessionBackend, "session-backend", cfg.SessionBackend, "Session store backend: memory, sqlite or redis")
	fs.StringVar(&cfg.SessionDBPath, "session-db-path", cfg.SessionDBPath, "SQLite session database path")
	fs.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis session store URL")
	fs.DurationVar(&cfg.CookieTTL, "cookie-ttl", cfg.CookieTTL, "Session cookie lifetime")
	fs.BoolVar(&cfg.TrustForwardedProto, "trust-forwarded-proto", cfg.TrustForwardedProto, "Honour X-Forwarded-Proto from a TLS proxy")
	fs.BoolVar(&cfg.DemoSessions, "demo-sessions", cfg.DemoSessions, "Seed demo sessions and log their cookies")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
}

// NewLogger builds the service logger writing text records to w.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// Run starts the storefront web server.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	svc := entrypoint.Service{Name: entrypoint.ServiceWeb, Logger: logger}
	return svc.Run(ctx, func(ctx context.Context) error {
		server, err := web.NewServer(ctx, web.Config{
			HTTPAddr: cfg.HTTPAddr,
			Session: web.SessionConfig{
				Backend:     cfg.SessionBackend,
				SQLitePath:  cfg.SessionDBPath,
				RedisURL:    cfg.RedisURL,
				RedisPrefix: cfg.RedisPrefix,
			},
			CookieKey:           cfg.CookieKey,
			CookieTTL:           cfg.CookieTTL,
			TrustForwardedProto: cfg.TrustForwardedProto,
			DemoSessions:        cfg.DemoSessions,
			Logger:              logger,
		})
		if err != nil {
			return fmt.Errorf("init web server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve web: %w", err)
		}
		return nil
	})
}
