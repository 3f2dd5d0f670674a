package web

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/sessioncookie"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/session"
	redisstore "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/session/redis"
	sqlitestore "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/session/sqlite"
)

// Session store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// SessionConfig selects and configures the session store.
type SessionConfig struct {
	Backend     string
	SQLitePath  string
	RedisURL    string
	RedisPrefix string
}

func openSessionStore(ctx context.Context, cfg SessionConfig) (session.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendMemory:
		return session.NewMemoryStore(), nil
	case BackendSQLite:
		store, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite session store: %w", err)
		}
		return store, nil
	case BackendRedis:
		client, err := redisstore.Connect(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis session store: %w", err)
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis session store: %w", err)
		}
		var opts []redisstore.Option
		if prefix := strings.TrimSpace(cfg.RedisPrefix); prefix != "" {
			opts = append(opts, redisstore.WithPrefix(prefix))
		}
		return redisstore.New(client, opts...), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

type demoPersona struct {
	label string
	user  session.User
}

func demoPersonas() []demoPersona {
	return []demoPersona{
		{label: "customer", user: session.User{
			Email:        "customer@demo.test",
			DisplayName:  "Demo Customer",
			Role:         session.RoleCustomer,
			Capabilities: []session.Capability{session.CapabilityBuy},
			Mode:         session.ModeCustomer,
		}},
		{label: "vendor", user: session.User{
			Email:           "vendor@demo.test",
			DisplayName:     "Demo Vendor",
			Role:            session.RoleVendor,
			Capabilities:    []session.Capability{session.CapabilityBuy, session.CapabilitySell},
			Mode:            session.ModeVendor,
			VendorOnboarded: true,
		}},
		{label: "signup_pending", user: session.User{
			Email:       "new@demo.test",
			DisplayName: "Demo Newcomer",
		}},
	}
}

// seedDemoSessions stores one session per demo persona and logs the cookie
// value that signs into it.
func seedDemoSessions(ctx context.Context, store session.Store, cookies *sessioncookie.Codec, ttl time.Duration, logger *slog.Logger) error {
	expires := time.Now().Add(ttl)
	for _, persona := range demoPersonas() {
		user := persona.user
		user.ID = uuid.NewString()
		record := session.Record{ID: uuid.NewString(), User: user, ExpiresAt: expires}
		if err := store.Put(ctx, record); err != nil {
			return fmt.Errorf("seed %s session: %w", persona.label, err)
		}
		token, err := cookies.Sign(record.ID)
		if err != nil {
			return fmt.Errorf("sign %s session: %w", persona.label, err)
		}
		logger.Info("demo session", "persona", persona.label, "cookie", sessioncookie.Name+"="+token)
	}
	return nil
}
