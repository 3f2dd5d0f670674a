// Package redis provides a Redis-backed session store for deployments that
// share sessions across web replicas.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/session"
)

// DefaultPrefix namespaces session keys.
const DefaultPrefix = "storefront:session:"

// Client is the subset of the go-redis client the store uses.
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
	Close() error
}

// Connect builds a client from a redis:// URL or a host:port address.
func Connect(rawURL string) (*goredis.Client, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if strings.HasPrefix(rawURL, "redis://") || strings.HasPrefix(rawURL, "rediss://") {
		opt, err := goredis.ParseURL(rawURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return goredis.NewClient(opt), nil
	}
	return goredis.NewClient(&goredis.Options{Addr: rawURL}), nil
}

// Store keeps sessions as JSON values whose TTL tracks the session expiry.
type Store struct {
	client Client
	prefix string
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if strings.TrimSpace(prefix) != "" {
			s.prefix = prefix
		}
	}
}

// WithClock overrides the wall clock used for TTLs.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a store over client.
func New(client Client, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type payload struct {
	User      session.User `json:"user"`
	ExpiresAt int64        `json:"expires_at,omitempty"`
}

// Get loads a session by id.
func (s *Store) Get(ctx context.Context, id string) (session.Record, error) {
	if s == nil || s.client == nil {
		return session.Record{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return session.Record{}, session.ErrNotFound
	}
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return session.Record{}, session.ErrNotFound
		}
		return session.Record{}, fmt.Errorf("get session: %w", err)
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return session.Record{}, fmt.Errorf("decode session: %w", err)
	}
	record := session.Record{ID: id, User: p.User}
	if p.ExpiresAt > 0 {
		record.ExpiresAt = time.UnixMilli(p.ExpiresAt).UTC()
	}
	if record.Expired(s.now()) {
		return session.Record{}, session.ErrNotFound
	}
	return record, nil
}

// Put stores a session. Records already past expiry are deleted instead.
func (s *Store) Put(ctx context.Context, record session.Record) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.ID = strings.TrimSpace(record.ID)
	if record.ID == "" {
		return fmt.Errorf("session id is required")
	}
	ttl := time.Duration(0)
	if !record.ExpiresAt.IsZero() {
		ttl = record.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return s.Delete(ctx, record.ID)
		}
	}
	return s.write(ctx, record, ttl)
}

// SetMode updates the mode of a live session and keeps its TTL.
func (s *Store) SetMode(ctx context.Context, id string, mode session.Mode) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	record.User.Mode = mode
	return s.write(ctx, record, goredis.KeepTTL)
}

// Delete removes a session.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("storage is not configured")
	}
	if err := s.client.Del(ctx, s.key(strings.TrimSpace(id))).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Close closes the client.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *Store) write(ctx context.Context, record session.Record, ttl time.Duration) error {
	p := payload{User: record.User}
	if !record.ExpiresAt.IsZero() {
		p.ExpiresAt = record.ExpiresAt.UTC().UnixMilli()
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(record.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

var _ session.Store = (*Store)(nil)
