// Package sqlite provides the SQLite-backed session store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/platform/storage/sqlitemigrate"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/session"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/session/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const pragmas = "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

// Store persists sessions in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens and migrates a session store at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	sqlDB, err := sql.Open("sqlite", filepath.Clean(path)+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Get loads a live session by id.
func (s *Store) Get(ctx context.Context, id string) (session.Record, error) {
	if s == nil || s.sqlDB == nil {
		return session.Record{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return session.Record{}, session.ErrNotFound
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, user_id, email, display_name, role, capabilities, mode, vendor_onboarded, expires_at
		 FROM web_sessions
		 WHERE id = ?`,
		id,
	)

	var record session.Record
	var role, capabilities, mode string
	var onboarded, expiresAt int64
	if err := row.Scan(
		&record.ID,
		&record.User.ID,
		&record.User.Email,
		&record.User.DisplayName,
		&role,
		&capabilities,
		&mode,
		&onboarded,
		&expiresAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Record{}, session.ErrNotFound
		}
		return session.Record{}, fmt.Errorf("get session: %w", err)
	}
	record.User.Role = session.Role(role)
	record.User.Capabilities = splitCapabilities(capabilities)
	record.User.Mode = session.Mode(mode)
	record.User.VendorOnboarded = onboarded != 0
	record.ExpiresAt = unixMillisToTime(expiresAt)
	if record.Expired(s.now()) {
		return session.Record{}, session.ErrNotFound
	}
	return record, nil
}

// Put upserts a session.
func (s *Store) Put(ctx context.Context, record session.Record) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.ID = strings.TrimSpace(record.ID)
	if record.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(record.User.ID) == "" {
		return fmt.Errorf("user id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO web_sessions (
		    id, user_id, email, display_name, role, capabilities, mode, vendor_onboarded, expires_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    user_id = excluded.user_id,
		    email = excluded.email,
		    display_name = excluded.display_name,
		    role = excluded.role,
		    capabilities = excluded.capabilities,
		    mode = excluded.mode,
		    vendor_onboarded = excluded.vendor_onboarded,
		    expires_at = excluded.expires_at`,
		record.ID,
		strings.TrimSpace(record.User.ID),
		strings.TrimSpace(record.User.Email),
		strings.TrimSpace(record.User.DisplayName),
		string(record.User.Role),
		joinCapabilities(record.User.Capabilities),
		string(record.User.Mode),
		boolToInt(record.User.VendorOnboarded),
		timeToUnixMillis(record.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// SetMode updates the mode of a live session.
func (s *Store) SetMode(ctx context.Context, id string, mode session.Mode) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE web_sessions SET mode = ?
		 WHERE id = ? AND (expires_at = 0 OR expires_at > ?)`,
		string(mode),
		strings.TrimSpace(id),
		timeToUnixMillis(s.now()),
	)
	if err != nil {
		return fmt.Errorf("set session mode: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set session mode: %w", err)
	}
	if affected == 0 {
		return session.ErrNotFound
	}
	return nil
}

// Delete removes a session.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM web_sessions WHERE id = ?`, strings.TrimSpace(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions that expired before now and reports how
// many rows went away.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM web_sessions WHERE expires_at > 0 AND expires_at <= ?`,
		timeToUnixMillis(s.now()),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}

func joinCapabilities(values []session.Capability) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(string(value)); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ",")
}

func splitCapabilities(raw string) []session.Capability {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]session.Capability, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, session.Capability(trimmed))
		}
	}
	return values
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

func timeToUnixMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func unixMillisToTime(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

var _ session.Store = (*Store)(nil)
