package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. It backs local development
// and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[string]Record
	now      func() time.Time
	getDelay time.Duration
	getErr   error
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]Record{}, now: time.Now}
}

// Get returns the session by id.
func (s *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	delay, failure := s.getDelay, s.getErr
	record, ok := s.records[strings.TrimSpace(id)]
	s.mu.RUnlock()
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Record{}, ctx.Err()
		case <-timer.C:
		}
	}
	if failure != nil {
		return Record{}, failure
	}
	if !ok || record.Expired(s.now()) {
		return Record{}, ErrNotFound
	}
	return cloneRecord(record), nil
}

// Put stores a session, replacing any record with the same id.
func (s *MemoryStore) Put(_ context.Context, record Record) error {
	record.ID = strings.TrimSpace(record.ID)
	if record.ID == "" {
		return errors.New("session id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = cloneRecord(record)
	return nil
}

// SetMode updates the session mode.
func (s *MemoryStore) SetMode(_ context.Context, id string, mode Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[strings.TrimSpace(id)]
	if !ok || record.Expired(s.now()) {
		return ErrNotFound
	}
	record.User.Mode = mode
	s.records[record.ID] = record
	return nil
}

// Delete removes a session. Unknown ids are not an error.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, strings.TrimSpace(id))
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// SimulateLatency delays every Get by d, honoring context cancellation.
func (s *MemoryStore) SimulateLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getDelay = d
}

// SimulateFailure makes every Get return err until cleared with nil.
func (s *MemoryStore) SimulateFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
}

func cloneRecord(record Record) Record {
	record.User.Capabilities = append([]Capability(nil), record.User.Capabilities...)
	return record
}
