package shell

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/platform/clock"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/platform/timeouts"
)

// Gauge receives the number of live visits.
type Gauge interface {
	SetActiveVisits(n int)
}

// Config configures a Manager.
type Config struct {
	Clock    clock.Clock
	Observer Observer
	Gauge    Gauge
	Logger   *slog.Logger
	// IdleAfter expires visits with no live connection. Defaults to
	// timeouts.VisitIdle.
	IdleAfter time.Duration
	// UnattachedAfter expires visits whose live channel never connected.
	// Defaults to timeouts.VisitUnattached.
	UnattachedAfter time.Duration
	// MaxVisits caps the mounted visits. At the cap, Mount evicts the oldest
	// visit without a live connection. Defaults to DefaultMaxVisits.
	MaxVisits int
	// NewID overrides visit id generation.
	NewID func() string
}

// DefaultMaxVisits is the visit cap used when Config.MaxVisits is unset.
const DefaultMaxVisits = 10000

// Manager keeps the mounted visits by id.
type Manager struct {
	clock           clock.Clock
	observer        Observer
	gauge           Gauge
	logger          *slog.Logger
	idleAfter       time.Duration
	unattachedAfter time.Duration
	maxVisits       int
	newID           func() string

	mu     sync.Mutex
	visits map[string]*Visit
}

// NewManager builds a manager from cfg.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		clock:           cfg.Clock,
		observer:        cfg.Observer,
		gauge:           cfg.Gauge,
		logger:          cfg.Logger,
		idleAfter:       cfg.IdleAfter,
		unattachedAfter: cfg.UnattachedAfter,
		maxVisits:       cfg.MaxVisits,
		newID:           cfg.NewID,
		visits:          map[string]*Visit{},
	}
	if m.clock == nil {
		m.clock = clock.Real{}
	}
	if m.observer == nil {
		m.observer = nopObserver{}
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.idleAfter <= 0 {
		m.idleAfter = timeouts.VisitIdle
	}
	if m.unattachedAfter <= 0 {
		m.unattachedAfter = timeouts.VisitUnattached
	}
	if m.maxVisits <= 0 {
		m.maxVisits = DefaultMaxVisits
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	return m
}

// Mount starts a visit at loc. preloader reports whether the page carries
// the startup preloader.
func (m *Manager) Mount(loc Location, preloader bool) *Visit {
	v := mountVisit(m.newID(), loc, preloader, m.clock, m.observer)
	m.mu.Lock()
	var evicted *Visit
	if len(m.visits) >= m.maxVisits {
		evicted = m.oldestDisconnectedLocked()
		if evicted != nil {
			delete(m.visits, evicted.id)
		}
	}
	m.visits[v.id] = v
	count := len(m.visits)
	m.mu.Unlock()
	if evicted != nil {
		evicted.Unmount()
		m.logger.Debug("shell visit evicted", "visit", evicted.id, "max_visits", m.maxVisits)
	}
	m.setGauge(count)
	return v
}

// oldestDisconnectedLocked picks the eviction victim at the cap. Visits with
// an open live channel are never evicted, so the cap can be exceeded by
// connected visits alone.
func (m *Manager) oldestDisconnectedLocked() *Visit {
	var oldest *Visit
	for _, v := range m.visits {
		if !v.evictable() {
			continue
		}
		if oldest == nil || v.mountedAt.Before(oldest.mountedAt) {
			oldest = v
		}
	}
	return oldest
}

// Get returns a mounted visit.
func (m *Manager) Get(id string) (*Visit, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visits[id]
	return v, ok
}

// Unmount stops and forgets a visit. Unknown ids are ignored.
func (m *Manager) Unmount(id string) {
	m.mu.Lock()
	v, ok := m.visits[id]
	delete(m.visits, id)
	count := len(m.visits)
	m.mu.Unlock()
	if !ok {
		return
	}
	v.Unmount()
	m.setGauge(count)
}

// Len returns the number of mounted visits.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visits)
}

// Sweep unmounts visits idle for longer than the configured window, or never
// attached within the shorter unattached window, and reports how many were
// removed.
func (m *Manager) Sweep() int {
	now := m.clock.Now()
	m.mu.Lock()
	var expired []*Visit
	for id, v := range m.visits {
		if v.abandoned(now, m.unattachedAfter) || v.idle(now, m.idleAfter) {
			expired = append(expired, v)
			delete(m.visits, id)
		}
	}
	count := len(m.visits)
	m.mu.Unlock()
	for _, v := range expired {
		v.Unmount()
	}
	if len(expired) > 0 {
		m.setGauge(count)
	}
	return len(expired)
}

// Run sweeps idle visits until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(min(m.idleAfter, m.unattachedAfter) / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Debug("shell visits expired", "count", n)
			}
		}
	}
}

// Close unmounts every visit.
func (m *Manager) Close() {
	m.mu.Lock()
	visits := m.visits
	m.visits = map[string]*Visit{}
	m.mu.Unlock()
	for _, v := range visits {
		v.Unmount()
	}
	m.setGauge(0)
}

func (m *Manager) setGauge(n int) {
	if m.gauge != nil {
		m.gauge.SetActiveVisits(n)
	}
}
