// Package rolemode switches a signed-in session between customer and vendor
// mode.
package rolemode

import (
	"log/slog"
	"net/http"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/module"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/requestmeta"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/routepath"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/session"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/shell"
)

// SessionIDReader extracts the verified session id from a request.
type SessionIDReader interface {
	SessionID(r *http.Request) (string, bool)
}

// VisitLookup finds a live shell visit by id.
type VisitLookup interface {
	Get(id string) (*shell.Visit, bool)
}

// Option configures a role mode module.
type Option func(*Module)

// WithStore sets the session store that persists the mode.
func WithStore(store session.Store) Option {
	return func(m *Module) { m.store = store }
}

// WithSessionIDs sets the session id reader.
func WithSessionIDs(ids SessionIDReader) Option {
	return func(m *Module) { m.ids = ids }
}

// WithVisits sets the visit lookup used to push toasts to a live shell.
func WithVisits(visits VisitLookup) Option {
	return func(m *Module) { m.visits = visits }
}

// WithSchemePolicy sets the request scheme policy for cookie handling.
func WithSchemePolicy(p requestmeta.SchemePolicy) Option {
	return func(m *Module) { m.flashMeta = p }
}

// WithLogger sets the logger for failed switches.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Module) { m.logger = logger }
}

// Module provides the authenticated mode switch route.
type Module struct {
	store     session.Store
	ids       SessionIDReader
	visits    VisitLookup
	flashMeta requestmeta.SchemePolicy
	logger    *slog.Logger
}

// New returns a role mode module configured by the given options.
func New(opts ...Option) Module {
	var m Module
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// ID returns a stable module identifier.
func (Module) ID() string { return "rolemode" }

// Healthy reports whether the module has a session store.
func (m Module) Healthy() bool {
	return m.store != nil && m.ids != nil
}

// Mount wires the mode switch handler.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	h := newHandlers(newService(m.store), m.ids, m.visits, m.flashMeta, m.logger)
	mux.HandleFunc(http.MethodPost+" "+routepath.SessionMode, h.handleSwitch)
	return module.Mount{Prefix: routepath.SessionPrefix, Handler: mux}, nil
}
