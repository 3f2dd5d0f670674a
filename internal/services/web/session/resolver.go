package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/platform/timeouts"
)

// CookieReader extracts a verified session id from a request.
type CookieReader interface {
	SessionID(r *http.Request) (string, bool)
}

// CookieClearer expires a session cookie. A CookieReader that also clears
// has stale cookies removed by Middleware.
type CookieClearer interface {
	Clear(w http.ResponseWriter, r *http.Request)
}

// Resolver turns the session cookie into a State.
type Resolver struct {
	store   Store
	cookies CookieReader
	timeout time.Duration
	logger  *slog.Logger
}

// NewResolver builds a resolver. A non-positive timeout uses
// timeouts.SessionLookup.
func NewResolver(store Store, cookies CookieReader, timeout time.Duration, logger *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = timeouts.SessionLookup
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, cookies: cookies, timeout: timeout, logger: logger}
}

// Resolve returns the session state for r. Requests without a valid cookie
// resolve to an anonymous state; store failures and timeouts resolve to a
// loading state.
func (r *Resolver) Resolve(req *http.Request) State {
	state, _ := r.resolve(req)
	return state
}

// resolve also reports whether the request carried a verified cookie for a
// session the store no longer has.
func (r *Resolver) resolve(req *http.Request) (State, bool) {
	if r == nil || r.store == nil || r.cookies == nil || req == nil {
		return State{}, false
	}
	if state, ok := FromContext(req.Context()); ok {
		return state, false
	}
	sessionID, ok := r.cookies.SessionID(req)
	if !ok {
		return State{}, false
	}
	ctx, cancel := context.WithTimeout(req.Context(), r.timeout)
	defer cancel()
	record, err := r.store.Get(ctx, sessionID)
	switch {
	case err == nil:
		user := record.User
		return State{User: &user}, false
	case errors.Is(err, ErrNotFound):
		return State{}, true
	default:
		r.logger.WarnContext(req.Context(), "session lookup failed",
			"error", err,
			"path", req.URL.Path,
		)
		return State{Loading: true}, false
	}
}

// SessionID returns the verified session id carried by r.
func (r *Resolver) SessionID(req *http.Request) (string, bool) {
	if r == nil || r.cookies == nil {
		return "", false
	}
	return r.cookies.SessionID(req)
}

// Middleware resolves the session once per request and stores it on the
// request context. A cookie naming a vanished session is expired.
func (r *Resolver) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			state, stale := r.resolve(req)
			if stale {
				if clearer, ok := r.cookies.(CookieClearer); ok {
					clearer.Clear(w, req)
				}
			}
			next.ServeHTTP(w, req.WithContext(WithState(req.Context(), state)))
		})
	}
}
