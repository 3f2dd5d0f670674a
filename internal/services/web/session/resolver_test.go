package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeCookies struct {
	id string
	ok bool
}

func (f fakeCookies) SessionID(*http.Request) (string, bool) {
	return f.id, f.ok
}

func newTestResolver(store Store, cookies CookieReader, timeout time.Duration) *Resolver {
	return NewResolver(store, cookies, timeout, slog.New(slog.DiscardHandler))
}

func seededStore(t *testing.T, user User) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	if err := store.Put(context.Background(), Record{ID: "s1", User: user}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	return store
}

func TestResolverNilCollaboratorsReturnAnonymous(t *testing.T) {
	t.Parallel()

	var nilResolver *Resolver
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if state := nilResolver.Resolve(req); state.SignedIn() || state.Loading {
		t.Fatalf("nil resolver state = %+v", state)
	}
	r := newTestResolver(nil, nil, 0)
	if state := r.Resolve(req); state.SignedIn() || state.Loading {
		t.Fatalf("empty resolver state = %+v", state)
	}
}

func TestResolverResolvesSignedInUser(t *testing.T) {
	t.Parallel()

	store := seededStore(t, User{ID: "u1", Role: RoleCustomer})
	r := newTestResolver(store, fakeCookies{id: "s1", ok: true}, 0)
	state := r.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
	if !state.SignedIn() || state.User.ID != "u1" {
		t.Fatalf("state = %+v, want signed in u1", state)
	}
}

func TestResolverMissingCookieIsAnonymous(t *testing.T) {
	t.Parallel()

	store := seededStore(t, User{ID: "u1"})
	r := newTestResolver(store, fakeCookies{}, 0)
	state := r.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
	if state.SignedIn() || state.Loading {
		t.Fatalf("state = %+v, want anonymous", state)
	}
}

func TestResolverUnknownSessionIsAnonymous(t *testing.T) {
	t.Parallel()

	r := newTestResolver(NewMemoryStore(), fakeCookies{id: "missing", ok: true}, 0)
	state := r.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
	if state.SignedIn() || state.Loading {
		t.Fatalf("state = %+v, want anonymous", state)
	}
}

func TestResolverStoreFailureIsLoading(t *testing.T) {
	t.Parallel()

	store := seededStore(t, User{ID: "u1"})
	store.SimulateFailure(errors.New("store down"))
	r := newTestResolver(store, fakeCookies{id: "s1", ok: true}, 0)
	state := r.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
	if !state.Loading || state.SignedIn() {
		t.Fatalf("state = %+v, want loading", state)
	}
}

func TestResolverSlowStoreIsLoading(t *testing.T) {
	t.Parallel()

	store := seededStore(t, User{ID: "u1"})
	store.SimulateLatency(time.Second)
	r := newTestResolver(store, fakeCookies{id: "s1", ok: true}, 10*time.Millisecond)
	state := r.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
	if !state.Loading {
		t.Fatalf("state = %+v, want loading after deadline", state)
	}
}

func TestResolverMiddlewareStoresStateOnContext(t *testing.T) {
	t.Parallel()

	store := seededStore(t, User{ID: "u1", Role: RoleVendor})
	r := newTestResolver(store, fakeCookies{id: "s1", ok: true}, 0)
	var got State
	var found bool
	h := r.Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, req *http.Request) {
		got, found = FromContext(req.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !found || !got.SignedIn() || got.User.Role != RoleVendor {
		t.Fatalf("context state = (%+v, %v)", got, found)
	}
}

func TestResolverPrefersContextState(t *testing.T) {
	t.Parallel()

	r := newTestResolver(NewMemoryStore(), fakeCookies{id: "s1", ok: true}, 0)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithState(req.Context(), State{User: &User{ID: "cached"}}))
	if state := r.Resolve(req); state.User == nil || state.User.ID != "cached" {
		t.Fatalf("state = %+v, want cached context state", state)
	}
}

type clearingCookies struct {
	fakeCookies
	cleared *int
}

func (c clearingCookies) Clear(w http.ResponseWriter, _ *http.Request) {
	*c.cleared++
	http.SetCookie(w, &http.Cookie{Name: "storefront_session", MaxAge: -1})
}

func TestResolverMiddlewareClearsStaleCookie(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		id        string
		wantClear int
	}{
		{name: "vanished session", id: "gone", wantClear: 1},
		{name: "live session", id: "s1", wantClear: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cleared := 0
			store := seededStore(t, User{ID: "u1", Role: RoleCustomer})
			r := newTestResolver(store, clearingCookies{fakeCookies: fakeCookies{id: tc.id, ok: true}, cleared: &cleared}, 0)
			rr := httptest.NewRecorder()
			r.Middleware()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
			if cleared != tc.wantClear {
				t.Fatalf("cleared = %d, want %d", cleared, tc.wantClear)
			}
			if got := rr.Header().Get("Set-Cookie") != ""; got != (tc.wantClear > 0) {
				t.Fatalf("Set-Cookie present = %v", got)
			}
		})
	}
}
