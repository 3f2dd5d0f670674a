package rolemode

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/platform/clock"
	flashnotice "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/flash"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/routepath"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/session"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/shell"
)

type fixedIDs struct{ id string }

type failingStore struct {
	*session.MemoryStore
	err error
}

func (f failingStore) SetMode(context.Context, string, session.Mode) error {
	return f.err
}

func (f fixedIDs) SessionID(*http.Request) (string, bool) {
	return f.id, f.id != ""
}

func seededStore(t *testing.T, user session.User) *session.MemoryStore {
	t.Helper()
	store := session.NewMemoryStore()
	if err := store.Put(context.Background(), session.Record{ID: "s1", User: user, ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func dualUser() session.User {
	return session.User{
		ID:              "u1",
		Role:            session.RoleVendor,
		Capabilities:    []session.Capability{session.CapabilityBuy, session.CapabilitySell},
		Mode:            session.ModeCustomer,
		VendorOnboarded: true,
	}
}

func buyer() session.User {
	return session.User{
		ID:           "u2",
		Role:         session.RoleCustomer,
		Capabilities: []session.Capability{session.CapabilityBuy},
		Mode:         session.ModeCustomer,
	}
}

func switchRequest(user session.User, mode string) *http.Request {
	form := url.Values{routepath.ModeFormField: {mode}}
	req := httptest.NewRequest(http.MethodPost, routepath.SessionMode, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "http://example.com/shop?page=2")
	return req.WithContext(session.WithState(req.Context(), session.State{User: &user}))
}

func serve(t *testing.T, m Module, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	mount, err := m.Mount()
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if mount.Prefix != routepath.SessionPrefix {
		t.Fatalf("prefix = %q", mount.Prefix)
	}
	rr := httptest.NewRecorder()
	mount.Handler.ServeHTTP(rr, req)
	return rr
}

func readFlash(t *testing.T, rr *httptest.ResponseRecorder) flashnotice.Notice {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range rr.Result().Cookies() {
		req.AddCookie(cookie)
	}
	notice, ok := flashnotice.Jar{}.Take(httptest.NewRecorder(), req)
	if !ok {
		t.Fatalf("expected flash notice")
	}
	return notice
}

func TestSwitchToVendorPersistsModeAndRedirects(t *testing.T) {
	t.Parallel()

	store := seededStore(t, dualUser())
	m := New(WithStore(store), WithSessionIDs(fixedIDs{id: "s1"}))
	rr := serve(t, m, switchRequest(dualUser(), "vendor"))

	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != routepath.VendorDashboard {
		t.Fatalf("location = %q", got)
	}
	record, err := store.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.User.Mode != session.ModeVendor {
		t.Fatalf("mode = %q, want vendor", record.User.Mode)
	}
	notice := readFlash(t, rr)
	if notice.Kind != flashnotice.KindSuccess || notice.Key != keyModeSwitched || notice.Arg != "vendor" {
		t.Fatalf("notice = %+v", notice)
	}
}

func TestSwitchToCustomerRedirectsToCustomerDashboard(t *testing.T) {
	t.Parallel()

	user := dualUser()
	user.Mode = session.ModeVendor
	m := New(WithStore(seededStore(t, user)), WithSessionIDs(fixedIDs{id: "s1"}))
	rr := serve(t, m, switchRequest(user, "customer"))
	if got := rr.Header().Get("Location"); got != routepath.Dashboard {
		t.Fatalf("location = %q", got)
	}
}

func TestSwitchWithoutCapabilityFlashesAndReturns(t *testing.T) {
	t.Parallel()

	store := seededStore(t, buyer())
	m := New(WithStore(store), WithSessionIDs(fixedIDs{id: "s1"}))
	rr := serve(t, m, switchRequest(buyer(), "vendor"))

	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != "/shop?page=2" {
		t.Fatalf("location = %q", got)
	}
	notice := readFlash(t, rr)
	if notice.Kind != flashnotice.KindError || notice.Key != keyModeDenied {
		t.Fatalf("notice = %+v", notice)
	}
	record, _ := store.Get(context.Background(), "s1")
	if record.User.Mode != session.ModeCustomer {
		t.Fatalf("mode changed to %q", record.User.Mode)
	}
}

func TestSwitchRejectsUnknownMode(t *testing.T) {
	t.Parallel()

	m := New(WithStore(seededStore(t, dualUser())), WithSessionIDs(fixedIDs{id: "s1"}))
	rr := serve(t, m, switchRequest(dualUser(), "admin"))
	if notice := readFlash(t, rr); notice.Key != keyModeDenied {
		t.Fatalf("notice = %+v", notice)
	}
}

func TestSwitchFailurePushesToastToLiveVisit(t *testing.T) {
	t.Parallel()

	manager := shell.NewManager(shell.Config{Clock: clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))})
	visit := manager.Mount(shell.Location{Path: "/shop"}, false)
	visit.Drain()

	m := New(WithStore(seededStore(t, buyer())), WithSessionIDs(fixedIDs{id: "s1"}), WithVisits(manager))
	req := switchRequest(buyer(), "vendor")
	req.Header.Set("HX-Request", "true")
	req.Header.Set(shell.VisitHeader, visit.ID())
	rr := serve(t, m, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
	var toast *shell.Command
	for _, cmd := range visit.Drain() {
		if cmd.Type == shell.CommandToast {
			toast = &cmd
		}
	}
	if toast == nil || toast.Kind != "error" || toast.Message != "Your account cannot use that mode." {
		t.Fatalf("toast = %+v", toast)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Fatalf("unexpected cookies on live toast path")
	}
}

func TestSwitchWithExpiredSessionRedirectsToLogin(t *testing.T) {
	t.Parallel()

	m := New(WithStore(session.NewMemoryStore()), WithSessionIDs(fixedIDs{id: "gone"}))
	rr := serve(t, m, switchRequest(dualUser(), "vendor"))
	if got := rr.Header().Get("Location"); got != routepath.AuthLogin {
		t.Fatalf("location = %q", got)
	}
}

func TestSwitchStoreFailureFlashesRetry(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	store := failingStore{MemoryStore: seededStore(t, dualUser()), err: errors.New("disk full")}
	m := New(WithStore(store), WithSessionIDs(fixedIDs{id: "s1"}), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	rr := serve(t, m, switchRequest(dualUser(), "vendor"))
	if notice := readFlash(t, rr); notice.Key != keyModeFailed {
		t.Fatalf("notice = %+v", notice)
	}
	if out := logs.String(); !strings.Contains(out, "mode switch failed") || !strings.Contains(out, "disk full") {
		t.Fatalf("injected logger output = %q", out)
	}
}

func TestReturnPathIgnoresForeignReferer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		referer string
		want    string
	}{
		{referer: "", want: "/"},
		{referer: "https://evil.test/phish", want: "/"},
		{referer: "http://example.com/cart", want: "/cart"},
		{referer: "http://example.com//evil.test", want: "/"},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodPost, routepath.SessionMode, nil)
		req.Header.Set("Referer", tc.referer)
		if got := returnPath(req); got != tc.want {
			t.Fatalf("returnPath(%q) = %q, want %q", tc.referer, got, tc.want)
		}
	}
}

func TestGetIsNotRouted(t *testing.T) {
	t.Parallel()

	rr := serve(t, New(), httptest.NewRequest(http.MethodGet, routepath.SessionMode, nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rr.Code)
	}
}
