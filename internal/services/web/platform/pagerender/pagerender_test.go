package pagerender

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/platform/clock"
	flashnotice "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/flash"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/session"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/shell"
)

func textComponent(value string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, value)
		return err
	})
}

func newManager() *shell.Manager {
	return shell.NewManager(shell.Config{
		Clock:  clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		Logger: slog.New(slog.DiscardHandler),
	})
}

func TestWriteRendersFullPageWithAppShell(t *testing.T) {
	t.Parallel()

	m := newManager()
	visit := m.Mount(shell.Location{Path: "/shop"}, true)
	req := httptest.NewRequest(http.MethodGet, "/shop", nil)
	req = req.WithContext(shell.WithVisit(req.Context(), visit, false))
	rr := httptest.NewRecorder()

	err := Write(rr, req, Page{
		Title:      "Shop",
		StatusCode: http.StatusAccepted,
		Body:       textComponent(`<section id="fragment-root">ok</section>`),
	})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusAccepted)
	}
	if got := rr.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("content-type = %q", got)
	}
	body := rr.Body.String()
	for _, marker := range []string{`<!doctype html>`, `id="fragment-root"`, `id="preloader"`, `id="bottom-nav"`, `data-visit="` + visit.ID() + `"`} {
		if !strings.Contains(body, marker) {
			t.Fatalf("body missing %q: %s", marker, body)
		}
	}
	if !visit.Rendered() {
		t.Fatalf("visit not marked rendered")
	}
}

func TestWriteOmitsPreloaderForPartialNavigation(t *testing.T) {
	t.Parallel()

	m := newManager()
	visit := m.Mount(shell.Location{Path: "/"}, true)
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req = req.WithContext(shell.WithVisit(req.Context(), visit, true))
	rr := httptest.NewRecorder()

	if err := Write(rr, req, Page{Title: "Cart"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if strings.Contains(rr.Body.String(), `id="preloader"`) {
		t.Fatalf("partial navigation rendered the preloader")
	}
}

func TestWriteHidesBottomNavOnDashboards(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/dashboard/orders", "/vendor/products"} {
		rr := httptest.NewRecorder()
		if err := Write(rr, httptest.NewRequest(http.MethodGet, path, nil), Page{Title: "x"}); err != nil {
			t.Fatalf("Write(%s) error = %v", path, err)
		}
		if strings.Contains(rr.Body.String(), `id="bottom-nav"`) {
			t.Fatalf("%s rendered bottom nav", path)
		}
	}
}

func TestWriteFailureProducesNoOutput(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	failing := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return errors.New("boom")
	})
	if err := Write(rr, httptest.NewRequest(http.MethodGet, "/", nil), Page{Body: failing}); err == nil {
		t.Fatalf("expected error")
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("body = %q, want empty", rr.Body.String())
	}
}

func TestWriteNoStore(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	if err := Write(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil), Page{NoStore: true}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := rr.Header().Get("Cache-Control"); !strings.Contains(got, "no-store") {
		t.Fatalf("cache-control = %q", got)
	}
}

func TestWriteRendersFlashToast(t *testing.T) {
	t.Parallel()

	seed := httptest.NewRecorder()
	flashnotice.Jar{}.Set(seed, httptest.NewRequest(http.MethodGet, "/", nil), flashnotice.NoticeSuccess("shell.toast.mode_switched").WithArg("vendor"))
	req := httptest.NewRequest(http.MethodGet, "/vendor/dashboard", nil)
	for _, c := range seed.Result().Cookies() {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	if err := Write(rr, req, Page{Title: "Dashboard"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Switched to vendor mode.") {
		t.Fatalf("body missing toast message: %s", body)
	}
}

func TestWriteRendersRoleSwitchForDualCapabilitySessions(t *testing.T) {
	t.Parallel()

	user := &session.User{
		ID:           "u1",
		Role:         session.RoleVendor,
		Capabilities: []session.Capability{session.CapabilityBuy, session.CapabilitySell},
		Mode:         session.ModeCustomer,
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(session.WithState(req.Context(), session.State{User: user}))
	rr := httptest.NewRecorder()
	if err := Write(rr, req, Page{}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `class="role-switch"`) || !strings.Contains(body, `value="vendor"`) {
		t.Fatalf("body missing role switch: %s", body)
	}

	user.Capabilities = []session.Capability{session.CapabilityBuy}
	rr = httptest.NewRecorder()
	if err := Write(rr, req, Page{}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if strings.Contains(rr.Body.String(), `class="role-switch"`) {
		t.Fatalf("single capability session rendered role switch")
	}
}
