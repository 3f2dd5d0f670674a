package router

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/platform/clock"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/pages"
	apperrors "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/errors"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/session"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/shell"
)

type staticSessions struct {
	state session.State
}

func (s staticSessions) Resolve(*http.Request) session.State {
	return s.state
}

type readinessRecorder struct {
	mu      sync.Mutex
	ready   []string
	outcome []string
}

func (r *readinessRecorder) ShellReady(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready = append(r.ready, source)
}

func (r *readinessRecorder) PreloaderRemoved(string) {}

func (r *readinessRecorder) RouteResolved(route string, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcome = append(r.outcome, route+"="+outcome)
}

type harness struct {
	handler  http.Handler
	manager  *shell.Manager
	recorder *readinessRecorder
}

func newHarness(t *testing.T, state session.State, registry *pages.Registry) harness {
	t.Helper()
	if registry == nil {
		registry = pages.NewRegistry(pages.Catalog(), nil)
	}
	recorder := &readinessRecorder{}
	manager := shell.NewManager(shell.Config{
		Clock:    clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		Observer: recorder,
		Logger:   slog.New(slog.DiscardHandler),
	})
	h, err := New(Config{
		Pages:    registry,
		Sessions: staticSessions{state: state},
		Observer: recorder,
		Logger:   slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return harness{handler: manager.Middleware()(h), manager: manager, recorder: recorder}
}

func (h harness) get(path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func vendor() *session.User {
	return &session.User{
		ID:              "v1",
		Role:            session.RoleVendor,
		Capabilities:    []session.Capability{session.CapabilityBuy, session.CapabilitySell},
		Mode:            session.ModeVendor,
		VendorOnboarded: true,
	}
}

func customer() *session.User {
	return &session.User{
		ID:           "c1",
		Role:         session.RoleCustomer,
		Capabilities: []session.Capability{session.CapabilityBuy},
		Mode:         session.ModeCustomer,
	}
}

func TestPublicRoutesRenderTheirPages(t *testing.T) {
	t.Parallel()

	h := newHarness(t, session.State{}, nil)
	tests := []struct {
		path string
		page pages.ID
	}{
		{path: "/", page: pages.Home},
		{path: "/shop", page: pages.Shop},
		{path: "/stores", page: pages.StoreListing},
		{path: "/store-listing", page: pages.StoreListing},
		{path: "/vendor/onboarding", page: pages.VendorOnboarding},
		{path: "/auth/login", page: pages.Login},
		{path: "/auth/verify", page: pages.VerifyOTP},
		{path: "/track-order", page: pages.OrderTracking},
		{path: "/legal", page: pages.Legal},
		{path: "/legal/privacy-policy", page: pages.PrivacyPolicy},
		{path: "/site-map", page: pages.SiteMap},
	}
	for _, tc := range tests {
		rr := h.get(tc.path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tc.path, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `data-page="`+string(tc.page)+`"`) {
			t.Fatalf("%s: page %s not rendered", tc.path, tc.page)
		}
	}
}

func TestDuplicateTrailingSlashRoutesRenderSameView(t *testing.T) {
	t.Parallel()

	h := newHarness(t, session.State{}, nil)
	pairs := [][2]string{{"/checkout", "/checkout/"}, {"/thank-you", "/thank-you/"}, {"/store/vendor/acme", "/store/vendor/acme/"}}
	for _, pair := range pairs {
		a, b := h.get(pair[0]), h.get(pair[1])
		if a.Code != http.StatusOK || b.Code != http.StatusOK {
			t.Fatalf("%v: status = %d/%d", pair, a.Code, b.Code)
		}
		pageA := a.Body.String()[strings.Index(a.Body.String(), "data-page="):][:30]
		pageB := b.Body.String()[strings.Index(b.Body.String(), "data-page="):][:30]
		if pageA != pageB {
			t.Fatalf("%v rendered %q vs %q", pair, pageA, pageB)
		}
	}
}

func TestRoutesIgnoreCaseAndTrailingSlash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		path         string
		state        session.State
		wantStatus   int
		wantPage     pages.ID
		wantParam    string
		wantLocation string
	}{
		{name: "shop slash", path: "/shop/", wantStatus: http.StatusOK, wantPage: pages.Shop},
		{name: "about slash", path: "/about/", wantStatus: http.StatusOK, wantPage: pages.About},
		{name: "shop upper", path: "/Shop", wantStatus: http.StatusOK, wantPage: pages.Shop},
		{name: "login slash", path: "/auth/login/", wantStatus: http.StatusOK, wantPage: pages.Login},
		{name: "legal mixed case", path: "/LEGAL/Privacy-Policy/", wantStatus: http.StatusOK, wantPage: pages.PrivacyPolicy},
		{name: "product slash keeps param case", path: "/product/P1/", wantStatus: http.StatusOK, wantPage: pages.ProductDetail, wantParam: "P1"},
		{name: "dashboard slash stays gated", path: "/dashboard/", wantStatus: http.StatusFound, wantLocation: "/auth/login?next=%2Fdashboard"},
		{name: "vendor upper stays gated", path: "/Vendor/Products", state: session.State{User: customer()}, wantStatus: http.StatusForbidden},
		{name: "dashboard slash signed in", path: "/Dashboard/", state: session.State{User: customer()}, wantStatus: http.StatusOK, wantPage: pages.DashboardOverview},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rr := newHarness(t, tc.state, nil).get(tc.path)
			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			body := rr.Body.String()
			if tc.wantPage != "" && !strings.Contains(body, `data-page="`+string(tc.wantPage)+`"`) {
				t.Fatalf("page %s not rendered: %s", tc.wantPage, body)
			}
			if tc.wantParam != "" && !strings.Contains(body, ">"+tc.wantParam+"<") {
				t.Fatalf("param %q not rendered: %s", tc.wantParam, body)
			}
			if tc.wantLocation != "" && rr.Header().Get("Location") != tc.wantLocation {
				t.Fatalf("location = %q, want %q", rr.Header().Get("Location"), tc.wantLocation)
			}
			if strings.Contains(body, `data-page="NotFound"`) {
				t.Fatalf("%s fell through to NotFound", tc.path)
			}
		})
	}
}

func TestRolelessSessionAtSignupVariantsDoesNotLoop(t *testing.T) {
	t.Parallel()

	h := newHarness(t, session.State{User: &session.User{ID: "u1"}}, nil)
	for _, path := range []string{"/auth/signup/", "/Auth/Signup"} {
		if rr := h.get(path); rr.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", path, rr.Code)
		}
	}
}

func TestRouteParamsReachThePage(t *testing.T) {
	t.Parallel()

	h := newHarness(t, session.State{User: vendor()}, nil)
	rr := h.get("/vendor/orders/o-77/status")
	body := rr.Body.String()
	if !strings.Contains(body, `data-page="VendorOrderStatus"`) || !strings.Contains(body, `data-param="orderId"`) || !strings.Contains(body, "o-77") {
		t.Fatalf("order status page missing params: %s", body)
	}
	rr = h.get("/product/p-9")
	if !strings.Contains(rr.Body.String(), "p-9") {
		t.Fatalf("product param missing")
	}
}

func TestUnknownPathRendersNotFound(t *testing.T) {
	t.Parallel()

	h := newHarness(t, session.State{}, nil)
	for _, path := range []string{"/nonexistent-path", "/404", "/shop/extra"} {
		rr := h.get(path)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s: status = %d, want 404", path, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `data-page="NotFound"`) {
			t.Fatalf("%s: NotFound page not rendered", path)
		}
	}
}

func TestRolelessSessionRedirectsToSignupOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(t, session.State{User: &session.User{ID: "u1"}}, nil)
	rr := h.get("/dashboard/orders")
	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != "/auth/signup" {
		t.Fatalf("location = %q", got)
	}
	if strings.Contains(rr.Body.String(), "data-page") {
		t.Fatalf("redirect rendered page content")
	}
	h.recorder.mu.Lock()
	ready := append([]string(nil), h.recorder.ready...)
	h.recorder.mu.Unlock()
	if len(ready) != 1 || ready[0] != shell.SourceRedirect {
		t.Fatalf("ready = %v, want one redirect signal", ready)
	}
	if h.manager.Len() != 0 {
		t.Fatalf("redirected visit still mounted")
	}
}

func TestRolelessSessionOnPublicRouteAlsoRedirects(t *testing.T) {
	t.Parallel()

	h := newHarness(t, session.State{User: &session.User{ID: "u1"}}, nil)
	rr := h.get("/shop")
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/auth/signup" {
		t.Fatalf("status = %d location = %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestRolelessSessionAtSignupRendersEmptyShell(t *testing.T) {
	t.Parallel()

	h := newHarness(t, session.State{User: &session.User{ID: "u1"}}, nil)
	rr := h.get("/auth/signup")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `id="main"`) || strings.Contains(body, "data-page") {
		t.Fatalf("signup shell = %s", body)
	}
}

func TestRolelessRedirectUsesHXLocationForHTMX(t *testing.T) {
	t.Parallel()

	h := newHarness(t, session.State{User: &session.User{ID: "u1"}}, nil)
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()
	h.handler.ServeHTTP(rr, req)
	if got := rr.Header().Get("HX-Location"); !strings.Contains(got, `"/auth/signup"`) {
		t.Fatalf("HX-Location = %q", got)
	}
	if got := rr.Header().Get("HX-Replace-Url"); got != "/auth/signup" {
		t.Fatalf("HX-Replace-Url = %q", got)
	}
}

func TestVendorRoutesNeverRenderWithoutAccess(t *testing.T) {
	t.Parallel()

	customerMode := vendor()
	customerMode.Mode = session.ModeCustomer
	notOnboarded := vendor()
	notOnboarded.VendorOnboarded = false

	tests := []struct {
		name         string
		state        session.State
		wantStatus   int
		wantLocation string
		wantMarker   string
	}{
		{name: "anonymous", state: session.State{}, wantStatus: http.StatusFound, wantLocation: "/auth/login?next=%2Fvendor%2Fproducts"},
		{name: "no can_sell", state: session.State{User: customer()}, wantStatus: http.StatusForbidden, wantMarker: "app-error--denied"},
		{name: "not onboarded", state: session.State{User: notOnboarded}, wantStatus: http.StatusFound, wantLocation: "/vendor/onboarding"},
		{name: "customer mode", state: session.State{User: customerMode}, wantStatus: http.StatusForbidden, wantMarker: `data-target-mode="vendor"`},
		{name: "loading", state: session.State{Loading: true}, wantStatus: http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, tc.state, nil)
			rr := h.get("/vendor/products")
			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			if tc.wantLocation != "" && rr.Header().Get("Location") != tc.wantLocation {
				t.Fatalf("location = %q, want %q", rr.Header().Get("Location"), tc.wantLocation)
			}
			body := rr.Body.String()
			if tc.wantMarker != "" && !strings.Contains(body, tc.wantMarker) {
				t.Fatalf("body missing %q", tc.wantMarker)
			}
			if strings.Contains(body, `data-page="VendorProducts"`) {
				t.Fatalf("VendorProducts rendered without access")
			}
		})
	}
}

func TestGatedRoutesRenderInsideDashboardLayout(t *testing.T) {
	t.Parallel()

	h := newHarness(t, session.State{User: vendor()}, nil)
	rr := h.get("/vendor/products")
	body := rr.Body.String()
	if rr.Code != http.StatusOK || !strings.Contains(body, `data-dashboard="vendor"`) || !strings.Contains(body, `data-page="VendorProducts"`) {
		t.Fatalf("vendor products = %d %s", rr.Code, body)
	}
	if strings.Contains(body, `id="bottom-nav"`) {
		t.Fatalf("bottom nav rendered on vendor route")
	}
	if !strings.Contains(rr.Header().Get("Cache-Control"), "no-store") {
		t.Fatalf("gated page cacheable")
	}

	h = newHarness(t, session.State{User: customer()}, nil)
	rr = h.get("/dashboard")
	if !strings.Contains(rr.Body.String(), `data-dashboard="customer"`) {
		t.Fatalf("customer dashboard layout missing")
	}
	rr = h.get("/cart")
	if strings.Contains(rr.Body.String(), "data-dashboard") || !strings.Contains(rr.Body.String(), `data-page="Cart"`) {
		t.Fatalf("cart should render without dashboard chrome")
	}
}

func TestReadinessSignalledOnFirstResolution(t *testing.T) {
	t.Parallel()

	h := newHarness(t, session.State{Loading: true}, nil)
	rr := h.get("/dashboard")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	h.recorder.mu.Lock()
	defer h.recorder.mu.Unlock()
	if len(h.recorder.ready) != 1 || h.recorder.ready[0] != shell.SourceRoute {
		t.Fatalf("ready = %v", h.recorder.ready)
	}
	if len(h.recorder.outcome) != 1 || h.recorder.outcome[0] != "/dashboard=pending" {
		t.Fatalf("outcome = %v", h.recorder.outcome)
	}
}

func TestPageLoadFailureRendersErrorAndRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	catalog := pages.Catalog()
	home := catalog[pages.Home]
	catalog[pages.Home] = func(ctx context.Context) (pages.Page, error) {
		if calls.Add(1) == 1 {
			return pages.Page{}, errors.New("chunk failed")
		}
		return home(ctx)
	}
	h := newHarness(t, session.State{}, pages.NewRegistry(catalog, nil))

	rr := h.get("/")
	if rr.Code != http.StatusInternalServerError || !strings.Contains(rr.Body.String(), `data-status="500"`) {
		t.Fatalf("first load = %d", rr.Code)
	}
	rr = h.get("/")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `data-page="Home"`) {
		t.Fatalf("retry = %d", rr.Code)
	}
}

func TestTypedPageLoadFailureKeepsItsStatus(t *testing.T) {
	t.Parallel()

	catalog := pages.Catalog()
	catalog[pages.Shop] = func(context.Context) (pages.Page, error) {
		return pages.Page{}, apperrors.E(apperrors.KindUnavailable, "catalog offline")
	}
	h := newHarness(t, session.State{}, pages.NewRegistry(catalog, nil))

	rr := h.get("/shop")
	if rr.Code != http.StatusServiceUnavailable || !strings.Contains(rr.Body.String(), `data-status="503"`) {
		t.Fatalf("load failure = %d %s", rr.Code, rr.Body.String())
	}
	h.recorder.mu.Lock()
	defer h.recorder.mu.Unlock()
	if len(h.recorder.outcome) != 1 || h.recorder.outcome[0] != "/shop=load_error" {
		t.Fatalf("outcome = %v", h.recorder.outcome)
	}
}

func TestNewValidatesTable(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error without registry")
	}
	empty := pages.NewRegistry(nil, nil)
	if _, err := New(Config{Pages: empty}); err == nil {
		t.Fatalf("expected error for unregistered pages")
	}
	registry := pages.NewRegistry(pages.Catalog(), nil)
	duplicate := []Route{{Pattern: "/shop", Page: pages.Shop}, {Pattern: "/shop", Page: pages.Home}}
	if _, err := New(Config{Pages: registry, Table: duplicate}); err == nil {
		t.Fatalf("expected error for duplicate pattern")
	}
	if _, err := New(Config{Pages: registry, Table: []Route{{Pattern: "shop", Page: pages.Shop}}}); err == nil {
		t.Fatalf("expected error for relative pattern")
	}
}

func TestPostIsNotAllowed(t *testing.T) {
	t.Parallel()

	h := newHarness(t, session.State{}, nil)
	rr := httptest.NewRecorder()
	h.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/shop", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rr.Code)
	}
}
