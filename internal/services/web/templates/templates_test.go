package templates

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/a-h/templ"

	webi18n "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/i18n"
)

func render(t *testing.T, c templ.Component, children templ.Component) string {
	t.Helper()
	ctx := context.Background()
	if children != nil {
		ctx = templ.WithChildren(ctx, children)
	}
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func assertContains(t *testing.T, body string, markers ...string) {
	t.Helper()
	for _, marker := range markers {
		if !strings.Contains(body, marker) {
			t.Fatalf("body missing %q:\n%s", marker, body)
		}
	}
}

func assertNotContains(t *testing.T, body string, markers ...string) {
	t.Helper()
	for _, marker := range markers {
		if strings.Contains(body, marker) {
			t.Fatalf("body unexpectedly contains %q:\n%s", marker, body)
		}
	}
}

func englishLoc() Localizer {
	return webi18n.Printer(webi18n.Default())
}

func TestAppLayoutRendersShellChrome(t *testing.T) {
	t.Parallel()

	body := render(t, AppLayout(LayoutOptions{
		Title:         "Shop",
		Lang:          "en-US",
		Loc:           englishLoc(),
		CurrentPath:   "/shop",
		VisitID:       "visit-1",
		ShowPreloader: true,
		ShowBottomNav: true,
		RoleSwitch:    &RoleSwitch{TargetMode: "vendor", Label: "Switch to selling"},
		Toast:         &Toast{Kind: "success", Message: "Switched to vendor mode."},
	}), templ.Raw("<p>page body</p>"))

	assertContains(t, body,
		"<!doctype html>",
		`<html lang="en-US" data-theme="light">`,
		"<title>Shop | NWC Marketplace</title>",
		`data-visit="visit-1"`,
		`data-live-url="/shell/live?visit=visit-1"`,
		`data-tooltip-delay="700"`,
		`id="preloader"`,
		`id="toast-region"`,
		"Switched to vendor mode.",
		`<main id="main"><p>page body</p></main>`,
		`id="bottom-nav"`,
		`<a href="/shop" class="bottom-nav__link" data-icon="shop" aria-current="page">Shop</a>`,
		`action="/session/mode"`,
		`name="mode" value="vendor"`,
		`<footer class="shell-footer"><nav class="language-picker" aria-label="Language">`,
	)
}

func TestAppLayoutOmitsOptionalChrome(t *testing.T) {
	t.Parallel()

	body := render(t, AppLayout(LayoutOptions{Loc: englishLoc(), CurrentPath: "/vendor/products"}), nil)
	assertContains(t, body, "<title>NWC Marketplace</title>", `lang="en-US"`, `<main id="main"></main>`)
	assertNotContains(t, body, `id="preloader"`, `id="bottom-nav"`, "data-visit", "role-switch", "toast--")
}

func TestAppLayoutEscapesText(t *testing.T) {
	t.Parallel()

	body := render(t, AppLayout(LayoutOptions{Title: `<script>x</script>`, Toast: &Toast{Message: `"hi" & <b>`}}), nil)
	assertNotContains(t, body, "<script>x</script>", "<b>")
	assertContains(t, body, "&lt;script&gt;", "&amp;", "toast--info")
}

func TestBottomNavMarksHomeOnlyOnRoot(t *testing.T) {
	t.Parallel()

	body := render(t, BottomNav(englishLoc(), "/"), nil)
	assertContains(t, body, `<a href="/" class="bottom-nav__link" data-icon="home" aria-current="page">Home</a>`)
	body = render(t, BottomNav(englishLoc(), "/cart"), nil)
	assertNotContains(t, body, `data-icon="home" aria-current`)
	assertContains(t, body, `data-icon="cart" aria-current="page"`)
	body = render(t, BottomNav(englishLoc(), "/Shop"), nil)
	assertContains(t, body, `data-icon="shop" aria-current="page"`)
}

func TestLanguagePickerKeepsQueryAndMarksCurrent(t *testing.T) {
	t.Parallel()

	body := render(t, LanguagePicker(englishLoc(), "fr-FR", "/shop", "q=shoes"), nil)
	assertContains(t, body,
		`<a href="/shop?lang=en-US&amp;q=shoes" hreflang="en-US">English</a>`,
		`<a href="/shop?lang=fr-FR&amp;q=shoes" hreflang="fr-FR" aria-current="true">Français</a>`,
	)

	body = render(t, LanguagePicker(englishLoc(), "", "", ""), nil)
	assertContains(t, body, `<a href="/?lang=en-US" hreflang="en-US" aria-current="true">English</a>`)
}

func TestDashboardLayoutVariants(t *testing.T) {
	t.Parallel()

	vendor := render(t, DashboardLayout(DashboardVendor, englishLoc(), "/vendor/products"), templ.Raw("<p>grid</p>"))
	assertContains(t, vendor, `data-dashboard="vendor"`, "Seller centre", `<a href="/vendor/products" aria-current="page">Products</a>`, "<p>grid</p>")

	customer := render(t, DashboardLayout(DashboardCustomer, englishLoc(), "/dashboard"), templ.Raw("<p>orders</p>"))
	assertContains(t, customer, `data-dashboard="customer"`, "My account", "Wishlist", "<p>orders</p>")

	bare := render(t, DashboardLayout(DashboardRole("admin"), englishLoc(), "/"), templ.Raw("<p>plain</p>"))
	if bare != "<p>plain</p>" {
		t.Fatalf("unknown role render = %q, want children only", bare)
	}
}

func TestPagePlaceholderListsParamsInOrder(t *testing.T) {
	t.Parallel()

	body := render(t, PagePlaceholder("VendorOrderStatus", "Order status", englishLoc(), map[string]string{"orderId": "o-9", "a": "<1>"}), nil)
	assertContains(t, body, `data-page="VendorOrderStatus"`, "<h1 class=\"page__title\">Order status</h1>", "&lt;1&gt;")
	if strings.Index(body, `data-param="a"`) > strings.Index(body, `data-param="orderId"`) {
		t.Fatalf("params not sorted: %s", body)
	}

	body = render(t, PagePlaceholder("Home", "Home", englishLoc(), nil), nil)
	assertNotContains(t, body, "page__params")
}

func TestErrorComponents(t *testing.T) {
	t.Parallel()

	loc := englishLoc()
	assertContains(t, render(t, AppErrorState(http.StatusNotFound, loc), nil), `data-status="404"`, "Page not found")
	assertContains(t, render(t, AppErrorState(http.StatusTeapot, loc), nil), `data-status="500"`, "Something went wrong")
	assertContains(t, render(t, AccessDenied(loc), nil), "Access denied")

	offer := render(t, SwitchModePrompt(loc, "vendor", true), nil)
	assertContains(t, offer, "This page is available in vendor mode.", "Switch to vendor mode", `value="vendor"`)
	noOffer := render(t, SwitchModePrompt(loc, "customer", false), nil)
	assertNotContains(t, noOffer, "<form")

	if got := AppErrorPageTitle(http.StatusBadGateway, loc); got != "Something went wrong" {
		t.Fatalf("AppErrorPageTitle(502) = %q", got)
	}
	if got := AppErrorPageTitle(http.StatusServiceUnavailable, loc); got != "Service unavailable" {
		t.Fatalf("AppErrorPageTitle(503) = %q", got)
	}
}

func TestEmptyRendersNothing(t *testing.T) {
	t.Parallel()

	if got := render(t, Empty(), nil); got != "" {
		t.Fatalf("Empty() rendered %q", got)
	}
}
