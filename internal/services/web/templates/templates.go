// Package templates renders the storefront shell chrome and page views as
// templ components.
package templates

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	webi18n "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/i18n"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/routepath"
)

// Localizer provides translated strings for templ components.
type Localizer = webi18n.Localizer

const (
	// PreloaderID is the DOM id of the startup preloader element.
	PreloaderID = "preloader"
	// BottomNavID is the DOM id of the mobile bottom navigation.
	BottomNavID = "bottom-nav"
	// ToastRegionID is the DOM id of the toast region.
	ToastRegionID = "toast-region"
)

// htmxScriptURL pins the htmx release that drives boosted navigation.
const htmxScriptURL = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"

// tooltipDelayMS is the hover delay applied to every tooltip in the shell.
const tooltipDelayMS = "700"

// Toast is one notice shown in the toast region.
type Toast struct {
	Kind    string
	Message string
}

// RoleSwitch describes the floating role-switch affordance.
type RoleSwitch struct {
	TargetMode string
	Label      string
}

// LayoutOptions carries everything the app shell needs around a page.
type LayoutOptions struct {
	Title        string
	Lang         string
	Loc          Localizer
	CurrentPath  string
	CurrentQuery string
	// VisitID binds the page to its live shell channel. Empty disables the
	// channel, which leaves the client-side fallback to dismiss the preloader.
	VisitID       string
	ShowPreloader bool
	ShowBottomNav bool
	RoleSwitch    *RoleSwitch
	Toast         *Toast
}

// T returns a translated string or a key-derived fallback.
func T(loc Localizer, key string, args ...any) string {
	return webi18n.T(loc, key, args...)
}

// DocumentTitle joins a page title with the brand name.
func DocumentTitle(loc Localizer, title string) string {
	brand := T(loc, "shell.brand")
	title = strings.TrimSpace(title)
	if title == "" {
		return brand
	}
	return title + " | " + brand
}

// LiveURL returns the live shell channel URL for a visit.
func LiveURL(visitID string) string {
	return routepath.ShellLive + "?" + routepath.VisitQueryKey + "=" + visitID
}

func documentLang(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return webi18n.Default().String()
	}
	return lang
}

func staticURL(name string) string {
	return routepath.StaticPrefix + name
}

func hasToast(toast *Toast) bool {
	return toast != nil && strings.TrimSpace(toast.Message) != ""
}

func toastKind(toast *Toast) string {
	if kind := strings.TrimSpace(toast.Kind); kind != "" {
		return kind
	}
	return "info"
}

type navItem struct {
	href     string
	labelKey string
	icon     string
}

var bottomNavItems = []navItem{
	{href: routepath.Root, labelKey: "shell.nav.home", icon: "home"},
	{href: routepath.Shop, labelKey: "shell.nav.shop", icon: "shop"},
	{href: routepath.Stores, labelKey: "shell.nav.stores", icon: "store"},
	{href: routepath.Cart, labelKey: "shell.nav.cart", icon: "cart"},
	{href: routepath.Dashboard, labelKey: "shell.nav.account", icon: "account"},
}

// isCurrentNav compares against the folded path the router matched on.
func isCurrentNav(href string, currentPath string) bool {
	currentPath = strings.ToLower(currentPath)
	if href == routepath.Root {
		return currentPath == routepath.Root
	}
	return currentPath == href || strings.HasPrefix(currentPath, href+"/")
}

type languageOption struct {
	tag     string
	href    string
	current bool
}

// languageOptions links the current page in every supported language.
func languageOptions(lang string, path string, rawQuery string) []languageOption {
	current, _ := webi18n.ParseTag(documentLang(lang))
	tags := webi18n.Supported()
	options := make([]languageOption, 0, len(tags))
	for _, tag := range tags {
		options = append(options, languageOption{
			tag:     tag.String(),
			href:    webi18n.LanguageURL(path, rawQuery, tag.String()),
			current: tag == current,
		})
	}
	return options
}

// DashboardRole selects the dashboard chrome variant.
type DashboardRole string

const (
	DashboardCustomer DashboardRole = "customer"
	DashboardVendor   DashboardRole = "vendor"
)

var dashboardNav = map[DashboardRole][]navItem{
	DashboardCustomer: {
		{href: routepath.Dashboard, labelKey: "shell.dashboard.overview"},
		{href: routepath.DashboardOrders, labelKey: "shell.dashboard.orders"},
		{href: routepath.DashboardWishlist, labelKey: "shell.dashboard.wishlist"},
		{href: routepath.DashboardAddresses, labelKey: "shell.dashboard.addresses"},
		{href: routepath.DashboardPayment, labelKey: "shell.dashboard.payment"},
		{href: routepath.DashboardSettings, labelKey: "shell.dashboard.settings"},
		{href: routepath.DashboardNotifications, labelKey: "shell.dashboard.notifications"},
	},
	DashboardVendor: {
		{href: routepath.VendorDashboard, labelKey: "shell.vendor.dashboard"},
		{href: routepath.VendorProducts, labelKey: "shell.vendor.products"},
		{href: routepath.VendorOrders, labelKey: "shell.vendor.orders"},
		{href: routepath.VendorChat, labelKey: "shell.vendor.chat"},
		{href: routepath.VendorAnalytics, labelKey: "shell.vendor.analytics"},
		{href: routepath.VendorSettings, labelKey: "shell.vendor.settings"},
		{href: routepath.VendorNotifications, labelKey: "shell.vendor.notifications"},
	},
}

var dashboardTitleKeys = map[DashboardRole]string{
	DashboardCustomer: "shell.layout.customer_title",
	DashboardVendor:   "shell.layout.vendor_title",
}

// NormalizeErrorStatus folds statuses onto the three error page variants.
func NormalizeErrorStatus(statusCode int) int {
	switch statusCode {
	case http.StatusNotFound, http.StatusServiceUnavailable:
		return statusCode
	default:
		return http.StatusInternalServerError
	}
}

// AppErrorPageTitle returns the document title for app error pages.
func AppErrorPageTitle(statusCode int, loc Localizer) string {
	return T(loc, "error.title."+errorStatus(statusCode))
}

func modeLabel(loc Localizer, mode string) string {
	return T(loc, "shell.mode."+mode)
}

func errorStatus(statusCode int) string {
	return strconv.Itoa(NormalizeErrorStatus(statusCode))
}

func sortedParamNames(params map[string]string) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Empty is the neutral fallback rendered while a session is still resolving.
func Empty() templ.Component {
	return templ.NopComponent
}
