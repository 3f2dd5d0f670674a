// Package routepath stores the canonical storefront URL contract.
//
// These strings are public: links, bookmarks and search engines depend on
// them, including the duplicate trailing-slash variants.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Root         = "/"
	Shop         = "/shop"
	StoreListing = "/store-listing"
	Stores       = "/stores"
	Cart         = "/cart"

	ProductPrefix = "/product/"

	DashboardPrefix        = "/dashboard"
	Dashboard              = "/dashboard"
	DashboardOrders        = "/dashboard/orders"
	DashboardWishlist      = "/dashboard/wishlist"
	DashboardAddresses     = "/dashboard/addresses"
	DashboardPayment       = "/dashboard/payment"
	DashboardSettings      = "/dashboard/settings"
	DashboardNotifications = "/dashboard/notifications"

	VendorPrefix                = "/vendor/"
	VendorOnboarding            = "/vendor/onboarding"
	VendorDashboard             = "/vendor/dashboard"
	VendorProducts              = "/vendor/products"
	VendorProductNew            = "/vendor/products/new"
	VendorOrders                = "/vendor/orders"
	VendorChat                  = "/vendor/chat"
	VendorAnalytics             = "/vendor/analytics"
	VendorSettings              = "/vendor/settings"
	VendorSettingsBasic         = "/vendor/settings/basic"
	VendorSettingsPayment       = "/vendor/settings/payment"
	VendorSettingsBusiness      = "/vendor/settings/business"
	VendorSettingsSocial        = "/vendor/settings/social"
	VendorSettingsNotifications = "/vendor/settings/notifications"
	VendorSettingsSecurity      = "/vendor/settings/security"
	VendorNotifications         = "/vendor/notifications"
	VendorStorefrontPrefix      = "/store/vendor/"
	AuthPrefix                  = "/auth/"
	AuthLogin                   = "/auth/login"
	AuthSignup                  = "/auth/signup"
	AuthVerify                  = "/auth/verify"
	Contact                     = "/contact"
	Careers                     = "/careers"
	About                       = "/about"
	HelpCenter                  = "/help-center"
	FAQ                         = "/faq"
	TrackOrder                  = "/track-order"
	Checkout                    = "/checkout"
	CheckoutTrailing            = "/checkout/"
	ThankYou                    = "/thank-you"
	ThankYouTrailing            = "/thank-you/"
	Legal                       = "/legal"
	LegalPrivacyPolicy          = "/legal/privacy-policy"
	LegalTermsOfUse             = "/legal/terms-of-use"
	SiteMap                     = "/site-map"
	NotFound                    = "/404"

	Health        = "/up"
	Metrics       = "/metrics"
	StaticPrefix  = "/static/"
	SessionPrefix = "/session/"
	SessionMode   = "/session/mode"
	ShellPrefix   = "/shell/"
	ShellLive     = "/shell/live"
	NextQueryKey  = "next"
	VisitQueryKey = "visit"
	ModeFormField = "mode"
)

// AuthLoginWithNext returns the login route that returns to next after
// sign-in. Only same-site relative paths are carried.
func AuthLoginWithNext(next string) string {
	next = strings.TrimSpace(next)
	if !IsLocalPath(next) || next == AuthLogin {
		return AuthLogin
	}
	return AuthLogin + "?" + NextQueryKey + "=" + url.QueryEscape(next)
}

// IsLocalPath reports whether raw is an absolute path on this site and not
// a protocol-relative or scheme-qualified URL.
func IsLocalPath(raw string) bool {
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.Scheme == "" && parsed.Host == ""
}

// IsDashboardPath reports whether path belongs to a role dashboard. The
// match is a plain prefix test, so "/dashboards" also counts, as does any
// path under "/vendor/" including onboarding.
func IsDashboardPath(path string) bool {
	return strings.HasPrefix(path, VendorPrefix) || strings.HasPrefix(path, DashboardPrefix)
}
