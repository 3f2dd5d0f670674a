package router

import (
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/access"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/pages"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/routepath"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/templates"
)

// Gate selects the access wrapper around a route.
type Gate int

const (
	GateNone Gate = iota
	GateCart
	GateCustomer
	GateVendor
)

// Requirement returns the access requirement enforced by g.
func (g Gate) Requirement() access.Requirement {
	switch g {
	case GateCart:
		return access.CartGate
	case GateCustomer:
		return access.CustomerGate
	case GateVendor:
		return access.VendorGate
	default:
		return access.Requirement{}
	}
}

// DashboardRole returns the dashboard chrome wrapped around gated pages, or
// "" when the page renders bare.
func (g Gate) DashboardRole() templates.DashboardRole {
	switch g {
	case GateCustomer:
		return templates.DashboardCustomer
	case GateVendor:
		return templates.DashboardVendor
	default:
		return ""
	}
}

// Route maps a URL pattern to a page.
type Route struct {
	// Pattern is the path in route-table notation: ":name" segments are
	// parameters and "*" matches anything left unmatched.
	Pattern string
	Page    pages.ID
	Gate    Gate
}

// DefaultTable is the storefront route table.
func DefaultTable() []Route {
	return []Route{
		{Pattern: routepath.Root, Page: pages.Home},
		{Pattern: routepath.Shop, Page: pages.Shop},
		{Pattern: routepath.StoreListing, Page: pages.StoreListing},
		{Pattern: routepath.Stores, Page: pages.StoreListing},
		{Pattern: routepath.VendorOnboarding, Page: pages.VendorOnboarding},
		{Pattern: "/product/:id", Page: pages.ProductDetail},
		{Pattern: routepath.Cart, Page: pages.Cart, Gate: GateCart},

		{Pattern: routepath.Dashboard, Page: pages.DashboardOverview, Gate: GateCustomer},
		{Pattern: routepath.DashboardOrders, Page: pages.DashboardOrders, Gate: GateCustomer},
		{Pattern: routepath.DashboardWishlist, Page: pages.DashboardWishlist, Gate: GateCustomer},
		{Pattern: routepath.DashboardAddresses, Page: pages.DashboardAddresses, Gate: GateCustomer},
		{Pattern: routepath.DashboardPayment, Page: pages.DashboardPayment, Gate: GateCustomer},
		{Pattern: routepath.DashboardSettings, Page: pages.DashboardSettings, Gate: GateCustomer},
		{Pattern: routepath.DashboardNotifications, Page: pages.Notifications, Gate: GateCustomer},

		{Pattern: routepath.VendorDashboard, Page: pages.VendorDashboard, Gate: GateVendor},
		{Pattern: routepath.VendorProducts, Page: pages.VendorProducts, Gate: GateVendor},
		{Pattern: routepath.VendorProductNew, Page: pages.VendorProductNew, Gate: GateVendor},
		{Pattern: "/vendor/products/:productId", Page: pages.VendorProductDetail, Gate: GateVendor},
		{Pattern: "/vendor/products/:productId/edit", Page: pages.VendorProductEdit, Gate: GateVendor},
		{Pattern: routepath.VendorOrders, Page: pages.VendorOrders, Gate: GateVendor},
		{Pattern: "/vendor/orders/:orderId/status", Page: pages.VendorOrderStatus, Gate: GateVendor},
		{Pattern: "/vendor/orders/:orderId", Page: pages.VendorOrderDetail, Gate: GateVendor},
		{Pattern: routepath.VendorChat, Page: pages.VendorChat, Gate: GateVendor},
		{Pattern: routepath.VendorAnalytics, Page: pages.VendorAnalytics, Gate: GateVendor},
		{Pattern: routepath.VendorSettings, Page: pages.VendorSettings, Gate: GateVendor},
		{Pattern: routepath.VendorSettingsBasic, Page: pages.VendorSettingsBasic, Gate: GateVendor},
		{Pattern: routepath.VendorSettingsPayment, Page: pages.VendorSettingsPayment, Gate: GateVendor},
		{Pattern: routepath.VendorSettingsBusiness, Page: pages.VendorSettingsBusiness, Gate: GateVendor},
		{Pattern: routepath.VendorSettingsSocial, Page: pages.VendorSettingsSocial, Gate: GateVendor},
		{Pattern: routepath.VendorSettingsNotifications, Page: pages.VendorSettingsNotifications, Gate: GateVendor},
		{Pattern: routepath.VendorSettingsSecurity, Page: pages.VendorSettingsSecurity, Gate: GateVendor},
		{Pattern: routepath.VendorNotifications, Page: pages.Notifications, Gate: GateVendor},

		{Pattern: routepath.AuthLogin, Page: pages.Login},
		{Pattern: routepath.AuthSignup, Page: pages.Signup},
		{Pattern: routepath.AuthVerify, Page: pages.VerifyOTP},

		{Pattern: routepath.Contact, Page: pages.Contact},
		{Pattern: routepath.Careers, Page: pages.Careers},
		{Pattern: routepath.About, Page: pages.About},
		{Pattern: routepath.HelpCenter, Page: pages.HelpCenter},
		{Pattern: routepath.FAQ, Page: pages.FAQ},
		{Pattern: routepath.TrackOrder, Page: pages.OrderTracking},
		{Pattern: "/store/vendor/:id", Page: pages.VendorStorefront},
		{Pattern: "/store/vendor/:id/", Page: pages.VendorStorefront},
		{Pattern: routepath.Checkout, Page: pages.Checkout},
		{Pattern: routepath.CheckoutTrailing, Page: pages.Checkout},
		{Pattern: routepath.ThankYou, Page: pages.ThankYou},
		{Pattern: routepath.ThankYouTrailing, Page: pages.ThankYou},
		{Pattern: routepath.LegalPrivacyPolicy, Page: pages.PrivacyPolicy},
		{Pattern: routepath.LegalTermsOfUse, Page: pages.TermsOfUse},
		{Pattern: routepath.Legal, Page: pages.Legal},
		{Pattern: routepath.SiteMap, Page: pages.SiteMap},
		{Pattern: routepath.NotFound, Page: pages.NotFound},
		{Pattern: "*", Page: pages.NotFound},
	}
}
