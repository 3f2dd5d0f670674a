package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/templates"
)

// All lists every page the storefront can render.
var All = []ID{
	Home, Shop, ProductDetail, Contact, Careers, About, HelpCenter, FAQ,
	OrderTracking, StoreListing, VendorOnboarding, VendorStorefront, Checkout,
	ThankYou, Cart, DashboardOverview, DashboardOrders, DashboardWishlist,
	DashboardAddresses, DashboardPayment, DashboardSettings, Login, Signup,
	VerifyOTP, VendorDashboard, VendorProducts, VendorProductNew,
	VendorProductDetail, VendorProductEdit, VendorOrders, VendorOrderDetail,
	VendorOrderStatus, VendorChat, VendorAnalytics, VendorSettings,
	VendorSettingsBasic, VendorSettingsPayment, VendorSettingsBusiness,
	VendorSettingsSocial, VendorSettingsNotifications, VendorSettingsSecurity,
	Notifications, PrivacyPolicy, TermsOfUse, Legal, SiteMap, NotFound,
}

// Catalog returns placeholder loaders for every page in All. Page content
// is owned by the feature teams; each view shows its title and the route
// parameters it was resolved with.
func Catalog() map[ID]Loader {
	loaders := make(map[ID]Loader, len(All))
	for _, id := range All {
		loaders[id] = placeholderLoader(id)
	}
	return loaders
}

func placeholderLoader(id ID) Loader {
	return func(context.Context) (Page, error) {
		return Page{
			ID: id,
			Render: func(loc templates.Localizer, params map[string]string) templ.Component {
				return templates.PagePlaceholder(string(id), templates.T(loc, id.TitleKey()), loc, params)
			},
		}, nil
	}
}
