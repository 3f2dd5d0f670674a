// Package pages is the on-demand registry of storefront page views.
package pages

import (
	"context"
	"fmt"
	"sync"

	"github.com/a-h/templ"
	"golang.org/x/sync/singleflight"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/templates"
)

// ID names one page view.
type ID string

const (
	Home                        ID = "Home"
	Shop                        ID = "Shop"
	ProductDetail               ID = "ProductDetail"
	Contact                     ID = "Contact"
	Careers                     ID = "Careers"
	About                       ID = "About"
	HelpCenter                  ID = "HelpCenter"
	FAQ                         ID = "FAQ"
	OrderTracking               ID = "OrderTracking"
	StoreListing                ID = "StoreListing"
	VendorOnboarding            ID = "VendorOnboarding"
	VendorStorefront            ID = "VendorStorefront"
	Checkout                    ID = "Checkout"
	ThankYou                    ID = "ThankYou"
	Cart                        ID = "Cart"
	DashboardOverview           ID = "DashboardOverview"
	DashboardOrders             ID = "DashboardOrders"
	DashboardWishlist           ID = "DashboardWishlist"
	DashboardAddresses          ID = "DashboardAddresses"
	DashboardPayment            ID = "DashboardPayment"
	DashboardSettings           ID = "DashboardSettings"
	Login                       ID = "Login"
	Signup                      ID = "Signup"
	VerifyOTP                   ID = "VerifyOTP"
	VendorDashboard             ID = "VendorDashboard"
	VendorProducts              ID = "VendorProducts"
	VendorProductNew            ID = "VendorProductNew"
	VendorProductDetail         ID = "VendorProductDetail"
	VendorProductEdit           ID = "VendorProductEdit"
	VendorOrders                ID = "VendorOrders"
	VendorOrderDetail           ID = "VendorOrderDetail"
	VendorOrderStatus           ID = "VendorOrderStatus"
	VendorChat                  ID = "VendorChat"
	VendorAnalytics             ID = "VendorAnalytics"
	VendorSettings              ID = "VendorSettings"
	VendorSettingsBasic         ID = "VendorSettingsBasic"
	VendorSettingsPayment       ID = "VendorSettingsPayment"
	VendorSettingsBusiness      ID = "VendorSettingsBusiness"
	VendorSettingsSocial        ID = "VendorSettingsSocial"
	VendorSettingsNotifications ID = "VendorSettingsNotifications"
	VendorSettingsSecurity      ID = "VendorSettingsSecurity"
	Notifications               ID = "Notifications"
	PrivacyPolicy               ID = "PrivacyPolicy"
	TermsOfUse                  ID = "TermsOfUse"
	Legal                       ID = "Legal"
	SiteMap                     ID = "SiteMap"
	NotFound                    ID = "NotFound"
)

// TitleKey returns the catalog key of the page title.
func (id ID) TitleKey() string {
	return "page.title." + string(id)
}

// Page is a loaded view.
type Page struct {
	ID     ID
	Render func(loc templates.Localizer, params map[string]string) templ.Component
}

// Loader produces a page on first use.
type Loader func(ctx context.Context) (Page, error)

// LoadObserver records page load results.
type LoadObserver interface {
	PageLoaded(page string, result string)
}

// Registry loads pages on demand. Concurrent loads of one page share a
// single loader call; successes are cached and failures are not.
type Registry struct {
	loaders  map[ID]Loader
	observer LoadObserver

	mu     sync.RWMutex
	loaded map[ID]Page
	group  singleflight.Group
}

// NewRegistry returns a registry over loaders. observer may be nil.
func NewRegistry(loaders map[ID]Loader, observer LoadObserver) *Registry {
	copied := make(map[ID]Loader, len(loaders))
	for id, loader := range loaders {
		copied[id] = loader
	}
	return &Registry{loaders: copied, observer: observer, loaded: map[ID]Page{}}
}

// Validate reports the first id with no registered loader.
func (r *Registry) Validate(ids ...ID) error {
	for _, id := range ids {
		if loader, ok := r.loaders[id]; !ok || loader == nil {
			return fmt.Errorf("page %q is not registered", id)
		}
	}
	return nil
}

// Load returns the page for id, loading it if needed.
func (r *Registry) Load(ctx context.Context, id ID) (Page, error) {
	r.mu.RLock()
	page, ok := r.loaded[id]
	r.mu.RUnlock()
	if ok {
		return page, nil
	}
	loader, ok := r.loaders[id]
	if !ok || loader == nil {
		return Page{}, fmt.Errorf("page %q is not registered", id)
	}

	ch := r.group.DoChan(string(id), func() (any, error) {
		r.mu.RLock()
		cached, hit := r.loaded[id]
		r.mu.RUnlock()
		if hit {
			return cached, nil
		}
		page, err := loader(context.WithoutCancel(ctx))
		if err != nil {
			r.observe(id, "error")
			return Page{}, fmt.Errorf("load page %s: %w", id, err)
		}
		if page.ID == "" {
			page.ID = id
		}
		r.mu.Lock()
		r.loaded[id] = page
		r.mu.Unlock()
		r.observe(id, "ok")
		return page, nil
	})

	select {
	case <-ctx.Done():
		return Page{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Page{}, res.Err
		}
		return res.Val.(Page), nil
	}
}

func (r *Registry) observe(id ID, result string) {
	if r.observer != nil {
		r.observer.PageLoaded(string(id), result)
	}
}
