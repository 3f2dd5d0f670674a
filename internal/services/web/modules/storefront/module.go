// Package storefront mounts the page router behind the shell visit
// middleware.
package storefront

import (
	"fmt"
	"net/http"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/module"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/httpx"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/weberror"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/routepath"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/router"
)

// VisitMiddleware mounts a shell visit around each page load.
type VisitMiddleware interface {
	Middleware() func(http.Handler) http.Handler
}

// Module serves every storefront page.
type Module struct {
	config router.Config
	visits VisitMiddleware
}

// New returns a storefront module. Without visits, pages render without a
// live shell channel.
func New(config router.Config, visits VisitMiddleware) Module {
	return Module{config: config, visits: visits}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "storefront" }

// Mount builds the router and wraps it with the visit middleware. A page
// that panics renders the error boundary inside its visit, which leaves the
// safety timer to force readiness.
func (m Module) Mount() (module.Mount, error) {
	handler, err := router.New(m.config)
	if err != nil {
		return module.Mount{}, fmt.Errorf("build router: %w", err)
	}
	handler = httpx.RecoverPanic(m.config.Logger, weberror.Boundary())(handler)
	if m.visits != nil {
		handler = m.visits.Middleware()(handler)
	}
	return module.Mount{Prefix: routepath.Root, Handler: handler}, nil
}
