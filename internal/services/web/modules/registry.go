package modules

import (
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/modules/assets"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/modules/live"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/modules/rolemode"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/modules/storefront"
)

// DefaultPublicModules returns the modules served without a session.
func DefaultPublicModules(deps Dependencies) []Module {
	var visits storefront.VisitMiddleware
	if deps.Visits != nil {
		visits = deps.Visits
	}
	return []Module{
		assets.New(deps.Assets),
		live.New(deps.Live),
		storefront.New(deps.Router, visits),
	}
}

// DefaultProtectedModules returns the modules that require a signed-in
// session.
func DefaultProtectedModules(deps Dependencies) []Module {
	opts := []rolemode.Option{
		rolemode.WithSessionIDs(deps.SessionIDs),
		rolemode.WithSchemePolicy(deps.SchemePolicy),
		rolemode.WithLogger(deps.Logger),
	}
	if deps.Sessions != nil {
		opts = append(opts, rolemode.WithStore(deps.Sessions))
	}
	if deps.Visits != nil {
		opts = append(opts, rolemode.WithVisits(deps.Visits))
	}
	return []Module{rolemode.New(opts...)}
}
