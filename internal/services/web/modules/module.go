// Package modules defines web module registry helpers.
package modules

import (
	"io/fs"
	"log/slog"
	"net/http"

	module "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/module"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/modules/rolemode"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/modules/storefront"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/requestmeta"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/router"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/session"
)

// Mount aliases the module mount contract.
type Mount = module.Mount

// Module aliases the module interface contract.
type Module = module.Module

// Dependencies carries the collaborators required to compose the web module
// registry. Each module receives only the fields it consumes.
type Dependencies struct {
	// Router configures the storefront page router.
	Router router.Config
	// Visits mounts shell visits around page loads and resolves them for
	// the live channel and mode switch toasts.
	Visits interface {
		storefront.VisitMiddleware
		rolemode.VisitLookup
	}
	// Live serves the shell visit websocket channel.
	Live http.Handler
	// Assets overrides the embedded static files.
	Assets fs.FS

	Sessions     session.Store
	SessionIDs   rolemode.SessionIDReader
	SchemePolicy requestmeta.SchemePolicy
	// Logger is the service logger handed to modules that log.
	Logger *slog.Logger
}
