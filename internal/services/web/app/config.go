package app

import (
	module "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/module"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/requestmeta"
)

// Config captures the module groups mounted by the storefront root handler.
type Config struct {
	// PublicModules serve anonymous traffic: assets, the live channel and
	// the storefront router.
	PublicModules []module.Module
	// ProtectedModules mount under /session/ and require a signed-in user.
	ProtectedModules    []module.Module
	RequestSchemePolicy requestmeta.SchemePolicy
	LoginPath           string
}
