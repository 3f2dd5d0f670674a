package app

import (
	"net/http"

	module "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/module"
)

// BuildRootHandler composes the storefront module groups behind one mux.
func BuildRootHandler(cfg Config, signedIn module.ResolveSignedIn) (http.Handler, error) {
	return Compose(ComposeInput{
		SignedIn:            signedIn,
		PublicModules:       cfg.PublicModules,
		ProtectedModules:    cfg.ProtectedModules,
		RequestSchemePolicy: cfg.RequestSchemePolicy,
		LoginPath:           cfg.LoginPath,
	})
}
