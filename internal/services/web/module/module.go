// Package module defines what a storefront area hands to root composition.
package module

import "net/http"

// ResolveSignedIn reports whether r carries a signed-in storefront session.
type ResolveSignedIn func(r *http.Request) bool

// Mount binds a handler under a slash-terminated path prefix.
type Mount struct {
	Prefix  string
	Handler http.Handler
}

// Module is one mountable storefront area.
type Module interface {
	// ID names the module in composition errors and the /up report.
	ID() string
	Mount() (Mount, error)
}

// HealthReporter is implemented by modules whose collaborators can be
// missing or degraded. /up answers 503 while any reporter is unhealthy.
type HealthReporter interface {
	Healthy() bool
}
