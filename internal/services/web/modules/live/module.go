// Package live mounts the shell visit websocket channel.
package live

import (
	"errors"
	"net/http"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/module"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/routepath"
)

// Module serves the live shell channel.
type Module struct {
	handler http.Handler
}

// New returns a live module around the channel handler.
func New(handler http.Handler) Module {
	return Module{handler: handler}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "live" }

// Healthy reports whether the channel handler is wired.
func (m Module) Healthy() bool { return m.handler != nil }

// Mount wires the channel route.
func (m Module) Mount() (module.Mount, error) {
	if m.handler == nil {
		return module.Mount{}, errors.New("live channel handler is required")
	}
	mux := http.NewServeMux()
	mux.Handle(http.MethodGet+" "+routepath.ShellLive, m.handler)
	return module.Mount{Prefix: routepath.ShellPrefix, Handler: mux}, nil
}
