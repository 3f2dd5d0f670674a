// Package assets serves the embedded shell stylesheet and script.
package assets

import (
	"io/fs"
	"net/http"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/module"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/routepath"
	webstatic "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/static"
)

// Module serves static assets.
type Module struct {
	files fs.FS
}

// New returns an assets module over files, or the embedded assets when
// files is nil.
func New(files fs.FS) Module {
	if files == nil {
		files = webstatic.FS
	}
	return Module{files: files}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "assets" }

// Mount wires the file server.
func (m Module) Mount() (module.Mount, error) {
	server := http.StripPrefix(routepath.StaticPrefix, http.FileServer(http.FS(m.files)))
	return module.Mount{
		Prefix: routepath.StaticPrefix,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			server.ServeHTTP(w, r)
		}),
	}, nil
}
