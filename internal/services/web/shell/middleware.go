package shell

import (
	"net/http"
	"strings"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/httpx"
)

// Middleware binds a visit to every GET page request. Full page loads
// mount a new visit; HTMX requests carrying VisitHeader reuse theirs. A
// visit whose page never rendered the shell (a redirect, for example) is
// unmounted when the handler returns.
func (m *Manager) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			if id := strings.TrimSpace(r.Header.Get(VisitHeader)); id != "" && httpx.IsHTMXRequest(r) {
				if v, ok := m.Get(id); ok {
					next.ServeHTTP(w, r.WithContext(WithVisit(r.Context(), v, true)))
					return
				}
			}
			v := m.Mount(Location{Path: r.URL.Path, Query: r.URL.RawQuery}, !httpx.IsHTMXRequest(r))
			defer func() {
				if !v.Rendered() {
					m.Unmount(v.ID())
				}
			}()
			next.ServeHTTP(w, r.WithContext(WithVisit(r.Context(), v, false)))
		})
	}
}
