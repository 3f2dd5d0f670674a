package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	module "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/module"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/httpx"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/requestmeta"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/sessioncookie"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/routepath"
)

// ComposeInput carries module groups and shared composition contracts.
type ComposeInput struct {
	// SignedIn gates the session group. A nil func treats every request as
	// anonymous.
	SignedIn            module.ResolveSignedIn
	PublicModules       []module.Module
	ProtectedModules    []module.Module
	RequestSchemePolicy requestmeta.SchemePolicy
	// LoginPath is where anonymous session requests are sent. Defaults to
	// /auth/login.
	LoginPath string
}

// group is one set of modules sharing a prefix rule and a guard.
type group struct {
	name string
	// session reports whether members must mount under the session prefix.
	session bool
	modules []module.Module
	guard   func(http.Handler) http.Handler
}

// Compose builds a root HTTP handler from module groups.
func Compose(input ComposeInput) (http.Handler, error) {
	signedIn := input.SignedIn
	if signedIn == nil {
		signedIn = func(*http.Request) bool { return false }
	}
	loginPath := strings.TrimSpace(input.LoginPath)
	if loginPath == "" {
		loginPath = routepath.AuthLogin
	}

	groups := []group{
		{name: "public", modules: input.PublicModules},
		{
			name:    "protected",
			session: true,
			modules: input.ProtectedModules,
			guard:   sessionGuard(signedIn, loginPath, input.RequestSchemePolicy),
		},
	}

	root := http.NewServeMux()
	owners := map[string]string{}
	for _, g := range groups {
		for _, m := range g.modules {
			if m == nil {
				return nil, fmt.Errorf("%s module is nil", g.name)
			}
			if err := g.mount(root, m, owners); err != nil {
				return nil, err
			}
		}
	}
	return root, nil
}

func (g group) mount(root *http.ServeMux, m module.Module, owners map[string]string) error {
	mount, err := m.Mount()
	if err != nil {
		return fmt.Errorf("mount module %q: %w", m.ID(), err)
	}
	if err := checkPrefix(mount.Prefix); err != nil {
		return fmt.Errorf("mount module %q has invalid prefix %q: %w", m.ID(), mount.Prefix, err)
	}
	if mount.Handler == nil {
		return fmt.Errorf("mount module %q: handler is required", m.ID())
	}

	inSession := strings.HasPrefix(mount.Prefix, routepath.SessionPrefix)
	switch {
	case g.session && !inSession:
		return fmt.Errorf("module %q must mount under %s, got %q", m.ID(), routepath.SessionPrefix, mount.Prefix)
	case !g.session && inSession:
		return fmt.Errorf("module %q has session prefix %q in %s group", m.ID(), mount.Prefix, g.name)
	}

	handler := mount.Handler
	if g.guard != nil {
		handler = g.guard(handler)
	}
	patterns := []string{mount.Prefix}
	// The bare /session path must not fall through to the storefront.
	if g.session {
		patterns = append(patterns, strings.TrimSuffix(mount.Prefix, "/"))
	}
	for _, pattern := range patterns {
		if owner, taken := owners[pattern]; taken {
			return fmt.Errorf("module %q duplicates prefix %q owned by module %q", m.ID(), pattern, owner)
		}
		owners[pattern] = m.ID()
		root.Handle(pattern, handler)
	}
	return nil
}

func checkPrefix(prefix string) error {
	switch {
	case prefix == "":
		return errors.New("prefix is required")
	case strings.TrimSpace(prefix) != prefix:
		return errors.New("prefix must not include surrounding whitespace")
	case !strings.HasPrefix(prefix, "/"):
		return errors.New("prefix must begin with /")
	case !strings.HasSuffix(prefix, "/"):
		return errors.New("prefix must end with /")
	}
	return nil
}

// sessionGuard sends anonymous requests to login and rejects cookie-borne
// mutations that cannot prove a same-origin caller.
func sessionGuard(signedIn module.ResolveSignedIn, loginPath string, policy requestmeta.SchemePolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !signedIn(r) {
				httpx.WriteRedirect(w, r, loginPath)
				return
			}
			if mutates(r.Method) && carriesSessionCookie(r) && !requestmeta.HasSameOriginProofWithPolicy(r, policy) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func mutates(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func carriesSessionCookie(r *http.Request) bool {
	_, ok := sessioncookie.Read(r)
	return ok
}
