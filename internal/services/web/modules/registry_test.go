package modules

import (
	"net/http"
	"testing"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/pages"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/routepath"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/router"
)

func testDependencies() Dependencies {
	return Dependencies{
		Router: router.Config{Pages: pages.NewRegistry(pages.Catalog(), nil)},
		Live:   http.NotFoundHandler(),
	}
}

func TestDefaultModulesOrderAndIDs(t *testing.T) {
	t.Parallel()

	public := DefaultPublicModules(testDependencies())
	protected := DefaultProtectedModules(testDependencies())
	wantPublic := []string{"assets", "live", "storefront"}
	if len(public) != len(wantPublic) {
		t.Fatalf("public module count = %d, want %d", len(public), len(wantPublic))
	}
	for i, id := range wantPublic {
		if got := public[i].ID(); got != id {
			t.Fatalf("public module[%d] id = %q, want %q", i, got, id)
		}
	}
	if len(protected) != 1 || protected[0].ID() != "rolemode" {
		t.Fatalf("protected modules = %v", protected)
	}
}

func TestDefaultModulesHaveUniquePrefixes(t *testing.T) {
	t.Parallel()

	deps := testDependencies()
	all := append(DefaultPublicModules(deps), DefaultProtectedModules(deps)...)
	want := map[string]bool{
		routepath.StaticPrefix:  true,
		routepath.ShellPrefix:   true,
		routepath.Root:          true,
		routepath.SessionPrefix: true,
	}
	seen := map[string]struct{}{}
	for _, module := range all {
		mount, err := module.Mount()
		if err != nil {
			t.Fatalf("module %q mount error = %v", module.ID(), err)
		}
		if !want[mount.Prefix] {
			t.Fatalf("module %q has unexpected prefix %q", module.ID(), mount.Prefix)
		}
		if _, ok := seen[mount.Prefix]; ok {
			t.Fatalf("duplicate mount prefix %q", mount.Prefix)
		}
		seen[mount.Prefix] = struct{}{}
	}
}

func TestStorefrontMountFailsWithoutPages(t *testing.T) {
	t.Parallel()

	public := DefaultPublicModules(Dependencies{Live: http.NotFoundHandler()})
	if _, err := public[2].Mount(); err == nil {
		t.Fatalf("expected storefront mount error without page registry")
	}
}

func TestLiveMountFailsWithoutHandler(t *testing.T) {
	t.Parallel()

	public := DefaultPublicModules(Dependencies{})
	if _, err := public[1].Mount(); err == nil {
		t.Fatalf("expected live mount error without handler")
	}
}
