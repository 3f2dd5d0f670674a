package modules

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/routepath"
)

func TestFeatureModulesDoNotImportSiblingModules(t *testing.T) {
	t.Parallel()

	entries, err := filepath.Glob(filepath.Join("*", "*.go"))
	if err != nil {
		t.Fatalf("glob module files: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("no module files found")
	}
	fset := token.NewFileSet()
	for _, file := range entries {
		parsed, err := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("parse imports for %s: %v", file, err)
		}
		for _, imp := range parsed.Imports {
			path := strings.Trim(imp.Path.Value, "\"")
			if strings.Contains(path, "/internal/services/web/modules/") {
				t.Fatalf("file %s imports sibling module path %q", file, path)
			}
		}
	}
}

func TestRoutePrefixesRemainUniqueConstants(t *testing.T) {
	t.Parallel()

	prefixes := []string{
		routepath.StaticPrefix,
		routepath.ShellPrefix,
		routepath.SessionPrefix,
		routepath.AuthPrefix,
		routepath.VendorPrefix,
		routepath.ProductPrefix,
	}
	seen := map[string]struct{}{}
	for _, prefix := range prefixes {
		if _, ok := seen[prefix]; ok {
			t.Fatalf("duplicate route prefix constant %q", prefix)
		}
		seen[prefix] = struct{}{}
	}
}

func TestFeatureModulesCarryModuleFile(t *testing.T) {
	t.Parallel()

	for _, area := range []string{"assets", "live", "rolemode", "storefront"} {
		matches, err := filepath.Glob(filepath.Join(area, "module.go"))
		if err != nil || len(matches) != 1 {
			t.Fatalf("module %q missing module.go", area)
		}
	}
}
