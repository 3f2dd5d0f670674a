package router

import (
	"slices"
	"testing"
)

func TestCompilePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		mux    string
		params []pathParam
	}{
		{in: "*", mux: "GET /"},
		{in: "/", mux: "GET /{$}"},
		{in: "/shop", mux: "GET /shop"},
		{in: "/Legal/Terms-Of-Use", mux: "GET /legal/terms-of-use"},
		{in: "/checkout/", mux: "GET /checkout"},
		{in: "/product/:id", mux: "GET /product/{id}", params: []pathParam{{name: "id", index: 1}}},
		{in: "/store/vendor/:id/", mux: "GET /store/vendor/{id}", params: []pathParam{{name: "id", index: 2}}},
		{in: "/vendor/orders/:orderId/status", mux: "GET /vendor/orders/{orderId}/status", params: []pathParam{{name: "orderId", index: 2}}},
	}
	for _, tc := range tests {
		got, err := compilePattern(tc.in)
		if err != nil {
			t.Fatalf("compilePattern(%q): %v", tc.in, err)
		}
		if got.mux != tc.mux || !slices.Equal(got.params, tc.params) {
			t.Fatalf("compilePattern(%q) = %+v, want %q %v", tc.in, got, tc.mux, tc.params)
		}
	}
}

func TestCompilePatternRejectsMalformed(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "shop", "/a//b", "/product/:"} {
		if _, err := compilePattern(in); err == nil {
			t.Fatalf("compilePattern(%q): expected error", in)
		}
	}
}

func TestDefaultTableCoversEveryPage(t *testing.T) {
	t.Parallel()

	seen := map[string]Route{}
	aliases := 0
	for _, r := range DefaultTable() {
		compiled, err := compilePattern(r.Pattern)
		if err != nil {
			t.Fatalf("%q: %v", r.Pattern, err)
		}
		if previous, ok := seen[compiled.mux]; ok {
			if previous.Page != r.Page {
				t.Fatalf("%q and %q fold together but name %s and %s", previous.Pattern, r.Pattern, previous.Page, r.Page)
			}
			aliases++
			continue
		}
		seen[compiled.mux] = r
	}
	if len(seen) != 52 || aliases != 3 {
		t.Fatalf("routes = %d aliases = %d, want 52 and 3", len(seen), aliases)
	}
}

func TestFoldPath(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"/":               "/",
		"/shop":           "/shop",
		"/shop/":          "/shop",
		"/Shop":           "/shop",
		"/AUTH/Login/":    "/auth/login",
		"/product/P1/":    "/product/p1",
		"/store/vendor/a": "/store/vendor/a",
	}
	for in, want := range tests {
		if got := foldPath(in); got != want {
			t.Fatalf("foldPath(%q) = %q, want %q", in, got, want)
		}
	}
}
