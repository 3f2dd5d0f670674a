package router

import (
	"fmt"
	"net/http"
	"strings"
)

type pathParam struct {
	name  string
	index int
}

type compiledPattern struct {
	mux    string
	params []pathParam
}

// compilePattern converts a route-table pattern into a ServeMux GET
// pattern over folded paths. Static segments are lowercased and a trailing
// slash is dropped, so "/checkout" and "/checkout/" compile alike. "*"
// becomes the catch-all.
func compilePattern(pattern string) (compiledPattern, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "*" {
		return compiledPattern{mux: http.MethodGet + " /"}, nil
	}
	if !strings.HasPrefix(pattern, "/") {
		return compiledPattern{}, fmt.Errorf("route pattern %q must begin with / or be *", pattern)
	}
	if pattern == "/" {
		return compiledPattern{mux: http.MethodGet + " /{$}"}, nil
	}

	segments := strings.Split(strings.TrimSuffix(pattern[1:], "/"), "/")
	var params []pathParam
	for i, segment := range segments {
		if segment == "" {
			return compiledPattern{}, fmt.Errorf("route pattern %q has an empty segment", pattern)
		}
		if name, ok := strings.CutPrefix(segment, ":"); ok {
			if name == "" {
				return compiledPattern{}, fmt.Errorf("route pattern %q has an unnamed parameter", pattern)
			}
			params = append(params, pathParam{name: name, index: i})
			segments[i] = "{" + name + "}"
			continue
		}
		segments[i] = strings.ToLower(segment)
	}
	return compiledPattern{mux: http.MethodGet + " /" + strings.Join(segments, "/"), params: params}, nil
}

// values reads parameters from the request path by position so they keep
// the case the client sent.
func (p compiledPattern) values(r *http.Request) map[string]string {
	if len(p.params) == 0 {
		return nil
	}
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	values := make(map[string]string, len(p.params))
	for _, param := range p.params {
		if param.index < len(segments) {
			values[param.name] = segments[param.index]
		}
	}
	return values
}

// trimSlash drops one trailing slash from every path but the root.
func trimSlash(path string) string {
	if len(path) > 1 {
		return strings.TrimSuffix(path, "/")
	}
	return path
}

// foldPath is the form route patterns are matched against.
func foldPath(path string) string {
	return strings.ToLower(trimSlash(path))
}

// foldingMux dispatches on the folded path. The matched handler receives
// the request with only its trailing slash trimmed.
type foldingMux struct {
	mux *http.ServeMux
}

func (f foldingMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	trimmed := trimSlash(r.URL.Path)
	if trimmed != r.URL.Path {
		r = withPath(r, trimmed)
	}
	h, _ := f.mux.Handler(withPath(r, strings.ToLower(trimmed)))
	h.ServeHTTP(w, r)
}

func withPath(r *http.Request, path string) *http.Request {
	clone := new(http.Request)
	*clone = *r
	u := *r.URL
	u.Path = path
	u.RawPath = ""
	clone.URL = &u
	return clone
}
