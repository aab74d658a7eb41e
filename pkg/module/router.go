package module

import (
	"net/http"
	"strings"
)

// Router is the top-level handler. Requests whose first path segment
// matches a mounted Module go to it; everything else reaches the fallback
// mux, which serves health checks and 404s.
type Router struct {
	mounted  map[string]*Module
	fallback *http.ServeMux
}

func NewRouter() *Router {
	return &Router{
		mounted:  map[string]*Module{},
		fallback: http.NewServeMux(),
	}
}

// HandleNative registers pattern on the fallback mux.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.fallback.HandleFunc(pattern, handler)
}

// Mount routes m's prefix to m, replacing any module on the same prefix.
func (r *Router) Mount(m *Module) {
	r.mounted[m.prefix] = m
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if p := req.URL.Path; len(p) > 1 {
		req.URL.Path = strings.TrimSuffix(p, "/")
	}

	if m, ok := r.mounted[firstSegment(req.URL.Path)]; ok {
		m.Serve(w, req)
		return
	}
	r.fallback.ServeHTTP(w, req)
}

// firstSegment returns "/api" for "/api/messages/42".
func firstSegment(path string) string {
	head, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	return "/" + head
}
