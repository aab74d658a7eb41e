// Package routes describes HTTP endpoints as nested groups and registers
// them on a ServeMux with method-qualified patterns ("GET /messages/{id}").
package routes

import "net/http"

// Route is one endpoint. Pattern is relative to the enclosing groups.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group shares Prefix across its Routes. Children are nested below the
// accumulated prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds every route reachable from groups to mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.register(mux, "")
	}
}

func (g Group) register(mux *http.ServeMux, base string) {
	base += g.Prefix
	for _, r := range g.Routes {
		mux.HandleFunc(r.Method+" "+base+r.Pattern, r.Handler)
	}
	for _, child := range g.Children {
		child.register(mux, base)
	}
}
