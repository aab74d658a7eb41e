// Package module groups HTTP handlers under single-segment path prefixes.
// Each Module owns a middleware stack and sees request paths with its
// prefix removed; a Router dispatches to modules by first path segment.
package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/smartclass/triage/pkg/middleware"
)

// Module serves every request below its prefix through its own middleware.
type Module struct {
	prefix string
	inner  http.Handler
	mw     middleware.System
}

// New builds a Module for prefix, which must look like "/api". It panics on
// an invalid prefix since modules are wired once at startup.
func New(prefix string, inner http.Handler) *Module {
	if err := checkPrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{prefix: prefix, inner: inner, mw: middleware.New()}
}

// Prefix reports the path segment the module is mounted on.
func (m *Module) Prefix() string { return m.prefix }

// Use appends mw to the module's stack.
func (m *Module) Use(mw middleware.Func) { m.mw.Use(mw) }

// Serve rewrites the request path relative to the prefix and runs it
// through the middleware stack.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	rest := strings.TrimPrefix(req.URL.Path, m.prefix)
	if rest == "" {
		rest = "/"
	}

	inner := req.Clone(req.Context())
	inner.URL.Path = rest
	inner.URL.RawPath = ""

	m.mw.Apply(m.inner).ServeHTTP(w, inner)
}

func checkPrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case prefix[0] != '/':
		return fmt.Errorf("module prefix %q must start with /", prefix)
	case strings.Contains(prefix[1:], "/"):
		return fmt.Errorf("module prefix %q must be a single path segment", prefix)
	}
	return nil
}
