// Package middleware holds the HTTP middleware shared by mounted modules:
// origin policy enforcement and request logging.
package middleware

import "net/http"

// Func wraps a handler with cross-cutting behavior.
type Func = func(http.Handler) http.Handler

// System collects middleware in registration order. The first registered
// Func is the outermost wrapper.
type System interface {
	Use(fn Func)
	Apply(handler http.Handler) http.Handler
}

type stack []Func

// New returns an empty System.
func New() System {
	return &stack{}
}

func (s *stack) Use(fn Func) {
	*s = append(*s, fn)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := range *s {
		wrapped = (*s)[len(*s)-1-i](wrapped)
	}
	return wrapped
}
