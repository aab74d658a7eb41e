// Package api mounts the triage HTTP surface under the configured base
// path: the message endpoints plus read access to archived audit records.
package api

import (
	"net/http"

	"github.com/smartclass/triage/internal/config"
	"github.com/smartclass/triage/internal/infrastructure"
	"github.com/smartclass/triage/pkg/middleware"
	"github.com/smartclass/triage/pkg/module"
	"github.com/smartclass/triage/pkg/routes"
)

// NewModule wires the domain systems onto a mux and wraps it with the CORS
// and request logging middleware. CORS runs first so preflights are
// answered before they are logged as regular requests.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	rt := NewRuntime(cfg, infra)
	domain := NewDomain(rt)

	mux := http.NewServeMux()
	routes.Register(mux, domain.groups(cfg.API.MaxBodySizeBytes(), rt)...)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(rt.Logger))
	return m, nil
}
