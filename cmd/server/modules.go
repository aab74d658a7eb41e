package main

import (
	"net/http"

	"github.com/smartclass/triage/internal/api"
	"github.com/smartclass/triage/internal/config"
	"github.com/smartclass/triage/internal/infrastructure"
	"github.com/smartclass/triage/pkg/handlers"
	"github.com/smartclass/triage/pkg/lifecycle"
	"github.com/smartclass/triage/pkg/module"
)

// Modules lists every prefix-scoped module the server mounts.
type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	a, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}
	return &Modules{API: a}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

type healthStatus struct {
	Status string `json:"status"`
}

// buildRouter returns the top-level router with the liveness and readiness
// checks registered outside any module, so they skip CORS and request logs.
func buildRouter(ready lifecycle.ReadinessChecker) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, healthStatus{"ok"})
	})
	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if ready.Ready() {
			handlers.RespondJSON(w, http.StatusOK, healthStatus{"ready"})
			return
		}
		handlers.RespondJSON(w, http.StatusServiceUnavailable, healthStatus{"not ready"})
	})

	return router
}
