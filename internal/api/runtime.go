package api

import (
	"github.com/smartclass/triage/internal/config"
	"github.com/smartclass/triage/internal/infrastructure"
	"github.com/smartclass/triage/pkg/pagination"
)

// Runtime is the infrastructure as seen by the API module: the same
// collaborators with a logger tagged module=api, plus paging limits.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
}

func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	view := *infra
	view.Logger = infra.Logger.With("module", "api")
	return &Runtime{Infrastructure: &view, Pagination: cfg.API.Pagination}
}
