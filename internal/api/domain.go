package api

import (
	"github.com/smartclass/triage/internal/messages"
	"github.com/smartclass/triage/pkg/routes"
)

// Domain is the set of systems served by the API module.
type Domain struct {
	Messages messages.System
}

// NewDomain builds each system from the shared runtime.
func NewDomain(rt *Runtime) *Domain {
	return &Domain{
		Messages: messages.New(
			rt.Database.Connection(),
			rt.Engine,
			rt.Notifier,
			rt.Storage,
			rt.Logger,
			rt.Pagination,
		),
	}
}

func (d *Domain) groups(maxBody int64, rt *Runtime) []routes.Group {
	return []routes.Group{
		d.Messages.Handler(maxBody).Routes(),
		newAuditHandler(rt.Storage, rt.Logger).routes(),
	}
}
