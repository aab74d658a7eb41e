package messages

import (
	"context"

	"github.com/google/uuid"

	"github.com/smartclass/triage/pkg/pagination"
)

// System defines the public contract for message domain operations.
type System interface {
	Handler(maxBodySize int64) *Handler

	// Submit triages a message and applies the routed side effects.
	// Only validation errors are returned; side effect failures become notices.
	Submit(ctx context.Context, cmd SubmitCommand) (*SubmitResult, error)
	// Classify runs the pipeline without side effects and includes the full trace.
	Classify(ctx context.Context, cmd SubmitCommand) (*SubmitResult, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Message], error)

	Find(ctx context.Context, id uuid.UUID) (*Message, error)
	Stats(ctx context.Context, window Window) (*Stats, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, cmd StatusCommand) (*Message, error)
	Correct(ctx context.Context, id uuid.UUID, cmd CorrectionCommand) (*Correction, error)
	Corrections(ctx context.Context, id uuid.UUID) ([]Correction, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
