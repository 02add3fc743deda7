package batches

import (
	"context"
)

// System defines the public contract for batch domain operations.
type System interface {
	Handler() *Handler

	Find(ctx context.Context, id int64) (*Batch, error)
	// Create accepts a batch only after validating that every certificate's
	// locale resolves to an existing template variant.
	Create(ctx context.Context, cmd CreateCommand) (*Batch, error)
	// Render drives rendering for every renderable certificate in the
	// batch. Safe to re-invoke: already rendered certificates are never
	// re-attempted and failures are collected per certificate.
	Render(ctx context.Context, batchID int64) (*RenderReport, error)
	// Status derives the current aggregate status from the batch's
	// certificate states.
	Status(ctx context.Context, batchID int64) (Status, error)
}
