package certificates

import (
	"context"

	"github.com/google/uuid"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/templates"
)

// System defines the public contract for certificate domain operations.
type System interface {
	Handler() *Handler

	Find(ctx context.Context, id int64) (*Certificate, error)
	FindByUUID(ctx context.Context, id uuid.UUID) (*Certificate, error)
	ListByBatch(ctx context.Context, batchID int64) ([]Certificate, error)
	// Renderable returns the batch's certificates still eligible for
	// rendering: pending and previously failed ones. Rendered certificates
	// are never included, making batch render resumption idempotent.
	Renderable(ctx context.Context, batchID int64) ([]Certificate, error)

	// BindDocument resolves the certificate's locale against its program's
	// template variants and binds the payload into a bound document
	// description. Pure with respect to certificate state.
	BindDocument(ctx context.Context, cert *Certificate) (*templates.BoundDocument, error)

	// MarkRendered records a successful render. Guarded: only certificates
	// in pending or render_failed state transition; an already rendered
	// certificate returns ErrStateConflict and keeps its artifact.
	MarkRendered(ctx context.Context, id int64, artifact RenderedArtifact) (*Certificate, error)
	// MarkRenderFailed records a terminal render failure for this run.
	MarkRenderFailed(ctx context.Context, id int64, reason string) error

	// BeginNotification transitions unsent|failed → sending. Exactly one
	// concurrent caller wins; losers receive ErrStateConflict.
	BeginNotification(ctx context.Context, id int64) error
	// FinishNotification transitions sending → sent|failed and records the
	// attempt before returning.
	FinishNotification(ctx context.Context, id int64, outcome NotificationState) error

	// Preview returns the PNG preview for a rendered certificate,
	// generating and caching it on first access. Certificates without an
	// artifact yield ErrNotRendered.
	Preview(ctx context.Context, cert *Certificate) ([]byte, error)
}
