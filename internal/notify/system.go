package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/certificates"
)

// System defines the public contract for notification dispatch.
type System interface {
	Handler() *Handler

	// Dispatch sends the certificate notification exactly once. A certificate
	// already in sent state is a no-op success; concurrent dispatches race on
	// the sending transition and the loser returns ErrInFlight. The outcome
	// of every transport attempt is persisted before Dispatch returns.
	Dispatch(ctx context.Context, id uuid.UUID) (*certificates.Certificate, error)

	// Status returns the certificate's current notification state.
	Status(ctx context.Context, id uuid.UUID) (*certificates.Certificate, error)
}
