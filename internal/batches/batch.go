// Package batches implements batch management and the render orchestrator.
// A batch groups certificates created together under one program; its
// aggregate status is always derived from the certificates' terminal render
// states and never stored, so it cannot diverge.
package batches

import (
	"time"

	"github.com/google/uuid"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/certificates"
)

// Batch groups certificates created together under one program.
type Batch struct {
	ID        int64     `json:"id"`
	ProgramID int64     `json:"program_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Status is the derived batch aggregate status.
type Status string

const (
	StatusInProgress      Status = "in_progress"
	StatusCompleted       Status = "completed"
	StatusPartiallyFailed Status = "partially_failed"
	StatusFailed          Status = "failed"
)

// CreateCommand carries the data needed to create a batch with its
// certificates. Locale resolution for every certificate is validated before
// the batch is accepted, so template misconfiguration surfaces at creation
// rather than mid-render.
type CreateCommand struct {
	ProgramUUID  uuid.UUID                    `json:"program_uuid"`
	Title        string                       `json:"title"`
	Certificates []certificates.CreateCommand `json:"certificates"`
}

// CertificateResult reports the outcome of a single certificate within a
// batch render run.
type CertificateResult struct {
	CertificateID int64                    `json:"certificate_id"`
	UUID          uuid.UUID                `json:"uuid"`
	State         certificates.RenderState `json:"state"`
	Error         string                   `json:"error,omitempty"`
}

// RenderReport summarizes a batch render run.
type RenderReport struct {
	BatchID   int64               `json:"batch_id"`
	Status    Status              `json:"status"`
	Attempted int                 `json:"attempted"`
	Results   []CertificateResult `json:"results"`
}

// Aggregate derives the batch status from its certificates' render states.
// The status is only final once every certificate has reached a terminal
// state; any pending certificate keeps the batch in progress.
func Aggregate(certs []certificates.Certificate) Status {
	var rendered, failed int

	for _, c := range certs {
		switch c.RenderState {
		case certificates.Rendered:
			rendered++
		case certificates.RenderFailed:
			failed++
		default:
			return StatusInProgress
		}
	}

	switch {
	case failed == 0:
		return StatusCompleted
	case rendered > 0:
		return StatusPartiallyFailed
	default:
		return StatusFailed
	}
}
