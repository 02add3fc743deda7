// Package certificates implements the certificate domain: recipient records,
// render and notification state machines, artifact references, and preview
// access. Certificates carry an internal numeric id for admin routes and an
// immutable public UUID for public preview and verification routes.
package certificates

import (
	"time"

	"github.com/google/uuid"
)

// RenderState tracks a certificate's progress through the render pipeline.
type RenderState string

const (
	RenderPending RenderState = "pending"
	Rendered      RenderState = "rendered"
	RenderFailed  RenderState = "render_failed"
)

// NotificationState tracks delivery of the certificate notification. The
// machine is unsent → sending → sent|failed; failed may re-enter sending on
// an explicit re-dispatch.
type NotificationState string

const (
	NotificationUnsent  NotificationState = "unsent"
	NotificationSending NotificationState = "sending"
	NotificationSent    NotificationState = "sent"
	NotificationFailed  NotificationState = "failed"
)

// Visibility controls public reachability of a certificate's preview.
type Visibility string

const (
	VisibilityPublic Visibility = "public"
	VisibilityHidden Visibility = "hidden"
)

// Certificate is a single issued document within a batch. The public UUID
// is assigned once at creation and never changes or gets reused; artifacts
// are immutable and re-renders bump ArtifactVersion with a new
// content-addressed key.
type Certificate struct {
	ID                   int64             `json:"id"`
	UUID                 uuid.UUID         `json:"uuid"`
	BatchID              int64             `json:"batch_id"`
	RecipientName        string            `json:"recipient_name"`
	RecipientEmail       string            `json:"recipient_email"`
	Payload              map[string]string `json:"payload"`
	RequestedLocale      *string           `json:"requested_locale"`
	ResolvedLocale       *string           `json:"resolved_locale"`
	RenderState          RenderState       `json:"render_state"`
	RenderError          *string           `json:"render_error,omitempty"`
	ArtifactKey          *string           `json:"artifact_key,omitempty"`
	ArtifactHash         *string           `json:"artifact_hash,omitempty"`
	ArtifactVersion      int               `json:"artifact_version"`
	PageCount            *int              `json:"page_count,omitempty"`
	Visibility           Visibility        `json:"visibility"`
	NotificationState    NotificationState `json:"notification_state"`
	NotificationAttempts int               `json:"notification_attempts"`
	NotifiedAt           *time.Time        `json:"notified_at,omitempty"`
	LastAttemptAt        *time.Time        `json:"last_attempt_at,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// CreateCommand carries the data for one certificate within a new batch.
type CreateCommand struct {
	RecipientName   string            `json:"recipient_name"`
	RecipientEmail  string            `json:"recipient_email"`
	Payload         map[string]string `json:"payload"`
	RequestedLocale *string           `json:"requested_locale,omitempty"`
}

// RenderedArtifact records the output of a successful render.
type RenderedArtifact struct {
	Locale      string
	StorageKey  string
	ContentHash string
	PageCount   int
}
