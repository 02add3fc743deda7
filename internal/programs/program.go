// Package programs implements the program domain. A program belongs to an
// organisation, carries the default certificate locale, and owns batches,
// templates, and an optional branding logo. Programs are publicly addressed
// by a stable UUID; the internal numeric id never leaves admin routes.
package programs

import (
	"time"

	"github.com/google/uuid"
)

// Program represents a certificate-issuing program.
type Program struct {
	ID              int64     `json:"id"`
	UUID            uuid.UUID `json:"uuid"`
	OrganisationID  int64     `json:"organisation_id"`
	Title           string    `json:"title"`
	DefaultLocale   string    `json:"default_locale"`
	LogoKey         *string   `json:"logo_key,omitempty"`
	LogoContentType *string   `json:"logo_content_type,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
