// Package organisations implements the organisation domain. Organisations
// own programs and an optional logo; their numeric ids are internal and
// never exposed on public routes.
package organisations

import (
	"time"
)

// Organisation represents a certificate-issuing organisation.
type Organisation struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	LogoKey         *string   `json:"logo_key,omitempty"`
	LogoContentType *string   `json:"logo_content_type,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
