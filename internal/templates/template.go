package templates

import (
	"time"
)

// Template is a logical certificate template owned by a program.
// Each template has one variant per supported locale.
type Template struct {
	ID        int64     `json:"id"`
	ProgramID int64     `json:"program_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Variant binds a template to a locale-specific layout.
type Variant struct {
	ID         int64     `json:"id"`
	TemplateID int64     `json:"template_id"`
	Locale     string    `json:"locale"`
	Layout     Layout    `json:"layout"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Layout describes a variant's page geometry and its ordered elements.
type Layout struct {
	Page     PageSpec  `json:"page"`
	Elements []Element `json:"elements"`
}

// ElementType discriminates layout element variants.
type ElementType string

const (
	ElementText  ElementType = "text"
	ElementImage ElementType = "image"
)

// Element is a single positioned slot in a variant layout. Text elements
// with a Field name draw their content from the certificate payload; text
// elements without one carry static Text. Image elements reference a named
// binary asset (e.g. the program logo) resolved to a blob key at bind time.
type Element struct {
	Type   ElementType `json:"type"`
	Field  string      `json:"field,omitempty"`
	Text   string      `json:"text,omitempty"`
	Asset  string      `json:"asset,omitempty"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Width  float64     `json:"width,omitempty"`
	Height float64     `json:"height,omitempty"`
	Size   float64     `json:"size,omitempty"`
	Style  string      `json:"style,omitempty"`
	Align  string      `json:"align,omitempty"`
}

// Fields returns the payload field names the layout requires, in
// declaration order.
func (l Layout) Fields() []string {
	fields := make([]string, 0, len(l.Elements))
	for _, el := range l.Elements {
		if el.Type == ElementText && el.Field != "" {
			fields = append(fields, el.Field)
		}
	}
	return fields
}
