package templates

import (
	"context"
)

// System defines the public contract for template domain operations.
type System interface {
	// Variant returns the locale variant of a program's template.
	// Returns ErrVariantMissing when the program has no variant for locale.
	Variant(ctx context.Context, programID int64, locale string) (*Variant, error)
	// Locales returns the locales for which a program's template has
	// variants, sorted ascending.
	Locales(ctx context.Context, programID int64) ([]string, error)
	// SaveVariant inserts or replaces the layout of a program's locale variant.
	SaveVariant(ctx context.Context, programID int64, locale string, layout Layout) (*Variant, error)
}
