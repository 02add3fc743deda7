// Package locales selects the template locale used to render a certificate.
package locales

import (
	"errors"
	"net/http"

	"golang.org/x/text/language"
)

// DefaultLocale is the global fallback when neither the certificate's
// requested locale nor the program default has a template variant.
const DefaultLocale = "en-US"

// ErrVariantMissing indicates no template variant exists for any candidate
// locale. This is a configuration error and must be fixed before rendering.
var ErrVariantMissing = errors.New("no template variant for any candidate locale")

// MapHTTPStatus maps locale resolution errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrVariantMissing) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// Resolve picks exactly one locale for rendering. Candidates are tried in
// order: the certificate's requested locale (if any), the program default,
// then DefaultLocale. The first candidate with an available variant wins;
// ambiguity never falls back to an arbitrary variant.
//
// Matching is case-insensitive on canonical BCP 47 form, so a stored
// "en-us" variant satisfies a requested "en-US".
func Resolve(requested *string, programDefault string, available []string) (string, error) {
	candidates := make([]string, 0, 3)
	if requested != nil && *requested != "" {
		candidates = append(candidates, *requested)
	}
	if programDefault != "" {
		candidates = append(candidates, programDefault)
	}
	candidates = append(candidates, DefaultLocale)

	for _, candidate := range candidates {
		if match, ok := findVariant(candidate, available); ok {
			return match, nil
		}
	}

	return "", ErrVariantMissing
}

// findVariant returns the stored locale code whose canonical tag equals the
// candidate's. The stored form is returned so downstream lookups hit the
// variant row exactly as persisted.
func findVariant(candidate string, available []string) (string, bool) {
	want, err := language.Parse(candidate)
	if err != nil {
		return "", false
	}

	for _, locale := range available {
		have, err := language.Parse(locale)
		if err != nil {
			continue
		}
		if have == want {
			return locale, true
		}
	}

	return "", false
}
