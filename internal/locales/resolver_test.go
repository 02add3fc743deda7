package locales_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/locales"
)

func strPtr(s string) *string { return &s }

func TestResolve(t *testing.T) {
	tests := []struct {
		name           string
		requested      *string
		programDefault string
		available      []string
		want           string
		wantErr        error
	}{
		{
			name:           "requested locale wins",
			requested:      strPtr("de-DE"),
			programDefault: "en-US",
			available:      []string{"en-US", "de-DE"},
			want:           "de-DE",
		},
		{
			name:           "missing requested falls back to program default",
			requested:      strPtr("de-DE"),
			programDefault: "en-US",
			available:      []string{"en-US"},
			want:           "en-US",
		},
		{
			name:           "no requested uses program default",
			requested:      nil,
			programDefault: "fr-FR",
			available:      []string{"fr-FR", "en-US"},
			want:           "fr-FR",
		},
		{
			name:           "program default missing falls back to global default",
			requested:      nil,
			programDefault: "fr-FR",
			available:      []string{"en-US"},
			want:           "en-US",
		},
		{
			name:           "case-insensitive tag match returns stored form",
			requested:      strPtr("en-US"),
			programDefault: "",
			available:      []string{"en-us"},
			want:           "en-us",
		},
		{
			name:           "empty requested treated as absent",
			requested:      strPtr(""),
			programDefault: "de-DE",
			available:      []string{"de-DE"},
			want:           "de-DE",
		},
		{
			name:           "no candidate has a variant",
			requested:      strPtr("de-DE"),
			programDefault: "fr-FR",
			available:      []string{"es-ES"},
			wantErr:        locales.ErrVariantMissing,
		},
		{
			name:           "no variants at all",
			requested:      nil,
			programDefault: "",
			available:      nil,
			wantErr:        locales.ErrVariantMissing,
		},
		{
			name:           "malformed requested tag skipped",
			requested:      strPtr("not a locale"),
			programDefault: "en-US",
			available:      []string{"en-US"},
			want:           "en-US",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := locales.Resolve(tt.requested, tt.programDefault, tt.available)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error: got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("locale: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	if got := locales.MapHTTPStatus(locales.ErrVariantMissing); got != http.StatusUnprocessableEntity {
		t.Errorf("variant missing: got %d, want %d", got, http.StatusUnprocessableEntity)
	}
	if got := locales.MapHTTPStatus(errors.New("boom")); got != http.StatusInternalServerError {
		t.Errorf("unknown error: got %d, want %d", got, http.StatusInternalServerError)
	}
}
