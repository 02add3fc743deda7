package batches_test

import (
	"testing"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/batches"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/certificates"
)

func certsInStates(states ...certificates.RenderState) []certificates.Certificate {
	certs := make([]certificates.Certificate, len(states))
	for i, s := range states {
		certs[i] = certificates.Certificate{ID: int64(i + 1), RenderState: s}
	}
	return certs
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name   string
		states []certificates.RenderState
		want   batches.Status
	}{
		{
			name:   "all rendered",
			states: []certificates.RenderState{certificates.Rendered, certificates.Rendered},
			want:   batches.StatusCompleted,
		},
		{
			name:   "empty batch counts as completed",
			states: nil,
			want:   batches.StatusCompleted,
		},
		{
			name:   "any pending keeps batch in progress",
			states: []certificates.RenderState{certificates.Rendered, certificates.RenderPending},
			want:   batches.StatusInProgress,
		},
		{
			name:   "pending outranks failures",
			states: []certificates.RenderState{certificates.RenderFailed, certificates.RenderPending},
			want:   batches.StatusInProgress,
		},
		{
			name:   "mixed terminal states partially failed",
			states: []certificates.RenderState{certificates.Rendered, certificates.RenderFailed},
			want:   batches.StatusPartiallyFailed,
		},
		{
			name:   "all failed",
			states: []certificates.RenderState{certificates.RenderFailed, certificates.RenderFailed},
			want:   batches.StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := batches.Aggregate(certsInStates(tt.states...))
			if got != tt.want {
				t.Errorf("status: got %s, want %s", got, tt.want)
			}
		})
	}
}
