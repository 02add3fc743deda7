package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/templates"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	cfg := Config{Timeout: "5s", MaxRetries: 3, RetryBackoff: "1ms"}
	if err := cfg.Finalize(nil); err != nil {
		panic(err)
	}
	return cfg
}

func textDocument() *templates.BoundDocument {
	return &templates.BoundDocument{
		Locale: "en-US",
		Page:   templates.PageSpec{Size: "A4", Orientation: "landscape"},
		Nodes: []templates.Node{
			templates.TextNode{Text: "Certificate of Completion", X: 148, Y: 60, Size: 18, Align: "center"},
			templates.TextNode{Field: "recipient", Text: "Ada Lovelace", X: 148, Y: 90, Size: 28, Align: "center"},
		},
	}
}

// flakyEngine fails a set number of times before delegating to inner.
type flakyEngine struct {
	failures int
	inner    Engine
	calls    int
}

func (e *flakyEngine) Render(ctx context.Context, doc *templates.BoundDocument) ([]byte, error) {
	e.calls++
	if e.calls <= e.failures {
		return nil, fmt.Errorf("%w: transient", ErrEngine)
	}
	if e.inner == nil {
		return nil, fmt.Errorf("%w: no inner engine", ErrEngine)
	}
	return e.inner.Render(ctx, doc)
}

type blockingEngine struct{}

func (blockingEngine) Render(ctx context.Context, doc *templates.BoundDocument) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type invalidEngine struct{ calls int }

func (e *invalidEngine) Render(ctx context.Context, doc *templates.BoundDocument) ([]byte, error) {
	e.calls++
	return nil, fmt.Errorf("%w: bad tree", ErrInvalidBoundDocument)
}

func TestRenderSuccess(t *testing.T) {
	r := New(NewPDFEngine(nil), testConfig(), testLogger())

	result, err := r.Render(context.Background(), textDocument())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if len(result.Artifact) == 0 {
		t.Fatal("empty artifact")
	}
	if result.PageCount != 1 {
		t.Errorf("page count: got %d, want 1", result.PageCount)
	}
	if result.ContentHash != storage.ContentHash(result.Artifact) {
		t.Error("content hash does not match artifact")
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := New(NewPDFEngine(nil), testConfig(), testLogger())

	a, err := r.Render(context.Background(), textDocument())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	b, err := r.Render(context.Background(), textDocument())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if !bytes.Equal(a.Artifact, b.Artifact) {
		t.Error("artifacts differ for identical bound documents")
	}
	if a.ContentHash != b.ContentHash {
		t.Errorf("hashes differ: %s vs %s", a.ContentHash, b.ContentHash)
	}
}

func TestRenderRetriesTransientFailures(t *testing.T) {
	engine := &flakyEngine{failures: 2, inner: NewPDFEngine(nil)}
	r := New(engine, testConfig(), testLogger())

	var backoffs []time.Duration
	r.backoff = func(d time.Duration) { backoffs = append(backoffs, d) }

	result, err := r.Render(context.Background(), textDocument())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if result.PageCount != 1 {
		t.Errorf("page count: got %d, want 1", result.PageCount)
	}
	if engine.calls != 3 {
		t.Errorf("engine calls: got %d, want 3", engine.calls)
	}

	// Backoff doubles between attempts.
	want := []time.Duration{time.Millisecond, 2 * time.Millisecond}
	if len(backoffs) != len(want) {
		t.Fatalf("backoffs: got %v, want %v", backoffs, want)
	}
	for i := range want {
		if backoffs[i] != want[i] {
			t.Errorf("backoff %d: got %v, want %v", i, backoffs[i], want[i])
		}
	}
}

func TestRenderRetriesExhausted(t *testing.T) {
	engine := &flakyEngine{failures: 10}
	r := New(engine, testConfig(), testLogger())
	r.backoff = func(time.Duration) {}

	_, err := r.Render(context.Background(), textDocument())
	if !errors.Is(err, ErrEngine) {
		t.Fatalf("error: got %v, want ErrEngine", err)
	}
	if engine.calls != 3 {
		t.Errorf("engine calls: got %d, want 3", engine.calls)
	}
}

func TestRenderInvalidDocumentNotRetried(t *testing.T) {
	engine := &invalidEngine{}
	r := New(engine, testConfig(), testLogger())
	r.backoff = func(time.Duration) {}

	_, err := r.Render(context.Background(), textDocument())
	if !errors.Is(err, ErrInvalidBoundDocument) {
		t.Fatalf("error: got %v, want ErrInvalidBoundDocument", err)
	}
	if engine.calls != 1 {
		t.Errorf("engine calls: got %d, want 1", engine.calls)
	}
}

func TestRenderTimeout(t *testing.T) {
	cfg := Config{Timeout: "20ms", MaxRetries: 3, RetryBackoff: "1ms"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}

	r := New(blockingEngine{}, cfg, testLogger())
	r.backoff = func(time.Duration) {}

	_, err := r.Render(context.Background(), textDocument())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("error: got %v, want ErrTimeout", err)
	}
}

func TestEngineRejectsInvalidDocuments(t *testing.T) {
	engine := NewPDFEngine(nil)

	tests := []struct {
		name string
		doc  *templates.BoundDocument
	}{
		{name: "nil document", doc: nil},
		{
			name: "unknown page size",
			doc: &templates.BoundDocument{
				Page: templates.PageSpec{Size: "Tabloid", Orientation: "portrait"},
			},
		},
		{
			name: "unknown orientation",
			doc: &templates.BoundDocument{
				Page: templates.PageSpec{Size: "A4", Orientation: "diagonal"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Render(context.Background(), tt.doc)
			if !errors.Is(err, ErrInvalidBoundDocument) {
				t.Errorf("error: got %v, want ErrInvalidBoundDocument", err)
			}
		})
	}
}
