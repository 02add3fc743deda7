// Package render converts bound document descriptions into durable PDF
// artifacts. The concrete engine is replaceable behind the Engine interface;
// the Renderer wrapper enforces per-document timeouts and bounded retry of
// transient engine failures.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/templates"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/storage"
)

// Engine produces a document artifact from a bound description. Output must
// be deterministic: the same bound document and engine version yield
// byte-identical artifacts.
type Engine interface {
	Render(ctx context.Context, doc *templates.BoundDocument) ([]byte, error)
}

// Result carries a rendered artifact with its content hash and page count.
type Result struct {
	Artifact    []byte
	ContentHash string
	PageCount   int
}

// Renderer wraps an Engine with timeout and retry policy.
type Renderer struct {
	engine  Engine
	cfg     Config
	logger  *slog.Logger
	backoff func(time.Duration) // test seam; defaults to time.Sleep
}

// New creates a Renderer around the given engine.
func New(engine Engine, cfg Config, logger *slog.Logger) *Renderer {
	return &Renderer{
		engine:  engine,
		cfg:     cfg,
		logger:  logger.With("system", "render"),
		backoff: func(d time.Duration) { time.Sleep(d) },
	}
}

// Render produces the artifact for doc under a hard timeout. ErrEngine
// failures are retried up to the configured limit with doubling backoff;
// ErrInvalidBoundDocument fails immediately. The returned artifact is
// validated as a well-formed PDF before the result is reported.
func (r *Renderer) Render(ctx context.Context, doc *templates.BoundDocument) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.TimeoutDuration())
	defer cancel()

	var (
		artifact []byte
		err      error
	)

	backoff := r.cfg.RetryBackoffDuration()
	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		artifact, err = r.engine.Render(ctx, doc)
		if err == nil {
			break
		}
		if errors.Is(err, ErrInvalidBoundDocument) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		}
		if attempt == r.cfg.MaxRetries {
			return nil, fmt.Errorf("%w: %d attempts: %w", ErrEngine, attempt, err)
		}

		r.logger.Warn("render attempt failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		r.backoff(backoff)
		backoff *= 2
	}

	pageCount, err := api.PageCount(bytes.NewReader(artifact), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: artifact validation: %w", ErrEngine, err)
	}

	return &Result{
		Artifact:    artifact,
		ContentHash: storage.ContentHash(artifact),
		PageCount:   pageCount,
	}, nil
}
