package batches

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/certificates"
)

const artifactPrefix = "artifacts"

// Render fans rendering work out across a bounded worker pool. Every
// certificate renders independently: one failure never aborts siblings, and
// a re-run only touches certificates still pending or previously failed.
// Cancellation leaves in-flight certificates without a state write so they
// remain pending for a later safe retry.
func (r *repo) Render(ctx context.Context, batchID int64) (*RenderReport, error) {
	if _, err := r.Find(ctx, batchID); err != nil {
		return nil, err
	}

	renderable, err := r.certs.Renderable(ctx, batchID)
	if err != nil {
		return nil, err
	}

	r.logger.Info("batch render started",
		"batch_id", batchID,
		"certificates", len(renderable),
		"workers", r.workers,
	)

	results := make([]CertificateResult, len(renderable))

	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, cert := range renderable {
		g.Go(func() error {
			results[i] = r.renderOne(ctx, cert)
			return nil
		})
	}
	g.Wait()

	all, err := r.certs.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	report := &RenderReport{
		BatchID:   batchID,
		Status:    Aggregate(all),
		Attempted: len(renderable),
		Results:   results,
	}

	r.logger.Info("batch render finished",
		"batch_id", batchID,
		"status", report.Status,
		"attempted", report.Attempted,
	)
	return report, nil
}

func (r *repo) renderOne(ctx context.Context, cert certificates.Certificate) CertificateResult {
	result := CertificateResult{
		CertificateID: cert.ID,
		UUID:          cert.UUID,
		State:         cert.RenderState,
	}

	if ctx.Err() != nil {
		result.Error = ctx.Err().Error()
		return result
	}

	doc, err := r.certs.BindDocument(ctx, &cert)
	if err != nil {
		return r.recordFailure(ctx, result, err)
	}

	rendered, err := r.renderer.Render(ctx, doc)
	if err != nil {
		return r.recordFailure(ctx, result, err)
	}

	key, hash, err := r.storage.PutContent(ctx, artifactPrefix, rendered.Artifact, "application/pdf")
	if err != nil {
		return r.recordFailure(ctx, result, err)
	}

	updated, err := r.certs.MarkRendered(ctx, cert.ID, certificates.RenderedArtifact{
		Locale:      doc.Locale,
		StorageKey:  key,
		ContentHash: hash,
		PageCount:   rendered.PageCount,
	})
	if err != nil {
		if errors.Is(err, certificates.ErrStateConflict) {
			// A concurrent run already rendered this certificate.
			result.State = certificates.Rendered
			return result
		}
		return r.recordFailure(ctx, result, err)
	}

	result.State = updated.RenderState
	return result
}

// recordFailure marks a certificate failed unless the run was cancelled, in
// which case no state is written and the certificate stays renderable.
func (r *repo) recordFailure(ctx context.Context, result CertificateResult, cause error) CertificateResult {
	result.Error = cause.Error()

	if ctx.Err() != nil {
		return result
	}

	if err := r.certs.MarkRenderFailed(ctx, result.CertificateID, cause.Error()); err != nil {
		r.logger.Error("record render failure",
			"certificate_id", result.CertificateID,
			"error", err,
		)
		return result
	}

	result.State = certificates.RenderFailed
	return result
}
