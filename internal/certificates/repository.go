package certificates

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/locales"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/organisations"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/preview"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/programs"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/templates"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/repository"
)

const certificateColumns = `
	id, uuid, batch_id, recipient_name, recipient_email, payload,
	requested_locale, resolved_locale, render_state, render_error,
	artifact_key, artifact_hash, artifact_version, page_count, visibility,
	notification_state, notification_attempts, notified_at, last_attempt_at,
	created_at, updated_at`

type repo struct {
	db        *sql.DB
	templates templates.System
	programs  programs.System
	orgs      organisations.System
	previews  *preview.Generator
	logger    *slog.Logger
}

// New creates a certificate repository implementing the System interface.
func New(
	db *sql.DB,
	tpl templates.System,
	prg programs.System,
	orgs organisations.System,
	previews *preview.Generator,
	logger *slog.Logger,
) System {
	return &repo{
		db:        db,
		templates: tpl,
		programs:  prg,
		orgs:      orgs,
		previews:  previews,
		logger:    logger.With("system", "certificates"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Find(ctx context.Context, id int64) (*Certificate, error) {
	q := fmt.Sprintf("SELECT %s FROM certificates WHERE id = $1", certificateColumns)

	c, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanCertificate)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) FindByUUID(ctx context.Context, id uuid.UUID) (*Certificate, error) {
	q := fmt.Sprintf("SELECT %s FROM certificates WHERE uuid = $1", certificateColumns)

	c, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanCertificate)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) ListByBatch(ctx context.Context, batchID int64) ([]Certificate, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM certificates WHERE batch_id = $1 ORDER BY id",
		certificateColumns,
	)

	certs, err := repository.QueryMany(ctx, r.db, q, []any{batchID}, scanCertificate)
	if err != nil {
		return nil, fmt.Errorf("query batch certificates: %w", err)
	}
	return certs, nil
}

func (r *repo) Renderable(ctx context.Context, batchID int64) ([]Certificate, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM certificates
		WHERE batch_id = $1 AND render_state IN ('pending', 'render_failed')
		ORDER BY id`,
		certificateColumns,
	)

	certs, err := repository.QueryMany(ctx, r.db, q, []any{batchID}, scanCertificate)
	if err != nil {
		return nil, fmt.Errorf("query renderable certificates: %w", err)
	}
	return certs, nil
}

func (r *repo) BindDocument(ctx context.Context, cert *Certificate) (*templates.BoundDocument, error) {
	programID, err := r.programIDForBatch(ctx, cert.BatchID)
	if err != nil {
		return nil, err
	}

	program, err := r.programs.Find(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("find program: %w", err)
	}

	available, err := r.templates.Locales(ctx, programID)
	if err != nil {
		return nil, err
	}

	locale, err := locales.Resolve(cert.RequestedLocale, program.DefaultLocale, available)
	if err != nil {
		return nil, err
	}

	variant, err := r.templates.Variant(ctx, programID, locale)
	if err != nil {
		return nil, err
	}

	assets := templates.Assets{}
	if program.LogoKey != nil {
		assets["program_logo"] = *program.LogoKey
	}

	org, err := r.orgs.Find(ctx, program.OrganisationID)
	if err != nil {
		return nil, fmt.Errorf("find organisation: %w", err)
	}
	if org.LogoKey != nil {
		assets["organisation_logo"] = *org.LogoKey
	}

	return templates.Bind(variant, cert.Payload, assets)
}

func (r *repo) MarkRendered(ctx context.Context, id int64, artifact RenderedArtifact) (*Certificate, error) {
	q := fmt.Sprintf(`
		UPDATE certificates SET
			render_state = 'rendered',
			render_error = NULL,
			resolved_locale = $2,
			artifact_key = $3,
			artifact_hash = $4,
			artifact_version = artifact_version + 1,
			page_count = $5,
			updated_at = NOW()
		WHERE id = $1 AND render_state IN ('pending', 'render_failed')
		RETURNING %s`,
		certificateColumns,
	)

	args := []any{id, artifact.Locale, artifact.StorageKey, artifact.ContentHash, artifact.PageCount}

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCertificate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.resolveGuardMiss(ctx, id)
		}
		return nil, fmt.Errorf("mark rendered: %w", err)
	}

	r.logger.Info("certificate rendered",
		"id", c.ID,
		"uuid", c.UUID,
		"locale", artifact.Locale,
		"artifact_version", c.ArtifactVersion,
	)
	return &c, nil
}

func (r *repo) MarkRenderFailed(ctx context.Context, id int64, reason string) error {
	err := repository.ExecGuarded(ctx, r.db, ErrStateConflict, `
		UPDATE certificates SET
			render_state = 'render_failed',
			render_error = $2,
			updated_at = NOW()
		WHERE id = $1 AND render_state IN ('pending', 'render_failed')`,
		id, reason,
	)
	if err != nil {
		if errors.Is(err, ErrStateConflict) {
			return r.resolveGuardMiss(ctx, id)
		}
		return fmt.Errorf("mark render failed: %w", err)
	}

	r.logger.Warn("certificate render failed", "id", id, "reason", reason)
	return nil
}

func (r *repo) BeginNotification(ctx context.Context, id int64) error {
	err := repository.ExecGuarded(ctx, r.db, ErrStateConflict, `
		UPDATE certificates SET
			notification_state = 'sending',
			updated_at = NOW()
		WHERE id = $1 AND notification_state IN ('unsent', 'failed')`,
		id,
	)
	if err != nil && !errors.Is(err, ErrStateConflict) {
		return fmt.Errorf("begin notification: %w", err)
	}
	return err
}

func (r *repo) FinishNotification(ctx context.Context, id int64, outcome NotificationState) error {
	if outcome != NotificationSent && outcome != NotificationFailed {
		return fmt.Errorf("%w: finish to %s", ErrStateConflict, outcome)
	}

	err := repository.ExecGuarded(ctx, r.db, ErrStateConflict, `
		UPDATE certificates SET
			notification_state = $2,
			notification_attempts = notification_attempts + 1,
			last_attempt_at = NOW(),
			notified_at = CASE WHEN $2 = 'sent' THEN NOW() ELSE notified_at END,
			updated_at = NOW()
		WHERE id = $1 AND notification_state = 'sending'`,
		id, string(outcome),
	)
	if err != nil && !errors.Is(err, ErrStateConflict) {
		return fmt.Errorf("finish notification: %w", err)
	}
	return err
}

func (r *repo) Preview(ctx context.Context, cert *Certificate) ([]byte, error) {
	if cert.RenderState != Rendered || cert.ArtifactHash == nil {
		return nil, ErrNotRendered
	}

	data, err := r.previews.Cached(ctx, *cert.ArtifactHash)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, preview.ErrNotFound) {
		return nil, err
	}

	doc, err := r.BindDocument(ctx, cert)
	if err != nil {
		return nil, fmt.Errorf("bind for preview: %w", err)
	}

	return r.previews.Ensure(ctx, *cert.ArtifactHash, doc)
}

// resolveGuardMiss distinguishes a missing certificate from a lost
// state-guard race after a conditional update affected no rows.
func (r *repo) resolveGuardMiss(ctx context.Context, id int64) error {
	if _, err := r.Find(ctx, id); err != nil {
		return err
	}
	return ErrStateConflict
}

func (r *repo) programIDForBatch(ctx context.Context, batchID int64) (int64, error) {
	var programID int64
	err := r.db.QueryRowContext(ctx,
		"SELECT program_id FROM batches WHERE id = $1",
		batchID,
	).Scan(&programID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("find batch program: %w", err)
	}
	return programID, nil
}

func scanCertificate(s repository.Scanner) (Certificate, error) {
	var (
		c           Certificate
		payloadJSON []byte
	)

	if err := s.Scan(
		&c.ID,
		&c.UUID,
		&c.BatchID,
		&c.RecipientName,
		&c.RecipientEmail,
		&payloadJSON,
		&c.RequestedLocale,
		&c.ResolvedLocale,
		&c.RenderState,
		&c.RenderError,
		&c.ArtifactKey,
		&c.ArtifactHash,
		&c.ArtifactVersion,
		&c.PageCount,
		&c.Visibility,
		&c.NotificationState,
		&c.NotificationAttempts,
		&c.NotifiedAt,
		&c.LastAttemptAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return c, err
	}

	if err := json.Unmarshal(payloadJSON, &c.Payload); err != nil {
		return c, fmt.Errorf("unmarshal payload: %w", err)
	}

	return c, nil
}
