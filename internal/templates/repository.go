package templates

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a template repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "templates"),
	}
}

func (r *repo) Variant(ctx context.Context, programID int64, locale string) (*Variant, error) {
	q := `
		SELECT v.id, v.template_id, v.locale, v.layout, v.created_at, v.updated_at
		FROM template_variants v
		JOIN templates t ON t.id = v.template_id
		WHERE t.program_id = $1 AND v.locale = $2`

	v, err := repository.QueryOne(ctx, r.db, q, []any{programID, locale}, scanVariant)
	if err != nil {
		return nil, repository.MapError(err, ErrVariantMissing, ErrDuplicate)
	}
	return &v, nil
}

func (r *repo) Locales(ctx context.Context, programID int64) ([]string, error) {
	q := `
		SELECT v.locale
		FROM template_variants v
		JOIN templates t ON t.id = v.template_id
		WHERE t.program_id = $1
		ORDER BY v.locale`

	locales, err := repository.QueryMany(ctx, r.db, q, []any{programID}, func(s repository.Scanner) (string, error) {
		var locale string
		err := s.Scan(&locale)
		return locale, err
	})
	if err != nil {
		return nil, fmt.Errorf("query template locales: %w", err)
	}

	return locales, nil
}

func (r *repo) SaveVariant(ctx context.Context, programID int64, locale string, layout Layout) (*Variant, error) {
	layoutJSON, err := json.Marshal(layout)
	if err != nil {
		return nil, fmt.Errorf("marshal layout: %w", err)
	}

	v, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Variant, error) {
		templateID, err := ensureTemplate(ctx, tx, programID)
		if err != nil {
			return Variant{}, err
		}

		upsertQ := `
			INSERT INTO template_variants(template_id, locale, layout)
			VALUES ($1, $2, $3)
			ON CONFLICT (template_id, locale) DO UPDATE SET
				layout = EXCLUDED.layout,
				updated_at = NOW()
			RETURNING id, template_id, locale, layout, created_at, updated_at`

		return repository.QueryOne(ctx, tx, upsertQ, []any{templateID, locale, layoutJSON}, scanVariant)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("template variant saved", "program_id", programID, "locale", locale)
	return &v, nil
}

// ensureTemplate returns the program's template id, creating the template
// row on first use. Programs own exactly one logical template.
func ensureTemplate(ctx context.Context, tx *sql.Tx, programID int64) (int64, error) {
	q := `
		INSERT INTO templates(program_id, name)
		VALUES ($1, 'certificate')
		ON CONFLICT (program_id) DO UPDATE SET updated_at = NOW()
		RETURNING id`

	var id int64
	if err := tx.QueryRowContext(ctx, q, programID).Scan(&id); err != nil {
		return 0, fmt.Errorf("ensure template: %w", err)
	}
	return id, nil
}

func scanVariant(s repository.Scanner) (Variant, error) {
	var (
		v          Variant
		layoutJSON []byte
	)

	if err := s.Scan(
		&v.ID,
		&v.TemplateID,
		&v.Locale,
		&layoutJSON,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		return v, err
	}

	if err := json.Unmarshal(layoutJSON, &v.Layout); err != nil {
		return v, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}

	return v, nil
}
