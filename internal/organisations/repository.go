package organisations

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/repository"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/storage"
)

const organisationColumns = `
	id, name, logo_key, logo_content_type, created_at, updated_at`

const logoPrefix = "logos/organisations"

// System defines the public contract for organisation domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	Find(ctx context.Context, id int64) (*Organisation, error)
	// Logo streams the organisation's logo with its stored content type.
	Logo(ctx context.Context, id int64) (*storage.DownloadResult, error)
	// UploadLogo stores logo bytes content-addressed and points the
	// organisation at the new key.
	UploadLogo(ctx context.Context, id int64, data []byte, contentType string) (*Organisation, error)
}

type repo struct {
	db      *sql.DB
	storage storage.System
	logger  *slog.Logger
}

// New creates an organisation repository implementing the System interface.
func New(db *sql.DB, store storage.System, logger *slog.Logger) System {
	return &repo{
		db:      db,
		storage: store,
		logger:  logger.With("system", "organisations"),
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, maxUploadSize)
}

func (r *repo) Find(ctx context.Context, id int64) (*Organisation, error) {
	q := fmt.Sprintf("SELECT %s FROM organisations WHERE id = $1", organisationColumns)

	o, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanOrganisation)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &o, nil
}

func (r *repo) Logo(ctx context.Context, id int64) (*storage.DownloadResult, error) {
	o, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.LogoKey == nil {
		return nil, ErrNoLogo
	}

	return r.storage.Download(ctx, *o.LogoKey)
}

func (r *repo) UploadLogo(ctx context.Context, id int64, data []byte, contentType string) (*Organisation, error) {
	if len(data) == 0 {
		return nil, ErrInvalidLogo
	}

	key, _, err := r.storage.PutContent(ctx, logoPrefix, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("store organisation logo: %w", err)
	}

	q := fmt.Sprintf(`
		UPDATE organisations SET
			logo_key = $2,
			logo_content_type = $3,
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s`,
		organisationColumns,
	)

	o, err := repository.QueryOne(ctx, r.db, q, []any{id, key, contentType}, scanOrganisation)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("organisation logo updated", "id", id, "key", key)
	return &o, nil
}

func scanOrganisation(s repository.Scanner) (Organisation, error) {
	var o Organisation
	err := s.Scan(
		&o.ID,
		&o.Name,
		&o.LogoKey,
		&o.LogoContentType,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}
