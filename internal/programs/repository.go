package programs

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/repository"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/storage"
)

const programColumns = `
	id, uuid, organisation_id, title, default_locale,
	logo_key, logo_content_type, created_at, updated_at`

const logoPrefix = "logos/programs"

type repo struct {
	db      *sql.DB
	storage storage.System
	logger  *slog.Logger
}

// New creates a program repository implementing the System interface.
func New(db *sql.DB, store storage.System, logger *slog.Logger) System {
	return &repo{
		db:      db,
		storage: store,
		logger:  logger.With("system", "programs"),
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, maxUploadSize)
}

func (r *repo) Find(ctx context.Context, id int64) (*Program, error) {
	q := fmt.Sprintf("SELECT %s FROM programs WHERE id = $1", programColumns)

	p, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanProgram)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) FindByUUID(ctx context.Context, id uuid.UUID) (*Program, error) {
	q := fmt.Sprintf("SELECT %s FROM programs WHERE uuid = $1", programColumns)

	p, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanProgram)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) Logo(ctx context.Context, id uuid.UUID) (*storage.DownloadResult, error) {
	p, err := r.FindByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.LogoKey == nil {
		return nil, ErrNoLogo
	}

	return r.storage.Download(ctx, *p.LogoKey)
}

func (r *repo) UploadLogo(ctx context.Context, id uuid.UUID, data []byte, contentType string) (*Program, error) {
	if len(data) == 0 {
		return nil, ErrInvalidLogo
	}

	key, _, err := r.storage.PutContent(ctx, logoPrefix, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("store program logo: %w", err)
	}

	q := fmt.Sprintf(`
		UPDATE programs SET
			logo_key = $2,
			logo_content_type = $3,
			updated_at = NOW()
		WHERE uuid = $1
		RETURNING %s`,
		programColumns,
	)

	p, err := repository.QueryOne(ctx, r.db, q, []any{id, key, contentType}, scanProgram)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("program logo updated", "uuid", id, "key", key)
	return &p, nil
}

func scanProgram(s repository.Scanner) (Program, error) {
	var p Program
	err := s.Scan(
		&p.ID,
		&p.UUID,
		&p.OrganisationID,
		&p.Title,
		&p.DefaultLocale,
		&p.LogoKey,
		&p.LogoContentType,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
