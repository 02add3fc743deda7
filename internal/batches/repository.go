package batches

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/certificates"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/locales"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/programs"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/render"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/templates"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/repository"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/storage"
)

type repo struct {
	db        *sql.DB
	certs     certificates.System
	templates templates.System
	programs  programs.System
	renderer  *render.Renderer
	storage   storage.System
	workers   int
	logger    *slog.Logger
}

// New creates a batch repository implementing the System interface.
func New(
	db *sql.DB,
	certs certificates.System,
	tpl templates.System,
	prg programs.System,
	renderer *render.Renderer,
	store storage.System,
	cfg Config,
	logger *slog.Logger,
) System {
	return &repo{
		db:        db,
		certs:     certs,
		templates: tpl,
		programs:  prg,
		renderer:  renderer,
		storage:   store,
		workers:   cfg.Workers,
		logger:    logger.With("system", "batches"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Find(ctx context.Context, id int64) (*Batch, error) {
	q := "SELECT id, program_id, title, created_at FROM batches WHERE id = $1"

	b, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanBatch)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &b, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Batch, error) {
	if len(cmd.Certificates) == 0 {
		return nil, ErrEmpty
	}

	program, err := r.programs.FindByUUID(ctx, cmd.ProgramUUID)
	if err != nil {
		return nil, fmt.Errorf("find program: %w", err)
	}

	if err := r.validateLocales(ctx, program, cmd.Certificates); err != nil {
		return nil, err
	}

	b, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Batch, error) {
		insertQ := `
			INSERT INTO batches(program_id, title)
			VALUES ($1, $2)
			RETURNING id, program_id, title, created_at`

		batch, err := repository.QueryOne(ctx, tx, insertQ, []any{program.ID, cmd.Title}, scanBatch)
		if err != nil {
			return Batch{}, err
		}

		for _, cert := range cmd.Certificates {
			if err := insertCertificate(ctx, tx, batch.ID, cert); err != nil {
				return Batch{}, err
			}
		}

		return batch, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("batch created",
		"id", b.ID,
		"program_id", b.ProgramID,
		"certificates", len(cmd.Certificates),
	)
	return &b, nil
}

func (r *repo) Status(ctx context.Context, batchID int64) (Status, error) {
	if _, err := r.Find(ctx, batchID); err != nil {
		return "", err
	}

	certs, err := r.certs.ListByBatch(ctx, batchID)
	if err != nil {
		return "", err
	}

	return Aggregate(certs), nil
}

// validateLocales rejects the batch when any certificate's locale cannot be
// resolved to an existing template variant, so configuration errors surface
// before acceptance instead of mid-render.
func (r *repo) validateLocales(ctx context.Context, program *programs.Program, certs []certificates.CreateCommand) error {
	available, err := r.templates.Locales(ctx, program.ID)
	if err != nil {
		return err
	}

	for i, cert := range certs {
		if cert.RecipientName == "" || cert.RecipientEmail == "" {
			return fmt.Errorf("%w: certificate %d", ErrNoRecipient, i)
		}
		if _, err := locales.Resolve(cert.RequestedLocale, program.DefaultLocale, available); err != nil {
			return fmt.Errorf("certificate %d: %w", i, err)
		}
	}

	return nil
}

func insertCertificate(ctx context.Context, tx *sql.Tx, batchID int64, cmd certificates.CreateCommand) error {
	payload := cmd.Payload
	if payload == nil {
		payload = map[string]string{}
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	q := `
		INSERT INTO certificates(
			uuid, batch_id, recipient_name, recipient_email,
			payload, requested_locale
		)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = tx.ExecContext(ctx, q,
		uuid.New(),
		batchID,
		cmd.RecipientName,
		cmd.RecipientEmail,
		payloadJSON,
		cmd.RequestedLocale,
	)
	if err != nil {
		return fmt.Errorf("insert certificate: %w", err)
	}

	return nil
}

func scanBatch(s repository.Scanner) (Batch, error) {
	var b Batch
	err := s.Scan(&b.ID, &b.ProgramID, &b.Title, &b.CreatedAt)
	return b, err
}
