// Package notify dispatches certificate delivery notifications over email.
// Dispatch is idempotent per certificate: the notification state machine in
// the certificates domain guards against duplicate sends, and every transport
// attempt records its outcome before the call returns.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/certificates"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/mailer"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/storage"
)

type dispatcher struct {
	certs   certificates.System
	storage storage.System
	sender  mailer.Sender
	cfg     Config
	logger  *slog.Logger
}

// New creates a notification dispatcher implementing the System interface.
func New(
	certs certificates.System,
	store storage.System,
	sender mailer.Sender,
	cfg Config,
	logger *slog.Logger,
) System {
	return &dispatcher{
		certs:   certs,
		storage: store,
		sender:  sender,
		cfg:     cfg,
		logger:  logger.With("system", "notify"),
	}
}

func (d *dispatcher) Handler() *Handler {
	return NewHandler(d, d.logger)
}

func (d *dispatcher) Status(ctx context.Context, id uuid.UUID) (*certificates.Certificate, error) {
	return d.certs.FindByUUID(ctx, id)
}

func (d *dispatcher) Dispatch(ctx context.Context, id uuid.UUID) (*certificates.Certificate, error) {
	cert, err := d.certs.FindByUUID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cert.RenderState != certificates.Rendered || cert.ArtifactKey == nil {
		return nil, fmt.Errorf("%w: certificate %s", ErrNotRendered, cert.UUID)
	}

	if cert.NotificationState == certificates.NotificationSent {
		return cert, nil
	}

	if err := d.certs.BeginNotification(ctx, cert.ID); err != nil {
		if !errors.Is(err, certificates.ErrStateConflict) {
			return nil, err
		}

		// Lost the race: a concurrent dispatch holds or held the sending
		// state. Re-read to distinguish a completed send from one in flight.
		current, findErr := d.certs.FindByUUID(ctx, id)
		if findErr != nil {
			return nil, findErr
		}
		if current.NotificationState == certificates.NotificationSent {
			return current, nil
		}
		return nil, fmt.Errorf("%w: certificate %s", ErrInFlight, cert.UUID)
	}

	sendErr := d.send(ctx, cert)

	outcome := certificates.NotificationSent
	if sendErr != nil {
		outcome = certificates.NotificationFailed
	}

	// The outcome write must survive request cancellation, otherwise the
	// certificate is stuck in sending.
	persistCtx := context.WithoutCancel(ctx)
	if err := d.certs.FinishNotification(persistCtx, cert.ID, outcome); err != nil {
		d.logger.Error("persist notification outcome",
			"certificate_id", cert.ID,
			"outcome", outcome,
			"error", err,
		)
		return nil, err
	}

	if sendErr != nil {
		d.logger.Warn("notification send failed",
			"certificate_id", cert.ID,
			"recipient", cert.RecipientEmail,
			"error", sendErr,
		)
		return nil, fmt.Errorf("%w: %v", ErrTransport, sendErr)
	}

	d.logger.Info("notification sent",
		"certificate_id", cert.ID,
		"recipient", cert.RecipientEmail,
	)

	return d.certs.FindByUUID(persistCtx, id)
}

func (d *dispatcher) send(ctx context.Context, cert *certificates.Certificate) error {
	email, err := d.compose(ctx, cert)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeoutDuration())
	defer cancel()

	return d.sender.Send(sendCtx, email)
}

func (d *dispatcher) compose(ctx context.Context, cert *certificates.Certificate) (*mailer.Email, error) {
	result, err := d.storage.Download(ctx, *cert.ArtifactKey)
	if err != nil {
		return nil, fmt.Errorf("download artifact: %w", err)
	}
	defer result.Body.Close()

	artifact, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	link := fmt.Sprintf("%s/certificates/public/%s/preview", d.cfg.PublicURL, cert.UUID)

	return &mailer.Email{
		To:      []string{cert.RecipientEmail},
		Subject: "Your certificate is ready",
		Text: fmt.Sprintf(
			"Hello %s,\n\nYour certificate has been issued. You can view it at %s, and the signed PDF is attached.\n",
			cert.RecipientName, link,
		),
		HTML: fmt.Sprintf(
			"<p>Hello %s,</p><p>Your certificate has been issued. You can <a href=%q>view it online</a>, and the signed PDF is attached.</p>",
			cert.RecipientName, link,
		),
		Attachments: []mailer.Attachment{{
			Filename:    fmt.Sprintf("certificate-%s.pdf", cert.UUID),
			Content:     artifact,
			ContentType: "application/pdf",
		}},
	}, nil
}
