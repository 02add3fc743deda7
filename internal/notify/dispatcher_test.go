package notify_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/certificates"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/notify"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/templates"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/lifecycle"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/mailer"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) notify.Config {
	t.Helper()
	cfg := notify.Config{
		SenderEmail: "certificates@example.com",
		PublicURL:   "https://certs.example.com",
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}
	return cfg
}

// certStore is a minimal certificates.System implementing the notification
// state machine guards the way the real repository does.
type certStore struct {
	mu   sync.Mutex
	cert certificates.Certificate
}

func (s *certStore) Handler() *certificates.Handler { return nil }

func (s *certStore) Find(ctx context.Context, id int64) (*certificates.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := s.cert
	return &copied, nil
}

func (s *certStore) FindByUUID(ctx context.Context, id uuid.UUID) (*certificates.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cert.UUID != id {
		return nil, certificates.ErrNotFound
	}
	copied := s.cert
	return &copied, nil
}

func (s *certStore) ListByBatch(ctx context.Context, batchID int64) ([]certificates.Certificate, error) {
	return nil, nil
}

func (s *certStore) Renderable(ctx context.Context, batchID int64) ([]certificates.Certificate, error) {
	return nil, nil
}

func (s *certStore) BindDocument(ctx context.Context, cert *certificates.Certificate) (*templates.BoundDocument, error) {
	return nil, errors.New("not supported")
}

func (s *certStore) MarkRendered(ctx context.Context, id int64, artifact certificates.RenderedArtifact) (*certificates.Certificate, error) {
	return nil, errors.New("not supported")
}

func (s *certStore) MarkRenderFailed(ctx context.Context, id int64, reason string) error {
	return errors.New("not supported")
}

func (s *certStore) BeginNotification(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.cert.NotificationState
	if state != certificates.NotificationUnsent && state != certificates.NotificationFailed {
		return certificates.ErrStateConflict
	}
	s.cert.NotificationState = certificates.NotificationSending
	return nil
}

func (s *certStore) FinishNotification(ctx context.Context, id int64, outcome certificates.NotificationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cert.NotificationState != certificates.NotificationSending {
		return certificates.ErrStateConflict
	}
	s.cert.NotificationState = outcome
	s.cert.NotificationAttempts++
	return nil
}

func (s *certStore) Preview(ctx context.Context, cert *certificates.Certificate) ([]byte, error) {
	return nil, errors.New("not supported")
}

// artifactStore serves a single stored artifact.
type artifactStore struct {
	key  string
	data []byte
}

func (s *artifactStore) Start(lc *lifecycle.Coordinator) error { return nil }
func (s *artifactStore) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	return nil
}
func (s *artifactStore) PutContent(ctx context.Context, prefix string, data []byte, contentType string) (string, string, error) {
	return "", "", errors.New("not supported")
}
func (s *artifactStore) Download(ctx context.Context, key string) (*storage.DownloadResult, error) {
	if key != s.key {
		return nil, storage.ErrNotFound
	}
	return &storage.DownloadResult{
		Body:          io.NopCloser(bytes.NewReader(s.data)),
		ContentType:   "application/pdf",
		ContentLength: int64(len(s.data)),
	}, nil
}
func (s *artifactStore) Delete(ctx context.Context, key string) error         { return nil }
func (s *artifactStore) Exists(ctx context.Context, key string) (bool, error) { return false, nil }

// countingSender records sent emails and can fail a number of attempts.
type countingSender struct {
	mu       sync.Mutex
	failures int
	sent     []*mailer.Email
}

func (s *countingSender) Send(ctx context.Context, email *mailer.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, email)
	return nil
}

func renderedCert() certificates.Certificate {
	key := "artifacts/deadbeef"
	hash := "deadbeef"
	return certificates.Certificate{
		ID:                1,
		UUID:              uuid.New(),
		BatchID:           1,
		RecipientName:     "Ada Lovelace",
		RecipientEmail:    "ada@example.com",
		RenderState:       certificates.Rendered,
		ArtifactKey:       &key,
		ArtifactHash:      &hash,
		NotificationState: certificates.NotificationUnsent,
	}
}

func newSystem(t *testing.T, certs *certStore, sender *countingSender) notify.System {
	t.Helper()
	store := &artifactStore{key: "artifacts/deadbeef", data: []byte("%PDF-1.4 test")}
	return notify.New(certs, store, sender, testConfig(t), testLogger())
}

func TestDispatchSendsOnce(t *testing.T) {
	certs := &certStore{cert: renderedCert()}
	sender := &countingSender{}
	sys := newSystem(t, certs, sender)

	cert, err := sys.Dispatch(context.Background(), certs.cert.UUID)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if cert.NotificationState != certificates.NotificationSent {
		t.Errorf("state: got %s, want sent", cert.NotificationState)
	}
	if cert.NotificationAttempts != 1 {
		t.Errorf("attempts: got %d, want 1", cert.NotificationAttempts)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("transport calls: got %d, want 1", len(sender.sent))
	}

	email := sender.sent[0]
	if len(email.To) != 1 || email.To[0] != "ada@example.com" {
		t.Errorf("recipients: got %v", email.To)
	}
	if len(email.Attachments) != 1 || email.Attachments[0].ContentType != "application/pdf" {
		t.Errorf("attachment missing: %+v", email.Attachments)
	}
	wantLink := "https://certs.example.com/certificates/public/" + cert.UUID.String() + "/preview"
	if !strings.Contains(email.Text, wantLink) {
		t.Errorf("body missing certificate link %q: %s", wantLink, email.Text)
	}
}

func TestDispatchIdempotent(t *testing.T) {
	certs := &certStore{cert: renderedCert()}
	sender := &countingSender{}
	sys := newSystem(t, certs, sender)

	if _, err := sys.Dispatch(context.Background(), certs.cert.UUID); err != nil {
		t.Fatalf("first dispatch failed: %v", err)
	}

	cert, err := sys.Dispatch(context.Background(), certs.cert.UUID)
	if err != nil {
		t.Fatalf("second dispatch failed: %v", err)
	}

	if cert.NotificationState != certificates.NotificationSent {
		t.Errorf("state: got %s, want sent", cert.NotificationState)
	}
	if len(sender.sent) != 1 {
		t.Errorf("transport calls: got %d, want 1", len(sender.sent))
	}
	if cert.NotificationAttempts != 1 {
		t.Errorf("attempts: got %d, want 1", cert.NotificationAttempts)
	}
}

func TestDispatchRequiresRenderedArtifact(t *testing.T) {
	cert := renderedCert()
	cert.RenderState = certificates.RenderPending
	cert.ArtifactKey = nil

	certs := &certStore{cert: cert}
	sender := &countingSender{}
	sys := newSystem(t, certs, sender)

	_, err := sys.Dispatch(context.Background(), cert.UUID)
	if !errors.Is(err, notify.ErrNotRendered) {
		t.Fatalf("error: got %v, want ErrNotRendered", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("transport calls: got %d, want 0", len(sender.sent))
	}
}

func TestDispatchTransportFailureThenRetry(t *testing.T) {
	certs := &certStore{cert: renderedCert()}
	sender := &countingSender{failures: 1}
	sys := newSystem(t, certs, sender)

	_, err := sys.Dispatch(context.Background(), certs.cert.UUID)
	if !errors.Is(err, notify.ErrTransport) {
		t.Fatalf("error: got %v, want ErrTransport", err)
	}

	// Failure outcome is persisted with the attempt counted.
	current, err := sys.Status(context.Background(), certs.cert.UUID)
	if err != nil {
		t.Fatal(err)
	}
	if current.NotificationState != certificates.NotificationFailed {
		t.Errorf("state after failure: got %s, want failed", current.NotificationState)
	}
	if current.NotificationAttempts != 1 {
		t.Errorf("attempts: got %d, want 1", current.NotificationAttempts)
	}

	// An explicit re-dispatch of a failed notification is allowed.
	cert, err := sys.Dispatch(context.Background(), certs.cert.UUID)
	if err != nil {
		t.Fatalf("re-dispatch failed: %v", err)
	}
	if cert.NotificationState != certificates.NotificationSent {
		t.Errorf("state: got %s, want sent", cert.NotificationState)
	}
	if cert.NotificationAttempts != 2 {
		t.Errorf("attempts: got %d, want 2", cert.NotificationAttempts)
	}
}

func TestDispatchInFlightConflict(t *testing.T) {
	cert := renderedCert()
	cert.NotificationState = certificates.NotificationSending

	certs := &certStore{cert: cert}
	sender := &countingSender{}
	sys := newSystem(t, certs, sender)

	_, err := sys.Dispatch(context.Background(), cert.UUID)
	if !errors.Is(err, notify.ErrInFlight) {
		t.Fatalf("error: got %v, want ErrInFlight", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("transport calls: got %d, want 0", len(sender.sent))
	}
}

func TestDispatchUnknownCertificate(t *testing.T) {
	certs := &certStore{cert: renderedCert()}
	sys := newSystem(t, certs, &countingSender{})

	_, err := sys.Dispatch(context.Background(), uuid.New())
	if !errors.Is(err, certificates.ErrNotFound) {
		t.Fatalf("error: got %v, want ErrNotFound", err)
	}
}
