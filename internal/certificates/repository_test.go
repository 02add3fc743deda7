package certificates_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/certificates"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSystem(t *testing.T) (certificates.System, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	return certificates.New(db, nil, nil, nil, nil, testLogger()), mock
}

func certColumns() []string {
	return []string{
		"id", "uuid", "batch_id", "recipient_name", "recipient_email", "payload",
		"requested_locale", "resolved_locale", "render_state", "render_error",
		"artifact_key", "artifact_hash", "artifact_version", "page_count", "visibility",
		"notification_state", "notification_attempts", "notified_at", "last_attempt_at",
		"created_at", "updated_at",
	}
}

func certRow(id int64, renderState certificates.RenderState) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(certColumns()).AddRow(
		id, uuid.New(), int64(1), "Ada Lovelace", "ada@example.com", []byte(`{}`),
		nil, nil, string(renderState), nil,
		nil, nil, 0, nil, "public",
		"unsent", 0, nil, nil,
		now, now,
	)
}

func TestBeginNotificationGuard(t *testing.T) {
	sys, mock := newTestSystem(t)

	// Winning transition: one row moves unsent|failed -> sending.
	mock.ExpectExec("UPDATE certificates SET").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := sys.BeginNotification(context.Background(), 1); err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	// Losing transition: the guard matches no rows.
	mock.ExpectExec("UPDATE certificates SET").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := sys.BeginNotification(context.Background(), 1)
	if !errors.Is(err, certificates.ErrStateConflict) {
		t.Fatalf("error: got %v, want ErrStateConflict", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet db expectations: %v", err)
	}
}

func TestFinishNotificationRejectsNonTerminalOutcome(t *testing.T) {
	sys, _ := newTestSystem(t)

	err := sys.FinishNotification(context.Background(), 1, certificates.NotificationSending)
	if !errors.Is(err, certificates.ErrStateConflict) {
		t.Fatalf("error: got %v, want ErrStateConflict", err)
	}
}

func TestMarkRenderedGuardConflict(t *testing.T) {
	sys, mock := newTestSystem(t)

	// Conditional update matches no rows because the certificate is already
	// rendered; the follow-up lookup finds it, so this is a state conflict,
	// not a missing record.
	mock.ExpectQuery("UPDATE certificates SET").
		WillReturnRows(sqlmock.NewRows(certColumns()))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(certRow(1, certificates.Rendered))

	_, err := sys.MarkRendered(context.Background(), 1, certificates.RenderedArtifact{
		Locale:      "en-US",
		StorageKey:  "artifacts/abc",
		ContentHash: "abc",
		PageCount:   1,
	})
	if !errors.Is(err, certificates.ErrStateConflict) {
		t.Fatalf("error: got %v, want ErrStateConflict", err)
	}
}

func TestMarkRenderedMissingCertificate(t *testing.T) {
	sys, mock := newTestSystem(t)

	mock.ExpectQuery("UPDATE certificates SET").
		WillReturnRows(sqlmock.NewRows(certColumns()))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(certColumns()))

	_, err := sys.MarkRendered(context.Background(), 42, certificates.RenderedArtifact{
		Locale:      "en-US",
		StorageKey:  "artifacts/abc",
		ContentHash: "abc",
		PageCount:   1,
	})
	if !errors.Is(err, certificates.ErrNotFound) {
		t.Fatalf("error: got %v, want ErrNotFound", err)
	}
}

func TestPreviewRequiresRenderedArtifact(t *testing.T) {
	sys, _ := newTestSystem(t)

	cert := &certificates.Certificate{
		ID:          1,
		RenderState: certificates.RenderPending,
	}

	_, err := sys.Preview(context.Background(), cert)
	if !errors.Is(err, certificates.ErrNotRendered) {
		t.Fatalf("error: got %v, want ErrNotRendered", err)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: certificates.ErrNotFound, want: http.StatusNotFound},
		{name: "not rendered", err: certificates.ErrNotRendered, want: http.StatusNotFound},
		{name: "duplicate", err: certificates.ErrDuplicate, want: http.StatusConflict},
		{name: "state conflict", err: certificates.ErrStateConflict, want: http.StatusConflict},
		{name: "invalid id", err: certificates.ErrInvalidID, want: http.StatusBadRequest},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := certificates.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("status: got %d, want %d", got, tt.want)
			}
		})
	}
}
