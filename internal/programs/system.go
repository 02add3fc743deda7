package programs

import (
	"context"

	"github.com/google/uuid"

	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/storage"
)

// System defines the public contract for program domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	Find(ctx context.Context, id int64) (*Program, error)
	FindByUUID(ctx context.Context, id uuid.UUID) (*Program, error)

	// Logo streams the program's logo with its stored content type.
	// Returns ErrNoLogo when none has been uploaded.
	Logo(ctx context.Context, id uuid.UUID) (*storage.DownloadResult, error)
	// UploadLogo stores logo bytes content-addressed and points the
	// program at the new key. Previous logo blobs are left in place since
	// templates may still reference them.
	UploadLogo(ctx context.Context, id uuid.UUID, data []byte, contentType string) (*Program, error)
}
