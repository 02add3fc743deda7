package preview_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/preview"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/templates"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/lifecycle"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/storage"
)

// memoryStore is an in-memory storage.System for exercising the preview
// cache without a blob service.
type memoryStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	uploads int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{blobs: map[string][]byte{}}
}

func (s *memoryStore) Start(lc *lifecycle.Coordinator) error { return nil }

func (s *memoryStore) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	s.uploads++
	return nil
}

func (s *memoryStore) PutContent(ctx context.Context, prefix string, data []byte, contentType string) (string, string, error) {
	hash := storage.ContentHash(data)
	key := storage.ContentKey(prefix, hash)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return key, hash, nil
}

func (s *memoryStore) Download(ctx context.Context, key string) (*storage.DownloadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.DownloadResult{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentType:   "application/octet-stream",
		ContentLength: int64(len(data)),
	}, nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(s.blobs, key)
	return nil
}

func (s *memoryStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[key]
	return ok, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDocument() *templates.BoundDocument {
	return &templates.BoundDocument{
		Locale: "en-US",
		Page:   templates.PageSpec{Size: "A4", Orientation: "landscape"},
		Nodes: []templates.Node{
			templates.TextNode{Text: "Certificate of Completion", X: 148, Y: 60, Size: 18, Align: "center"},
			templates.TextNode{Text: "Ada Lovelace", X: 148, Y: 90, Size: 28, Align: "center"},
		},
	}
}

func TestRasterizeProducesPNG(t *testing.T) {
	g := preview.NewGenerator(newMemoryStore(), testLogger())

	data, err := g.Rasterize(context.Background(), testDocument())
	if err != nil {
		t.Fatalf("rasterize failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 800 {
		t.Errorf("width: got %d, want 800", img.Bounds().Dx())
	}
	// A4 landscape: height follows the 297x210 aspect ratio.
	wantHeightF := 210.0 * 800.0 / 297.0
	wantHeight := int(wantHeightF)
	if img.Bounds().Dy() != wantHeight {
		t.Errorf("height: got %d, want %d", img.Bounds().Dy(), wantHeight)
	}
}

func TestRasterizeDeterministic(t *testing.T) {
	g := preview.NewGenerator(newMemoryStore(), testLogger())

	a, err := g.Rasterize(context.Background(), testDocument())
	if err != nil {
		t.Fatalf("rasterize failed: %v", err)
	}
	b, err := g.Rasterize(context.Background(), testDocument())
	if err != nil {
		t.Fatalf("rasterize failed: %v", err)
	}

	if !bytes.Equal(a, b) {
		t.Error("previews differ for identical bound documents")
	}
}

func TestRasterizeUnsupportedPage(t *testing.T) {
	g := preview.NewGenerator(newMemoryStore(), testLogger())

	doc := testDocument()
	doc.Page.Size = "Tabloid"

	_, err := g.Rasterize(context.Background(), doc)
	if !errors.Is(err, preview.ErrUnsupportedPage) {
		t.Fatalf("error: got %v, want ErrUnsupportedPage", err)
	}
}

func TestRasterizeMissingAssetDegrades(t *testing.T) {
	g := preview.NewGenerator(newMemoryStore(), testLogger())

	doc := testDocument()
	doc.Nodes = append(doc.Nodes, templates.ImageRefNode{
		Asset: "program_logo", StorageKey: "logos/missing",
		X: 10, Y: 10, Width: 40, Height: 20,
	})

	data, err := g.Rasterize(context.Background(), doc)
	if err != nil {
		t.Fatalf("missing asset must not fail the preview: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty preview")
	}
}

func TestRasterizeDrawsStoredAsset(t *testing.T) {
	store := newMemoryStore()

	var logo bytes.Buffer
	if err := png.Encode(&logo, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatal(err)
	}
	if err := store.Upload(context.Background(), "logos/programs/x", bytes.NewReader(logo.Bytes()), "image/png"); err != nil {
		t.Fatal(err)
	}

	g := preview.NewGenerator(store, testLogger())

	doc := testDocument()
	doc.Nodes = append(doc.Nodes, templates.ImageRefNode{
		Asset: "program_logo", StorageKey: "logos/programs/x",
		X: 10, Y: 10, Width: 40, Height: 20,
	})

	if _, err := g.Rasterize(context.Background(), doc); err != nil {
		t.Fatalf("rasterize failed: %v", err)
	}
}

func TestEnsureCachesPerArtifactHash(t *testing.T) {
	store := newMemoryStore()
	g := preview.NewGenerator(store, testLogger())

	const hash = "abc123"

	first, err := g.Ensure(context.Background(), hash, testDocument())
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	uploadsAfterFirst := store.uploads

	second, err := g.Ensure(context.Background(), hash, testDocument())
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("cached preview differs from generated preview")
	}
	if store.uploads != uploadsAfterFirst {
		t.Errorf("second ensure re-rasterized: uploads went %d -> %d", uploadsAfterFirst, store.uploads)
	}
}

func TestCachedMissing(t *testing.T) {
	g := preview.NewGenerator(newMemoryStore(), testLogger())

	_, err := g.Cached(context.Background(), "nope")
	if !errors.Is(err, preview.ErrNotFound) {
		t.Fatalf("error: got %v, want ErrNotFound", err)
	}
}
