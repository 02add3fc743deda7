package storage_test

import (
	"testing"

	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/storage"
)

func TestContentHash(t *testing.T) {
	// SHA-256 of the empty input is a fixed, well-known value.
	const emptyHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	if got := storage.ContentHash(nil); got != emptyHash {
		t.Errorf("empty hash: got %s", got)
	}

	a := storage.ContentHash([]byte("certificate"))
	b := storage.ContentHash([]byte("certificate"))
	if a != b {
		t.Error("identical content must hash identically")
	}

	c := storage.ContentHash([]byte("certificate2"))
	if a == c {
		t.Error("different content must not collide")
	}
}

func TestContentKey(t *testing.T) {
	got := storage.ContentKey("artifacts", "abc123")
	if got != "artifacts/abc123" {
		t.Errorf("key: got %q", got)
	}
}
