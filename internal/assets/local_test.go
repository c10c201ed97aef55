package assets

import (
	"bytes"
	"encoding/base64"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/clara/maestro/internal/util"
)

func newMemStore() *LocalStore {
	return NewLocalStoreWithFs(afero.NewMemMapFs(), "assets")
}

func TestLocalStoreWriteRead(t *testing.T) {
	store := newMemStore()
	data := []byte("pdf bytes go here")

	path, err := store.Write(data, CategorySheet, "abc123", ".pdf")
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	want := filepath.Join("assets", "sheets", "abc123.pdf")
	if path != want {
		t.Errorf("Write() path = %q, want %q", path, want)
	}

	got, err := store.Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Read() = %q, want %q", got, data)
	}
}

func TestLocalStoreBase64RoundTrip(t *testing.T) {
	store := newMemStore()
	data := []byte{0x00, 0x01, 0xff, 0xfe, 0x42}
	encoded := base64.StdEncoding.EncodeToString(data)

	path, err := store.WriteBase64(encoded, CategoryRecording, "rec1", "mp3")
	if err != nil {
		t.Fatalf("WriteBase64() error: %v", err)
	}
	if !strings.HasSuffix(path, "rec1.mp3") {
		t.Errorf("WriteBase64() path = %q, want suffix rec1.mp3", path)
	}

	got, err := store.ReadBase64(path)
	if err != nil {
		t.Fatalf("ReadBase64() error: %v", err)
	}
	if got != encoded {
		t.Errorf("ReadBase64() = %q, want %q", got, encoded)
	}
}

func TestLocalStoreWriteBase64Invalid(t *testing.T) {
	store := newMemStore()

	if _, err := store.WriteBase64("not!!valid!!base64", CategorySheet, "x", ".pdf"); err == nil {
		t.Error("WriteBase64() with invalid payload should fail")
	}
}

func TestLocalStoreWriteEmptyID(t *testing.T) {
	store := newMemStore()

	if _, err := store.Write([]byte("data"), CategorySheet, "", ".pdf"); err == nil {
		t.Error("Write() with empty asset id should fail")
	}
}

func TestLocalStoreReadMissing(t *testing.T) {
	store := newMemStore()

	_, err := store.Read(filepath.Join("assets", "sheets", "nope.pdf"))
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("Read() missing asset error = %v, want ErrNotFound", err)
	}
}

func TestLocalStoreDeleteMissingOK(t *testing.T) {
	store := newMemStore()

	if err := store.Delete(filepath.Join("assets", "avatars", "gone.png")); err != nil {
		t.Errorf("Delete() missing asset error: %v", err)
	}
}

func TestLocalStoreDelete(t *testing.T) {
	store := newMemStore()

	path, err := store.Write([]byte("x"), CategoryAvatar, "a1", ".png")
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := store.Delete(path); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := store.Read(path); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("Read() after Delete() error = %v, want ErrNotFound", err)
	}
}

func TestLocalStoreCategoryDirIdempotent(t *testing.T) {
	store := newMemStore()

	// Two writes into the same category must not trip over the existing dir
	if _, err := store.Write([]byte("a"), CategorySheet, "one", ".pdf"); err != nil {
		t.Fatalf("first Write() error: %v", err)
	}
	if _, err := store.Write([]byte("b"), CategorySheet, "two", ".pdf"); err != nil {
		t.Fatalf("second Write() error: %v", err)
	}
}

func TestLocalStoreNormalizeExt(t *testing.T) {
	store := newMemStore()

	withDot, err := store.Write([]byte("a"), CategorySheet, "dot", ".pdf")
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	withoutDot, err := store.Write([]byte("a"), CategorySheet, "nodot", "pdf")
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	if !strings.HasSuffix(withDot, "dot.pdf") {
		t.Errorf("path = %q, want suffix dot.pdf", withDot)
	}
	if !strings.HasSuffix(withoutDot, "nodot.pdf") {
		t.Errorf("path = %q, want suffix nodot.pdf", withoutDot)
	}
}

func TestResolveForDisplay(t *testing.T) {
	store := newMemStore()

	if got := store.ResolveForDisplay(""); got != "" {
		t.Errorf("ResolveForDisplay(\"\") = %q, want empty", got)
	}

	got := store.ResolveForDisplay(filepath.Join("assets", "avatars", "a.png"))
	if !strings.HasPrefix(got, "file://") {
		t.Errorf("ResolveForDisplay() = %q, want file:// prefix", got)
	}
	if !strings.HasSuffix(got, "assets/avatars/a.png") {
		t.Errorf("ResolveForDisplay() = %q, want path suffix", got)
	}
}
