// Package assets moves binary files (cover images, sheet music, audio) in
// and out of the two asset stores: a category-scoped directory tree on the
// local disk, and an S3-compatible bucket on the remote side.
package assets

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/clara/maestro/internal/util"
)

// LocalStore persists assets as files under category-scoped directories,
// keyed by an asset id. Base64 is the transport encoding: callers that move
// an asset between stores read and write the base64 form.
type LocalStore struct {
	fs    afero.Fs
	root  string
	retry *util.RetryConfig
}

// NewLocalStore creates a store rooted at the given directory on the OS
// filesystem.
func NewLocalStore(root string) *LocalStore {
	return NewLocalStoreWithFs(afero.NewOsFs(), root)
}

// NewLocalStoreWithFs creates a store on an arbitrary filesystem. Tests use
// an in-memory fs.
func NewLocalStoreWithFs(fsys afero.Fs, root string) *LocalStore {
	return &LocalStore{
		fs:    fsys,
		root:  root,
		retry: util.DefaultRetryConfig(),
	}
}

// Root returns the store's root directory.
func (s *LocalStore) Root() string {
	return s.root
}

// Write stores raw bytes under root/category/assetID.ext and returns the
// resulting path, which is the asset reference recorded on the owning entity.
func (s *LocalStore) Write(data []byte, category Category, assetID, ext string) (string, error) {
	if assetID == "" {
		return "", fmt.Errorf("asset id cannot be empty")
	}

	if err := s.ensureCategoryDir(category); err != nil {
		return "", err
	}

	path := filepath.Join(s.root, string(category), assetID+normalizeExt(ext))

	err := util.Retry(s.retry, func() error {
		return afero.WriteFile(s.fs, path, data, 0644)
	}, "write asset")
	if err != nil {
		return "", fmt.Errorf("failed to write asset %s: %w", path, err)
	}

	return path, nil
}

// WriteBase64 decodes a base64 payload and stores it like Write.
func (s *LocalStore) WriteBase64(encoded string, category Category, assetID, ext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 asset: %w", err)
	}
	return s.Write(data, category, assetID, ext)
}

// Read returns the raw bytes of a stored asset.
func (s *LocalStore) Read(path string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("asset %s: %w", path, util.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read asset %s: %w", path, err)
	}
	return data, nil
}

// ReadBase64 returns the base64 transport encoding of a stored asset.
func (s *LocalStore) ReadBase64(path string) (string, error) {
	data, err := s.Read(path)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Delete removes a stored asset. Deleting a missing asset is not an error.
func (s *LocalStore) Delete(path string) error {
	err := s.fs.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete asset %s: %w", path, err)
	}
	return nil
}

// ResolveForDisplay converts a stored path into a URI a viewer can open.
func (s *LocalStore) ResolveForDisplay(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}

// ensureCategoryDir creates the category directory if missing. Already-exists
// is fine; any other error propagates.
func (s *LocalStore) ensureCategoryDir(category Category) error {
	dir := filepath.Join(s.root, string(category))
	if err := s.fs.MkdirAll(dir, 0755); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("failed to create asset directory %s: %w", dir, err)
	}
	return nil
}

func normalizeExt(ext string) string {
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}
