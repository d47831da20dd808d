// Package filesystem provides a file-backed blob store rooted under the
// data directory.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore stores document bytes as files under <dataDir>/blobs.
// Storage keys may contain slashes and map onto subdirectories.
type BlobStore struct {
	root string
}

// NewBlobStore creates a blob store rooted at <dataDir>/blobs.
// If dataDir is empty, defaults to ~/.planroom/data.
func NewBlobStore(dataDir string) (*BlobStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".planroom", "data")
	}

	root := filepath.Join(dataDir, "blobs")
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}

	return &BlobStore{root: root}, nil
}

// Put stores raw bytes under the key, replacing any existing blob.
// The write goes through a temp file in the same directory and a
// rename, so a reader never sees a partially written blob.
func (s *BlobStore) Put(_ context.Context, key string, data []byte) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create blob directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".put-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()           //nolint:errcheck
		os.Remove(tmp.Name()) //nolint:errcheck
		return fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return fmt.Errorf("close blob: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return fmt.Errorf("rename blob into place: %w", err)
	}

	return nil
}

// Get retrieves the bytes for a key.
func (s *BlobStore) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}

	return data, nil
}

// Delete removes the blob for a key. Missing keys are ignored.
func (s *BlobStore) Delete(_ context.Context, key string) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}

	return nil
}

// pathFor resolves a storage key to a path under the blob root.
// Keys that would escape the root are rejected.
func (s *BlobStore) pathFor(key string) (string, error) {
	if key == "" {
		return "", domain.ErrInvalidInput
	}

	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("%w: storage key escapes blob root: %s", domain.ErrInvalidInput, key)
	}

	return filepath.Join(s.root, clean), nil
}
