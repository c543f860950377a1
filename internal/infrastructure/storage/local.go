// Package storage holds the blob store implementations for report images.
package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// LocalStore writes blobs under a root directory as
// <category>/<uuid><ext>. The returned path is that relative path.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage directory is not configured")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Store(ctx context.Context, data []byte, category, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.ContainsAny(category, `/\`) || category == "" || category == "." || category == ".." {
		return "", fmt.Errorf("invalid storage category %q", category)
	}

	dir := filepath.Join(s.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create category directory: %w", err)
	}

	name := uuid.NewString() + extensionFor(data, filename)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	return path.Join(category, name), nil
}

func (s *LocalStore) Delete(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// Open returns the absolute file path for serving p.
func (s *LocalStore) Open(p string) (string, error) {
	return s.resolve(p)
}

func (s *LocalStore) resolve(p string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(p))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid blob path %q", p)
	}
	return filepath.Join(s.root, clean), nil
}

// extensionFor prefers the sniffed type over the client-supplied name.
func extensionFor(data []byte, filename string) string {
	if ext := mimetype.Detect(data).Extension(); ext != "" {
		return ext
	}
	return strings.ToLower(filepath.Ext(filename))
}
