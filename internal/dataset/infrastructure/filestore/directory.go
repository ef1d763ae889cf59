package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Directory writes artifacts into a local directory.
type Directory struct {
	root string
}

// NewDirectory creates root if needed.
func NewDirectory(root string) (*Directory, error) {
	if root == "" {
		return nil, errors.New("filestore: empty root")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create root: %w", err)
	}
	return &Directory{root: root}, nil
}

// Put writes body to root/name through a temp file and returns the final path.
func (d *Directory) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	_ = contentType
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target := filepath.Join(d.root, filepath.Clean("/"+name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("filestore: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".partial-*")
	if err != nil {
		return "", fmt.Errorf("filestore: create temp: %w", err)
	}
	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("filestore: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("filestore: close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("filestore: rename %s: %w", name, err)
	}
	return target, nil
}
