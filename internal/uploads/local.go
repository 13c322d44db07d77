// ABOUTME: Local filesystem image store.
// ABOUTME: Files live flat in one directory, named by their reference.
package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local stores images in a directory.
type Local struct {
	dir string
}

// NewLocal creates a Local store rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{dir: dir}
}

// Save copies r into the store.
func (s *Local) Save(_ context.Context, r io.Reader, filename string) (string, error) {
	ref, err := NewRef(filename)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}

	out, err := os.OpenFile(s.path(ref), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		_ = os.Remove(s.path(ref))
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close image file: %w", err)
	}
	return ref, nil
}

// Delete removes ref from the store.
func (s *Local) Delete(_ context.Context, ref string) error {
	if err := os.Remove(s.path(ref)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete image file: %w", err)
	}
	return nil
}

// URL returns the file path of ref.
func (s *Local) URL(ref string) string {
	return s.path(ref)
}

func (s *Local) path(ref string) string {
	return filepath.Join(s.dir, filepath.Base(ref))
}
