// ABOUTME: Image storage for advice entries with local and S3 drivers.
// ABOUTME: Callers hand over a reader and filename and keep only the returned reference.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/oklog/ulid/v2"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidImage is returned for filenames without an allowed extension.
var ErrInvalidImage = errors.New("image type not allowed")

// AllowedExtensions are the accepted image file extensions.
var AllowedExtensions = []string{"png", "jpg", "jpeg", "gif"}

// ImageStore persists advice images and resolves their references.
type ImageStore interface {
	// Save stores r under a reference derived from filename.
	Save(ctx context.Context, r io.Reader, filename string) (ref string, err error)
	// Delete removes ref. Deleting a missing ref is not an error.
	Delete(ctx context.Context, ref string) error
	// URL returns where ref can be fetched.
	URL(ref string) string
}

// Config selects and configures a driver.
type Config struct {
	Driver string // local, s3

	// Local storage
	Dir string

	// S3 or any S3-compatible endpoint
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

// New creates an ImageStore from cfg.
func New(ctx context.Context, cfg Config) (ImageStore, error) {
	switch cfg.Driver {
	case "local", "":
		if cfg.Dir == "" {
			return nil, errors.New("local image directory is required")
		}
		return NewLocal(cfg.Dir), nil
	case "s3":
		s, err := NewS3(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported image storage driver: %s", cfg.Driver)
	}
}

// AllowedImage reports whether filename has an allowed image extension.
func AllowedImage(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// SanitizeFilename reduces name to a safe ASCII basename: accents are
// stripped, whitespace becomes underscores, and anything outside
// [A-Za-z0-9._-] is dropped.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		switch {
		case r > unicode.MaxASCII:
			continue
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._")
}

// NewRef builds a unique storage reference for filename.
func NewRef(filename string) (string, error) {
	if !AllowedImage(filename) {
		return "", fmt.Errorf("%s: %w", filename, ErrInvalidImage)
	}
	clean := SanitizeFilename(filename)
	if clean == "" || !AllowedImage(clean) {
		return "", fmt.Errorf("%s: %w", filename, ErrInvalidImage)
	}
	return strings.ToLower(ulid.Make().String()) + "_" + clean, nil
}

func contentType(ref string) string {
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	}
	return "application/octet-stream"
}
