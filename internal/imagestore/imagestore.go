// Package imagestore validates, stores and thumbnails plan images on the
// local filesystem and resolves stored paths to public URLs.
package imagestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/pkordes/vereda-tours/internal/domain"
)

// ThumbWidth is the width of generated thumbnails; height keeps the aspect ratio.
const ThumbWidth = 300

// PublicPrefix is the URL path under which UPLOAD_DIR is served.
const PublicPrefix = "/uploads"

const planDir = "plans"

// Store writes images below root and builds URLs from baseURL.
type Store struct {
	root    string
	baseURL string
}

// New creates root/plans if needed and returns a Store.
func New(root, baseURL string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, planDir), 0o755); err != nil {
		return nil, fmt.Errorf("imagestore.New: %w", err)
	}
	return &Store{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the directory served under PublicPrefix.
func (s *Store) Root() string { return s.root }

// sniff returns the file extension for a JPEG or PNG payload.
func sniff(data []byte) (string, imaging.Format, error) {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return "jpg", imaging.JPEG, nil
	case "image/png":
		return "png", imaging.PNG, nil
	}
	return "", 0, fmt.Errorf("%w: images must be JPEG or PNG", domain.ErrValidation)
}

// Save stores data as a new plan image with a thumbnail next to it and
// returns the public path, e.g. /uploads/plans/<id>.jpg.
func (s *Store) Save(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext, format, err := sniff(data)
	if err != nil {
		return "", fmt.Errorf("imagestore.Save: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("imagestore.Save: %w: image could not be decoded", domain.ErrValidation)
	}

	name := uuid.NewString() + "." + ext
	original := filepath.Join(s.root, planDir, name)
	if err := os.WriteFile(original, data, 0o644); err != nil {
		return "", fmt.Errorf("imagestore.Save: write original: %w", err)
	}
	if err := s.writeThumb(img, filepath.Join(s.root, planDir, thumbName(name)), format); err != nil {
		_ = os.Remove(original)
		return "", fmt.Errorf("imagestore.Save: %w", err)
	}
	return path.Join(PublicPrefix, planDir, name), nil
}

func (s *Store) writeThumb(img image.Image, dst string, format imaging.Format) error {
	thumb := img
	if img.Bounds().Dx() > ThumbWidth {
		thumb = imaging.Resize(img, ThumbWidth, 0, imaging.Lanczos)
	}
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create thumbnail: %w", err)
	}
	if err := encodeAndClose(f, thumb, format); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}

// encodeAndClose writes img to w and closes it. A failed close means the
// data may not have reached the disk and is reported like an encode error.
func encodeAndClose(w io.WriteCloser, img image.Image, format imaging.Format) error {
	if err := imaging.Encode(w, img, format); err != nil {
		_ = w.Close()
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close thumbnail: %w", err)
	}
	return nil
}

// Remove deletes a stored image and its thumbnail. Paths this store did not
// produce and files already gone are ignored.
func (s *Store) Remove(_ context.Context, public string) error {
	prefix := path.Join(PublicPrefix, planDir) + "/"
	if !strings.HasPrefix(public, prefix) {
		return nil
	}
	name := path.Base(public)
	for _, n := range []string{name, thumbName(name)} {
		if err := os.Remove(filepath.Join(s.root, planDir, n)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("imagestore.Remove: %w", err)
		}
	}
	return nil
}

// URL resolves a stored path against the base URL. Absolute URLs pass through.
func (s *Store) URL(stored string) string {
	if stored == "" || strings.HasPrefix(stored, "http://") || strings.HasPrefix(stored, "https://") {
		return stored
	}
	if !strings.HasPrefix(stored, "/") {
		stored = "/" + stored
	}
	return s.baseURL + stored
}

// ThumbURL is URL for the thumbnail of stored.
func (s *Store) ThumbURL(stored string) string {
	if !strings.HasPrefix(stored, PublicPrefix+"/") {
		return s.URL(stored)
	}
	dir, name := path.Split(stored)
	return s.URL(dir + thumbName(name))
}

func thumbName(name string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "_thumb" + ext
}
