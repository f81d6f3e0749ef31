package imagestore_test

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/imagestore"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

func newStore(t *testing.T) (*imagestore.Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := imagestore.New(dir, "http://cdn.test/")
	require.NoError(t, err)
	return s, dir
}

func TestStore_Save_PNGWithThumbnail(t *testing.T) {
	s, dir := newStore(t)

	stored, err := s.Save(context.Background(), pngBytes(t, 900, 600))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored, "/uploads/plans/"))
	assert.True(t, strings.HasSuffix(stored, ".png"))

	name := filepath.Base(stored)
	_, err = os.Stat(filepath.Join(dir, "plans", name))
	require.NoError(t, err)

	thumb, err := imaging.Open(filepath.Join(dir, "plans", strings.TrimSuffix(name, ".png")+"_thumb.png"))
	require.NoError(t, err)
	assert.Equal(t, imagestore.ThumbWidth, thumb.Bounds().Dx())
	assert.Equal(t, 200, thumb.Bounds().Dy())
}

func TestStore_Save_JPEG(t *testing.T) {
	s, _ := newStore(t)

	stored, err := s.Save(context.Background(), jpegBytes(t, 120, 80))

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stored, ".jpg"))
}

func TestStore_Save_RejectsOtherFormats(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.Save(context.Background(), []byte("GIF89a not really an image"))

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStore_Save_RejectsCorruptPNG(t *testing.T) {
	s, _ := newStore(t)
	data := pngBytes(t, 10, 10)[:40]

	_, err := s.Save(context.Background(), data)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStore_Remove(t *testing.T) {
	s, dir := newStore(t)
	stored, err := s.Save(context.Background(), pngBytes(t, 50, 50))
	require.NoError(t, err)

	require.NoError(t, s.Remove(context.Background(), stored))

	entries, err := os.ReadDir(filepath.Join(dir, "plans"))
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, s.Remove(context.Background(), stored), "second remove is a no-op")
	assert.NoError(t, s.Remove(context.Background(), "https://elsewhere/x.png"))
}

func TestStore_URL(t *testing.T) {
	s, _ := newStore(t)

	assert.Equal(t, "http://cdn.test/uploads/plans/a.jpg", s.URL("/uploads/plans/a.jpg"))
	assert.Equal(t, "http://cdn.test/uploads/plans/a.jpg", s.URL("uploads/plans/a.jpg"))
	assert.Equal(t, "https://img.example/a.jpg", s.URL("https://img.example/a.jpg"))
	assert.Equal(t, "http://cdn.test/uploads/plans/a_thumb.jpg", s.ThumbURL("/uploads/plans/a.jpg"))
}
