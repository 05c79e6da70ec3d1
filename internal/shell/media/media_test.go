package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aceconsult/cmsapi/internal/core/variant"
)

// =============================================================================
// Test Helpers
// =============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func fileHeader(t *testing.T, name, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

type fixture struct {
	uploads   *Uploads
	processor *Processor
	cleaner   *Cleaner
	root      string
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "uploads")

	uploads, err := NewUploads(filepath.Join(dir, "staging"), 1<<20)
	require.NoError(t, err)
	processor, err := NewProcessor(root, testLogger())
	require.NoError(t, err)

	return &fixture{
		uploads:   uploads,
		processor: processor,
		cleaner:   NewCleaner(root, testLogger()),
		root:      root,
	}
}

func (f *fixture) stage(t *testing.T, name, contentType string, data []byte) *Upload {
	t.Helper()
	up, err := f.uploads.Accept(fileHeader(t, name, contentType, data))
	require.NoError(t, err)
	return up
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	img, err := imaging.Open(path)
	require.NoError(t, err)
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

// =============================================================================
// Upload Tests
// =============================================================================

func TestAccept_StagesFile(t *testing.T) {
	f := setupFixture(t)
	data := jpegBytes(t, 10, 10)

	up := f.stage(t, "Photo.JPG", "image/jpeg", data)

	assert.Equal(t, "Photo.JPG", up.OriginalName)
	assert.Equal(t, "image/jpeg", up.ContentType)
	assert.Equal(t, int64(len(data)), up.Size)
	assert.Equal(t, ".jpg", filepath.Ext(up.Path))
	assert.Equal(t, f.uploads.StagingDir(), filepath.Dir(up.Path))

	stored, err := os.ReadFile(up.Path)
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestAccept_SniffsMissingContentType(t *testing.T) {
	f := setupFixture(t)
	up := f.stage(t, "logo.png", "application/octet-stream", pngBytes(t, 4, 4))
	assert.Equal(t, "image/png", up.ContentType)
}

func TestAccept_Rejections(t *testing.T) {
	f := setupFixture(t)

	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
	}{
		{"disallowed extension", "doc.pdf", "application/pdf", []byte("%PDF-1.4")},
		{"svg", "icon.svg", "image/svg+xml", []byte("<svg/>")},
		{"not an image", "fake.jpg", "text/plain", []byte("hello world")},
		{"too large", "big.jpg", "image/jpeg", make([]byte, 2<<20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uploads.Accept(fileHeader(t, tt.filename, tt.contentType, tt.data))
			require.Error(t, err)
			assert.True(t, IsRejected(err))
		})
	}
	assert.Empty(t, listDir(t, f.uploads.StagingDir()))
}

// =============================================================================
// Processor Tests
// =============================================================================

func TestProcess_GalleryVariants(t *testing.T) {
	f := setupFixture(t)
	up := f.stage(t, "site.jpg", "image/jpeg", jpegBytes(t, 2400, 1600))
	base := variant.BaseName(up.Path)

	res, err := f.processor.Process(context.Background(), up, variant.Gallery)
	require.NoError(t, err)
	assert.False(t, res.Fallback)

	assert.Equal(t, "/uploads/"+base+"_opt.jpg", res.Original())
	assert.Equal(t, "/uploads/"+base+"_thumb.jpg", res.Variants[variant.KeyThumbnail])
	assert.Equal(t, "/uploads/"+base+"_medium.jpg", res.Variants["medium"])
	assert.Len(t, res.Paths(), 4)

	w, h := decodeSize(t, filepath.Join(f.root, base+"_thumb.jpg"))
	assert.Equal(t, 400, w)
	assert.Equal(t, 400, h)

	w, h = decodeSize(t, filepath.Join(f.root, base+"_large.jpg"))
	assert.LessOrEqual(t, w, 1600)
	assert.LessOrEqual(t, h, 1200)

	w, _ = decodeSize(t, filepath.Join(f.root, base+"_opt.jpg"))
	assert.Equal(t, 2048, w)

	info, err := os.Stat(filepath.Join(f.root, base+"_opt.jpg"))
	require.NoError(t, err)
	size, err := f.processor.StoredSize(res.Original())
	require.NoError(t, err)
	assert.Equal(t, info.Size(), size)

	_, err = f.processor.StoredSize("https://example.com/x.jpg")
	assert.Error(t, err)

	_, err = os.Stat(up.Path)
	assert.True(t, os.IsNotExist(err), "staged source is removed")
}

func TestProcess_FitDoesNotUpscale(t *testing.T) {
	f := setupFixture(t)
	up := f.stage(t, "small.png", "image/png", pngBytes(t, 300, 200))
	base := variant.BaseName(up.Path)

	_, err := f.processor.Process(context.Background(), up, variant.Gallery)
	require.NoError(t, err)

	w, h := decodeSize(t, filepath.Join(f.root, base+"_medium.jpg"))
	assert.Equal(t, 300, w)
	assert.Equal(t, 200, h)
}

func TestProcess_PortraitAliases(t *testing.T) {
	f := setupFixture(t)
	up := f.stage(t, "me.jpg", "image/jpeg", jpegBytes(t, 600, 900))
	base := variant.BaseName(up.Path)

	res, err := f.processor.Process(context.Background(), up, variant.Portrait)
	require.NoError(t, err)

	want := "/uploads/" + base + "_team.jpg"
	assert.Equal(t, want, res.Variants["team"])
	assert.Equal(t, want, res.Original())
	assert.Equal(t, want, res.Variants[variant.KeyThumbnail])
	assert.Equal(t, []string{base + "_team.jpg"}, listDir(t, f.root))
}

func TestProcess_CorruptFileFallsBack(t *testing.T) {
	f := setupFixture(t)
	up := f.stage(t, "broken.jpg", "image/jpeg", []byte("definitely not a jpeg"))
	name := filepath.Base(up.Path)

	res, err := f.processor.Process(context.Background(), up, variant.Gallery)
	require.NoError(t, err)
	assert.True(t, res.Fallback)

	for key, path := range res.Variants {
		assert.Equal(t, "/uploads/"+name, path, key)
	}
	assert.Equal(t, []string{name}, listDir(t, f.root))
	assert.Empty(t, listDir(t, f.uploads.StagingDir()))
}

func TestProcess_VariantFailureRemovesPartialOutput(t *testing.T) {
	f := setupFixture(t)
	up := f.stage(t, "photo.jpg", "image/jpeg", jpegBytes(t, 100, 100))
	name := filepath.Base(up.Path)

	policy := variant.Policy{
		Name: "broken",
		Specs: []variant.Spec{
			{Name: "ok", Suffix: "medium", Width: 50, Height: 50, Mode: variant.Fit, Ext: "jpg", Quality: 85},
			{Name: "bad", Suffix: "large", Width: 50, Height: 50, Mode: variant.Fit, Ext: "unknownformat", Quality: 85},
		},
		Aliases: map[string]string{variant.KeyOriginal: "ok", variant.KeyThumbnail: "ok"},
	}

	res, err := f.processor.Process(context.Background(), up, policy)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, "/uploads/"+name, res.Original())
	assert.Equal(t, []string{name}, listDir(t, f.root))
}

func TestProcess_FallbackRenameFails(t *testing.T) {
	f := setupFixture(t)
	up := &Upload{OriginalName: "gone.jpg", Path: filepath.Join(f.uploads.StagingDir(), "missing.jpg")}

	_, err := f.processor.Process(context.Background(), up, variant.Gallery)
	var pe *ProcessingError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "gone.jpg", pe.Source)
	assert.Equal(t, up.Path, pe.Kept)
}

func TestProcess_UnstorableSourceIsKeptForRecovery(t *testing.T) {
	f := setupFixture(t)
	up := f.stage(t, "site.jpg", "image/jpeg", jpegBytes(t, 64, 64))
	require.NoError(t, os.RemoveAll(f.root))

	_, err := f.processor.Process(context.Background(), up, variant.Gallery)
	var pe *ProcessingError
	require.ErrorAs(t, err, &pe)

	staging := f.uploads.StagingDir()
	assert.Equal(t, filepath.Join(staging, FailedDir, filepath.Base(up.Path)), pe.Kept)
	assert.FileExists(t, pe.Kept)
	assert.Equal(t, []string{FailedDir}, listDir(t, staging))
}

// =============================================================================
// Cleaner Tests
// =============================================================================

func TestCleanup_RemovesAllSiblings(t *testing.T) {
	f := setupFixture(t)
	up := f.stage(t, "site.jpg", "image/jpeg", jpegBytes(t, 500, 500))

	res, err := f.processor.Process(context.Background(), up, variant.Gallery)
	require.NoError(t, err)

	unrelated := filepath.Join(f.root, "other_thumb.jpg")
	require.NoError(t, os.WriteFile(unrelated, []byte("x"), 0o644))

	f.cleaner.Cleanup(context.Background(), res.Original())

	assert.Equal(t, []string{"other_thumb.jpg"}, listDir(t, f.root))
}

func TestCleanup_LegacyVariants(t *testing.T) {
	f := setupFixture(t)
	for _, name := range []string{"abc_original.webp", "abc_thumb.png", "abc.jpeg", "abc_opt.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(f.root, name), []byte("x"), 0o644))
	}

	f.cleaner.Cleanup(context.Background(), "/uploads/abc_opt.jpg")

	assert.Empty(t, listDir(t, f.root))
}

func TestCleanup_IgnoresForeignAndEmptyRefs(t *testing.T) {
	f := setupFixture(t)
	keep := filepath.Join(f.root, "keep.jpg")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0o644))

	f.cleaner.Cleanup(context.Background(), "")
	f.cleaner.Cleanup(context.Background(), "https://cdn.example.com/keep.jpg")
	f.cleaner.Cleanup(context.Background(), "/uploads/../keep-missing.jpg")
	f.cleaner.CleanupAll(context.Background(), []string{"/uploads/nothing_here.jpg"})

	_, err := os.Stat(keep)
	assert.NoError(t, err)
}
