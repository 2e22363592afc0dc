package images

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/dataset-hub/internal/yolo"
)

type fakeStore struct {
	mu      sync.Mutex
	uploads map[string][]byte
	fail    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploads: make(map[string][]byte)}
}

func (f *fakeStore) Download(context.Context, string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStore) Upload(_ context.Context, data []byte, path string) (string, error) {
	if f.fail {
		return "", errors.New("upload failed")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[path] = data
	return "fake://" + path, nil
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestExtract_BuildsRecords(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "images", "img1.png"), 64, 48)
	writePNG(t, filepath.Join(root, "images", "img2.png"), 32, 32)

	box, err := yolo.NewBoundingBox(0.5, 0.5, 0.2, 0.2)
	require.NoError(t, err)
	anns := map[string][]yolo.Annotation{
		"img1": {{ClassID: 0, ClassName: "car", BBox: box}},
	}

	store := newFakeStore()
	ext := NewExtractor(store, zap.NewNop())
	records, err := ext.Extract(context.Background(), root, "job-1", anns)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byName := map[string]Record{}
	for _, r := range records {
		byName[r.Filename] = r
	}

	img1 := byName["img1.png"]
	assert.Equal(t, 64, img1.Width)
	assert.Equal(t, 48, img1.Height)
	assert.Equal(t, 1, img1.AnnotationCount)
	assert.Equal(t, "fake://datasets/job-1/images/img1.png", img1.StorageURL)
	assert.Greater(t, img1.FileSizeBytes, int64(0))

	img2 := byName["img2.png"]
	assert.Equal(t, 0, img2.AnnotationCount)
	assert.NotNil(t, img2.Annotations)

	assert.Len(t, store.uploads, 2)
}

func TestExtract_SkipsUndecodableFile(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "images", "good.png"), 10, 10)
	require.NoError(t, os.WriteFile(filepath.Join(root, "images", "bad.jpg"), []byte("not an image"), 0o644))

	ext := NewExtractor(newFakeStore(), zap.NewNop())
	records, err := ext.Extract(context.Background(), root, "job-1", nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "good.png", records[0].Filename)
}

func TestExtract_SkipsOnUploadFailure(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "images", "img.png"), 10, 10)

	store := newFakeStore()
	store.fail = true
	ext := NewExtractor(store, zap.NewNop())
	records, err := ext.Extract(context.Background(), root, "job-1", nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExtract_NoImages(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "images"), 0o755))

	ext := NewExtractor(newFakeStore(), zap.NewNop())
	_, err := ext.Extract(context.Background(), root, "job-1", nil)
	require.Error(t, err)
	var valErr *ValidationError
	assert.True(t, errors.As(err, &valErr))
}

func TestExtract_IgnoresNonImageExtensions(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "images", "img.png"), 10, 10)
	require.NoError(t, os.WriteFile(filepath.Join(root, "images", "notes.txt"), []byte("x"), 0o644))

	ext := NewExtractor(newFakeStore(), zap.NewNop())
	records, err := ext.Extract(context.Background(), root, "job-1", nil)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
