package annotations

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCollect_ParsesLabelFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "labels", "img1.txt"), "0 0.5 0.5 0.2 0.2\n1 0.3 0.3 0.1 0.1\n")
	writeFile(t, filepath.Join(root, "labels", "img2.txt"), "0 0.1 0.1 0.05 0.05\n")

	c := NewCollector(zap.NewNop())
	got, err := c.Collect(root, []string{"car", "truck"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got["img1"], 2)
	assert.Equal(t, "truck", got["img1"][1].ClassName)
	assert.Len(t, got["img2"], 1)
}

func TestCollect_SkipsMalformedLines(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "labels", "img.txt"),
		"0 0.5 0.5 0.2 0.2\nnot an annotation\n9 0.5 0.5 0.2 0.2\n1 0.4 0.4 0.1 0.1\n")

	c := NewCollector(zap.NewNop())
	got, err := c.Collect(root, []string{"car", "truck"})
	require.NoError(t, err)
	assert.Len(t, got["img"], 2)
}

func TestCollect_EmptyFileStillCounts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "train", "labels", "background.txt"), "")

	c := NewCollector(zap.NewNop())
	got, err := c.Collect(root, []string{"car"})
	require.NoError(t, err)
	require.Contains(t, got, "background")
	assert.Empty(t, got["background"])
}

func TestCollect_LastWriteWinsAcrossDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "labels", "img.txt"), "0 0.5 0.5 0.2 0.2\n")
	writeFile(t, filepath.Join(root, "train", "labels", "img.txt"), "1 0.5 0.5 0.2 0.2\n")

	c := NewCollector(zap.NewNop())
	got, err := c.Collect(root, []string{"car", "truck"})
	require.NoError(t, err)
	require.Len(t, got["img"], 1)
	assert.Equal(t, "truck", got["img"][0].ClassName)
}

func TestCollect_NoLabelFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "labels"), 0o755))

	c := NewCollector(zap.NewNop())
	_, err := c.Collect(root, []string{"car"})
	require.Error(t, err)
	var valErr *ValidationError
	assert.True(t, errors.As(err, &valErr))
}

func TestCollect_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "labels", "img.txt"), "0 0.5 0.5 0.2 0.2\n")

	c := NewCollector(zap.NewNop())
	first, err := c.Collect(root, []string{"car"})
	require.NoError(t, err)
	second, err := c.Collect(root, []string{"car"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
