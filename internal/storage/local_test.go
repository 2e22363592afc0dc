package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_UploadDownloadRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	url, err := store.Upload(context.Background(), []byte("payload"), "datasets/abc/images/img.jpg")
	require.NoError(t, err)
	assert.True(t, len(url) > len("file://"))

	data, err := store.Download(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestLocalStore_DownloadFileURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte("names: [car]"), 0o644))

	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	data, err := store.Download(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, []byte("names: [car]"), data)
}

func TestLocalStore_DownloadHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "archive-bytes")
	}))
	defer srv.Close()

	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	data, err := store.Download(context.Background(), srv.URL+"/dataset.zip")
	require.NoError(t, err)
	assert.Equal(t, []byte("archive-bytes"), data)
}

func TestLocalStore_DownloadHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Download(context.Background(), srv.URL+"/missing.zip")
	require.Error(t, err)
	var storeErr *Error
	assert.True(t, errors.As(err, &storeErr))
}

func TestLocalStore_UnsupportedScheme(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Download(context.Background(), "gs://bucket/object")
	require.Error(t, err)
	var storeErr *Error
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "download", storeErr.Op)
}
