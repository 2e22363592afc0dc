package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps blobs under a base directory on the local filesystem.
// Uploaded blobs get file:// URLs so the rest of the system treats local and
// cloud storage uniformly.
type LocalStore struct {
	base string
}

// NewLocalStore creates the base directory if needed.
func NewLocalStore(base string) (*LocalStore, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, &Error{Op: "init", URL: base, Message: "resolving base directory", Cause: err}
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, &Error{Op: "init", URL: base, Message: "creating base directory", Cause: err}
	}
	return &LocalStore{base: abs}, nil
}

// Download supports file:// paths and http(s) URLs.
func (s *LocalStore) Download(ctx context.Context, url string) ([]byte, error) {
	switch {
	case strings.HasPrefix(url, "file://"):
		data, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
		if err != nil {
			return nil, &Error{Op: "download", URL: url, Message: "reading file", Cause: err}
		}
		return data, nil
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return httpGet(ctx, url)
	default:
		return nil, &Error{Op: "download", URL: url, Message: "unsupported scheme"}
	}
}

// Upload writes data under the base directory and returns its file:// URL.
func (s *LocalStore) Upload(_ context.Context, data []byte, path string) (string, error) {
	dest := filepath.Join(s.base, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", &Error{Op: "upload", URL: path, Message: "creating directory", Cause: err}
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", &Error{Op: "upload", URL: path, Message: "writing file", Cause: err}
	}
	return "file://" + dest, nil
}
