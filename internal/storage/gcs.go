package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore keeps blobs in a Google Cloud Storage bucket.
type GCSStore struct {
	client *gcs.Client
	bucket string
}

// NewGCSStore connects a client for the given bucket.
func NewGCSStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, &Error{Op: "init", URL: "gs://" + bucket, Message: "creating client", Cause: err}
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

// Download supports gs:// object URLs and http(s) URLs.
func (s *GCSStore) Download(ctx context.Context, rawURL string) ([]byte, error) {
	switch {
	case strings.HasPrefix(rawURL, "gs://"):
		return s.downloadObject(ctx, rawURL)
	case strings.HasPrefix(rawURL, "http://"), strings.HasPrefix(rawURL, "https://"):
		return httpGet(ctx, rawURL)
	default:
		return nil, &Error{Op: "download", URL: rawURL, Message: "unsupported scheme"}
	}
}

func (s *GCSStore) downloadObject(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{Op: "download", URL: rawURL, Message: "parsing url", Cause: err}
	}
	bucket := u.Host
	object := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || object == "" {
		return nil, &Error{Op: "download", URL: rawURL, Message: "missing bucket or object"}
	}

	reader, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, &Error{Op: "download", URL: rawURL, Message: "opening object", Cause: err}
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &Error{Op: "download", URL: rawURL, Message: "reading object", Cause: err}
	}
	return data, nil
}

// Upload writes data to the configured bucket and returns its gs:// URL.
func (s *GCSStore) Upload(ctx context.Context, data []byte, path string) (string, error) {
	w := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", &Error{Op: "upload", URL: path, Message: "writing object", Cause: err}
	}
	if err := w.Close(); err != nil {
		return "", &Error{Op: "upload", URL: path, Message: "finalizing object", Cause: err}
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, path), nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
