// Package storage abstracts blob download and upload over local filesystem
// and Google Cloud Storage backends.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Store moves raw bytes between the service and a blob backend.
type Store interface {
	// Download fetches the blob at url. Supported schemes depend on the
	// implementation; an unsupported scheme returns an *Error.
	Download(ctx context.Context, url string) ([]byte, error)
	// Upload writes data under the backend-relative path and returns the
	// canonical URL of the stored blob.
	Upload(ctx context.Context, data []byte, path string) (string, error)
}

// Error describes a failed blob operation.
type Error struct {
	Op      string
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage %s %s: %s: %v", e.Op, e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("storage %s %s: %s", e.Op, e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

var httpClient = &http.Client{Timeout: 2 * time.Minute}

// httpGet downloads an http(s) URL, shared by both store implementations.
func httpGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Op: "download", URL: url, Message: "building request", Cause: err}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &Error{Op: "download", URL: url, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Op: "download", URL: url, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: "download", URL: url, Message: "reading body", Cause: err}
	}
	return data, nil
}
