// Package images extracts metadata from dataset image files and uploads the
// originals to blob storage.
package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	// Decoders registered for image.DecodeConfig.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/jonathan/dataset-hub/internal/layout"
	"github.com/jonathan/dataset-hub/internal/storage"
	"github.com/jonathan/dataset-hub/internal/yolo"
)

const defaultConcurrency = 8

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
}

// Record is the per-image document persisted with a dataset.
type Record struct {
	Filename        string            `json:"filename"`
	Width           int               `json:"width"`
	Height          int               `json:"height"`
	FileSizeBytes   int64             `json:"file_size_bytes"`
	StorageURL      string            `json:"storage_url"`
	Annotations     []yolo.Annotation `json:"annotations"`
	AnnotationCount int               `json:"annotation_count"`
	ProcessedAt     time.Time         `json:"processed_at"`
}

// ValidationError reports that no image files were found anywhere in the
// dataset tree.
type ValidationError struct {
	Searched []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("no image files found (searched %d image directories)", len(e.Searched))
}

// Extractor reads image files, decodes their dimensions and ships the bytes
// to blob storage.
type Extractor struct {
	store       storage.Store
	log         *zap.Logger
	concurrency int
}

func NewExtractor(store storage.Store, log *zap.Logger) *Extractor {
	return &Extractor{store: store, log: log, concurrency: defaultConcurrency}
}

// Extract finds every image file under root's candidate image directories,
// decodes its dimensions, joins annotations by filename stem, uploads the raw
// bytes under datasets/<jobID>/ and returns one Record per usable image.
// Unreadable or undecodable files are logged and skipped.
func (e *Extractor) Extract(ctx context.Context, root, jobID string, anns map[string][]yolo.Annotation) ([]Record, error) {
	dirs := layout.CandidateDirs(root, "images")
	files := findImageFiles(dirs)
	if len(files) == 0 {
		return nil, &ValidationError{Searched: dirs}
	}

	var (
		mu      sync.Mutex
		records []Record
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, file := range files {
		g.Go(func() error {
			rec, ok := e.processOne(ctx, file, root, jobID, anns)
			if !ok {
				return nil
			}
			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.log.Info("processed images",
		zap.String("job_id", jobID),
		zap.Int("found", len(files)),
		zap.Int("stored", len(records)))
	return records, nil
}

// processOne returns ok=false when the file should be skipped.
func (e *Extractor) processOne(ctx context.Context, file, root, jobID string, anns map[string][]yolo.Annotation) (Record, bool) {
	data, err := os.ReadFile(file)
	if err != nil {
		e.log.Warn("skipping unreadable image", zap.String("path", file), zap.Error(err))
		return Record{}, false
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		e.log.Warn("skipping undecodable image", zap.String("path", file), zap.Error(err))
		return Record{}, false
	}

	name := filepath.Base(file)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	fileAnns := anns[stem]
	if fileAnns == nil {
		fileAnns = []yolo.Annotation{}
	}

	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = name
	}
	dest := path.Join("datasets", jobID, filepath.ToSlash(rel))

	url, err := e.store.Upload(ctx, data, dest)
	if err != nil {
		e.log.Warn("skipping image after upload failure", zap.String("path", file), zap.Error(err))
		return Record{}, false
	}

	return Record{
		Filename:        name,
		Width:           cfg.Width,
		Height:          cfg.Height,
		FileSizeBytes:   int64(len(data)),
		StorageURL:      url,
		Annotations:     fileAnns,
		AnnotationCount: len(fileAnns),
		ProcessedAt:     time.Now().UTC(),
	}, true
}

// findImageFiles walks the candidate directories and returns unique image
// paths. Directories can nest, so paths are deduplicated.
func findImageFiles(dirs []string) []string {
	seen := make(map[string]bool)
	var files []string
	for _, dir := range dirs {
		_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if !imageExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
				return nil
			}
			if !seen[p] {
				seen[p] = true
				files = append(files, p)
			}
			return nil
		})
	}
	return files
}
