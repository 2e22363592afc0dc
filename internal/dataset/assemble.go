// Package dataset turns processed image records into the persisted dataset
// document and its image rows.
package dataset

import (
	"fmt"
	"time"

	"github.com/jonathan/dataset-hub/internal/db"
	"github.com/jonathan/dataset-hub/internal/images"
)

// Assemble computes dataset statistics and per-class counts from the
// processed records and builds the documents to persist. Classes with no
// occurrences are kept with a zero count so the schema stays complete.
func Assemble(jobID string, req db.ImportRequest, classNames []string, records []images.Record) (*db.Dataset, []db.Image) {
	totalAnnotations := 0
	var sizeBytes int64
	counts := make(map[int]int)
	for _, rec := range records {
		totalAnnotations += rec.AnnotationCount
		sizeBytes += rec.FileSizeBytes
		for _, ann := range rec.Annotations {
			counts[ann.ClassID]++
		}
	}

	classes := make([]db.DatasetClass, len(classNames))
	for i, name := range classNames {
		classes[i] = db.DatasetClass{ID: i, Name: name, Count: counts[i]}
	}

	avg := 0.0
	if len(records) > 0 {
		avg = float64(totalAnnotations) / float64(len(records))
	}

	now := time.Now().UTC()
	ds := &db.Dataset{
		Name:        req.Name,
		Description: req.Description,
		Status:      db.StatusCompleted,
		ImportJobID: jobID,
		Stats: db.DatasetStats{
			TotalImages:            len(records),
			TotalAnnotations:       totalAnnotations,
			TotalClasses:           len(classNames),
			AvgAnnotationsPerImage: avg,
			DatasetSizeBytes:       sizeBytes,
		},
		Classes: classes,
		Storage: db.DatasetStorage{
			ImagesPath: fmt.Sprintf("datasets/%s/images/", jobID),
			LabelsPath: fmt.Sprintf("datasets/%s/labels/", jobID),
			ConfigPath: fmt.Sprintf("datasets/%s/data.yaml", jobID),
		},
		CreatedAt:   now,
		CompletedAt: &now,
	}

	imgs := make([]db.Image, len(records))
	for i, rec := range records {
		imgs[i] = db.Image{
			Filename:        rec.Filename,
			Width:           rec.Width,
			Height:          rec.Height,
			FileSizeBytes:   rec.FileSizeBytes,
			StorageURL:      rec.StorageURL,
			Annotations:     rec.Annotations,
			AnnotationCount: rec.AnnotationCount,
			ProcessedAt:     rec.ProcessedAt,
		}
	}
	return ds, imgs
}
