package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/dataset-hub/internal/db"
	"github.com/jonathan/dataset-hub/internal/images"
	"github.com/jonathan/dataset-hub/internal/yolo"
)

func record(t *testing.T, filename string, size int64, classIDs ...int) images.Record {
	t.Helper()
	box, err := yolo.NewBoundingBox(0.5, 0.5, 0.2, 0.2)
	require.NoError(t, err)
	anns := make([]yolo.Annotation, len(classIDs))
	for i, id := range classIDs {
		anns[i] = yolo.Annotation{ClassID: id, BBox: box}
	}
	return images.Record{
		Filename:        filename,
		Width:           64,
		Height:          64,
		FileSizeBytes:   size,
		Annotations:     anns,
		AnnotationCount: len(anns),
	}
}

func TestAssemble_Stats(t *testing.T) {
	req := db.ImportRequest{Name: "traffic", Description: "street scenes"}
	records := []images.Record{
		record(t, "a.png", 100, 0, 0, 1),
		record(t, "b.png", 200, 1),
	}

	ds, imgs := Assemble("job-1", req, []string{"car", "truck", "bus"}, records)

	assert.Equal(t, "traffic", ds.Name)
	assert.Equal(t, "street scenes", ds.Description)
	assert.Equal(t, db.StatusCompleted, ds.Status)
	assert.Equal(t, "job-1", ds.ImportJobID)
	assert.Equal(t, 2, ds.Stats.TotalImages)
	assert.Equal(t, 4, ds.Stats.TotalAnnotations)
	assert.Equal(t, 3, ds.Stats.TotalClasses)
	assert.InDelta(t, 2.0, ds.Stats.AvgAnnotationsPerImage, 1e-9)
	assert.Equal(t, int64(300), ds.Stats.DatasetSizeBytes)
	require.NotNil(t, ds.CompletedAt)

	require.Len(t, imgs, 2)
	assert.Equal(t, "a.png", imgs[0].Filename)
	assert.Equal(t, 3, imgs[0].AnnotationCount)
}

func TestAssemble_ZeroCountClassesKept(t *testing.T) {
	records := []images.Record{record(t, "a.png", 10, 0)}

	ds, _ := Assemble("job-1", db.ImportRequest{Name: "d"}, []string{"car", "truck", "bus"}, records)

	require.Len(t, ds.Classes, 3)
	assert.Equal(t, db.DatasetClass{ID: 0, Name: "car", Count: 1}, ds.Classes[0])
	assert.Equal(t, db.DatasetClass{ID: 1, Name: "truck", Count: 0}, ds.Classes[1])
	assert.Equal(t, db.DatasetClass{ID: 2, Name: "bus", Count: 0}, ds.Classes[2])
}

func TestAssemble_EmptyRecords(t *testing.T) {
	ds, imgs := Assemble("job-1", db.ImportRequest{Name: "d"}, []string{"car"}, nil)

	assert.Equal(t, 0, ds.Stats.TotalImages)
	assert.Equal(t, 0.0, ds.Stats.AvgAnnotationsPerImage)
	assert.Empty(t, imgs)
}

func TestAssemble_StoragePaths(t *testing.T) {
	ds, _ := Assemble("abc123", db.ImportRequest{Name: "d"}, []string{"car"}, nil)
	assert.Equal(t, "datasets/abc123/images/", ds.Storage.ImagesPath)
	assert.Equal(t, "datasets/abc123/labels/", ds.Storage.LabelsPath)
	assert.Equal(t, "datasets/abc123/data.yaml", ds.Storage.ConfigPath)
}
