package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/dataset-hub/internal/db"
)

func TestPrintDataset(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDataset(&db.Dataset{
		Name:   "traffic",
		Status: db.StatusCompleted,
		Stats: db.DatasetStats{
			TotalImages:            12,
			TotalAnnotations:       34,
			AvgAnnotationsPerImage: 2.83,
		},
		Classes: []db.DatasetClass{
			{ID: 0, Name: "car", Count: 20},
			{ID: 1, Name: "", Count: 0},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "IMPORTED DATASET")
	assert.Contains(t, out, "traffic")
	assert.Contains(t, out, "car")
	assert.Contains(t, out, "(unnamed)")
}

func TestPrintDataset_NilIsNoOp(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintDataset(nil)
	assert.Empty(t, buf.String())
}

func TestPrintJob_FailedJob(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJob(&db.ImportJob{
		JobID:  "job-1",
		Status: db.StatusFailed,
		Error:  &db.JobError{Code: "processing_error", Message: "no image files found"},
	})

	out := buf.String()
	assert.Contains(t, out, "job-1")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "no image files found")
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("local")
	assert.NoError(t, err)
	assert.NotNil(t, log)

	log, err = NewLogger("production")
	assert.NoError(t, err)
	assert.NotNil(t, log)
}
