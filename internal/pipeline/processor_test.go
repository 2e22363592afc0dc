package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/dataset-hub/internal/db"
)

type fakeBlobs struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	uploads map[string][]byte
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{blobs: map[string][]byte{}, uploads: map[string][]byte{}}
}

func (f *fakeBlobs) Download(_ context.Context, url string) ([]byte, error) {
	if data, ok := f.blobs[url]; ok {
		return data, nil
	}
	return nil, errors.New("blob not found: " + url)
}

func (f *fakeBlobs) Upload(_ context.Context, data []byte, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[path] = data
	return "fake://" + path, nil
}

type fakeDocs struct {
	mu          sync.Mutex
	updates     []map[string]any
	dataset     *db.Dataset
	imgs        []db.Image
	failUpdates bool
}

func (f *fakeDocs) UpdateImportJob(_ context.Context, _ string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdates {
		return errors.New("store unavailable")
	}
	f.updates = append(f.updates, fields)
	return nil
}

func (f *fakeDocs) CreateDataset(_ context.Context, ds *db.Dataset) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dataset = ds
	return uuid.New(), nil
}

func (f *fakeDocs) CreateImages(_ context.Context, _ uuid.UUID, imgs []db.Image) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imgs = imgs
	return nil, nil
}

func (f *fakeDocs) progressPercentages(t *testing.T) []int {
	t.Helper()
	var pcts []int
	for _, fields := range f.updates {
		raw, ok := fields["progress"]
		if !ok {
			continue
		}
		progress, ok := raw.(*db.JobProgress)
		require.True(t, ok)
		pcts = append(pcts, progress.Percentage)
	}
	return pcts
}

func (f *fakeDocs) lastStatus() string {
	status := ""
	for _, fields := range f.updates {
		if s, ok := fields["status"].(string); ok {
			status = s
		}
	}
	return status
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 20, 10))))
	return buf.Bytes()
}

func datasetZip(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestProcessImport_Success(t *testing.T) {
	blobs := newFakeBlobs()
	blobs.blobs["file:///data.yaml"] = []byte("names:\n  - car\n  - truck\n")
	blobs.blobs["file:///ds.zip"] = datasetZip(t, map[string][]byte{
		"labels/img1.txt": []byte("0 0.5 0.5 0.2 0.2\n1 0.3 0.3 0.1 0.1\n"),
		"images/img1.png": pngBytes(t),
		"images/img2.png": pngBytes(t),
	})

	docs := &fakeDocs{}
	proc := NewProcessor(blobs, docs, zap.NewNop())

	req := db.ImportRequest{Name: "traffic", ConfigURL: "file:///data.yaml", DatasetURL: "file:///ds.zip"}
	require.NoError(t, proc.ProcessImport(context.Background(), "job-1", req))

	assert.Equal(t, []int{0, 10, 30, 60, 80, 90, 100}, docs.progressPercentages(t))
	assert.Equal(t, db.StatusCompleted, docs.lastStatus())

	require.NotNil(t, docs.dataset)
	assert.Equal(t, 2, docs.dataset.Stats.TotalImages)
	assert.Equal(t, 2, docs.dataset.Stats.TotalAnnotations)
	require.Len(t, docs.imgs, 2)
	assert.Len(t, blobs.uploads, 2)

	final := docs.updates[len(docs.updates)-1]
	summary, ok := final["summary"].(*db.JobSummary)
	require.True(t, ok)
	assert.Equal(t, []string{"car", "truck"}, summary.Classes)
	progress, ok := final["progress"].(*db.JobProgress)
	require.True(t, ok)
	assert.Equal(t, []string{
		StepDownloadingConfig, StepDownloadingDataset, StepParsingAnnotations,
		StepProcessingImages, StepStoringData, StepCompleted,
	}, progress.StepsCompleted)
}

func TestProcessImport_ConfigDownloadFailure(t *testing.T) {
	blobs := newFakeBlobs()
	docs := &fakeDocs{}
	proc := NewProcessor(blobs, docs, zap.NewNop())

	req := db.ImportRequest{Name: "d", ConfigURL: "file:///missing.yaml", DatasetURL: "file:///ds.zip"}
	err := proc.ProcessImport(context.Background(), "job-1", req)
	require.Error(t, err)

	var procErr *ProcessingError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, StepDownloadingConfig, procErr.Step)

	assert.Equal(t, db.StatusFailed, docs.lastStatus())
	assert.Nil(t, docs.dataset)

	var jobErr *db.JobError
	for _, fields := range docs.updates {
		if e, ok := fields["error"].(*db.JobError); ok {
			jobErr = e
		}
	}
	require.NotNil(t, jobErr)
	assert.Equal(t, "processing_error", jobErr.Code)
	assert.NotEmpty(t, jobErr.Message)
}

func TestProcessImport_NoAnnotationsFails(t *testing.T) {
	blobs := newFakeBlobs()
	blobs.blobs["file:///data.yaml"] = []byte("names: [car]\n")
	blobs.blobs["file:///ds.zip"] = datasetZip(t, map[string][]byte{
		"images/img1.png": pngBytes(t),
	})

	docs := &fakeDocs{}
	proc := NewProcessor(blobs, docs, zap.NewNop())

	req := db.ImportRequest{Name: "d", ConfigURL: "file:///data.yaml", DatasetURL: "file:///ds.zip"}
	err := proc.ProcessImport(context.Background(), "job-1", req)
	require.Error(t, err)

	var procErr *ProcessingError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, StepParsingAnnotations, procErr.Step)
	assert.Equal(t, db.StatusFailed, docs.lastStatus())
}

func TestProcessImport_BadArchive(t *testing.T) {
	blobs := newFakeBlobs()
	blobs.blobs["file:///data.yaml"] = []byte("names: [car]\n")
	blobs.blobs["file:///ds.zip"] = []byte("not a zip archive")

	docs := &fakeDocs{}
	proc := NewProcessor(blobs, docs, zap.NewNop())

	req := db.ImportRequest{Name: "d", ConfigURL: "file:///data.yaml", DatasetURL: "file:///ds.zip"}
	err := proc.ProcessImport(context.Background(), "job-1", req)
	require.Error(t, err)

	var procErr *ProcessingError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, StepDownloadingDataset, procErr.Step)
}

func TestProcessImport_InitialUpdateFailureAborts(t *testing.T) {
	blobs := newFakeBlobs()
	docs := &fakeDocs{failUpdates: true}
	proc := NewProcessor(blobs, docs, zap.NewNop())

	req := db.ImportRequest{Name: "d", ConfigURL: "file:///c", DatasetURL: "file:///d"}
	err := proc.ProcessImport(context.Background(), "job-1", req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marking job processing")
}
