// Package pipeline orchestrates the stages of a dataset import job.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/dataset-hub/internal/annotations"
	"github.com/jonathan/dataset-hub/internal/dataset"
	"github.com/jonathan/dataset-hub/internal/db"
	"github.com/jonathan/dataset-hub/internal/images"
	"github.com/jonathan/dataset-hub/internal/layout"
	"github.com/jonathan/dataset-hub/internal/storage"
	"github.com/jonathan/dataset-hub/internal/yolo"
)

// Stage names recorded in job progress.
const (
	StepDownloadingConfig  = "downloading_config"
	StepDownloadingDataset = "downloading_dataset"
	StepParsingAnnotations = "parsing_annotations"
	StepProcessingImages   = "processing_images"
	StepStoringData        = "storing_data"
	StepCompleted          = "completed"

	totalSteps = 6
)

// DocumentStore is the subset of job and dataset persistence the pipeline
// needs.
type DocumentStore interface {
	UpdateImportJob(ctx context.Context, jobID string, fields map[string]any) error
	CreateDataset(ctx context.Context, ds *db.Dataset) (uuid.UUID, error)
	CreateImages(ctx context.Context, datasetID uuid.UUID, imgs []db.Image) ([]uuid.UUID, error)
}

// Processor runs import jobs end to end.
type Processor struct {
	blobs     storage.Store
	store     DocumentStore
	log       *zap.Logger
	collector *annotations.Collector
	extractor *images.Extractor
}

func NewProcessor(blobs storage.Store, store DocumentStore, log *zap.Logger) *Processor {
	return &Processor{
		blobs:     blobs,
		store:     store,
		log:       log,
		collector: annotations.NewCollector(log),
		extractor: images.NewExtractor(blobs, log),
	}
}

// ProcessImport executes every stage of an import job. Stage progress is
// written to the job document before each stage; those writes are
// best-effort. Any stage failure marks the job failed and is returned to the
// caller.
func (p *Processor) ProcessImport(ctx context.Context, jobID string, req db.ImportRequest) (err error) {
	log := p.log.With(zap.String("job_id", jobID))

	started := time.Now().UTC()
	if err := p.store.UpdateImportJob(ctx, jobID, map[string]any{
		"status":     db.StatusProcessing,
		"started_at": started,
		"progress": &db.JobProgress{
			Percentage:     0,
			CurrentStep:    "downloading_files",
			StepsCompleted: []string{},
			TotalSteps:     totalSteps,
		},
	}); err != nil {
		return fmt.Errorf("marking job processing: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}
		log.Error("import job failed", zap.Error(err))
		now := time.Now().UTC()
		failErr := p.store.UpdateImportJob(ctx, jobID, map[string]any{
			"status":       db.StatusFailed,
			"completed_at": now,
			"error": &db.JobError{
				Code:      "processing_error",
				Message:   err.Error(),
				Timestamp: now,
			},
		})
		if failErr != nil {
			log.Warn("recording job failure", zap.Error(failErr))
		}
	}()

	var completed []string
	progress := func(pct int, step string) {
		upErr := p.store.UpdateImportJob(ctx, jobID, map[string]any{
			"progress": &db.JobProgress{
				Percentage:     pct,
				CurrentStep:    step,
				StepsCompleted: append([]string{}, completed...),
				TotalSteps:     totalSteps,
			},
		})
		if upErr != nil {
			log.Warn("updating job progress", zap.String("step", step), zap.Error(upErr))
		}
	}

	workdir, err := os.MkdirTemp("", fmt.Sprintf("yolo_dataset_%s_", jobID))
	if err != nil {
		return &ProcessingError{Step: "workspace", Message: "creating temp directory", Cause: err}
	}
	defer os.RemoveAll(workdir)

	progress(10, StepDownloadingConfig)
	configData, err := p.blobs.Download(ctx, req.ConfigURL)
	if err != nil {
		return &ProcessingError{Step: StepDownloadingConfig, Message: "downloading config", Cause: err}
	}
	cfg, err := yolo.ParseConfig(configData)
	if err != nil {
		return &ProcessingError{Step: StepDownloadingConfig, Message: "parsing config", Cause: err}
	}
	completed = append(completed, StepDownloadingConfig)
	log.Info("parsed dataset config", zap.Int("classes", len(cfg.Names)))

	progress(30, StepDownloadingDataset)
	archive, err := p.blobs.Download(ctx, req.DatasetURL)
	if err != nil {
		return &ProcessingError{Step: StepDownloadingDataset, Message: "downloading dataset archive", Cause: err}
	}
	extracted := filepath.Join(workdir, "extracted")
	if err := extractZip(archive, extracted); err != nil {
		return &ProcessingError{Step: StepDownloadingDataset, Message: "extracting dataset archive", Cause: err}
	}
	completed = append(completed, StepDownloadingDataset)

	root := layout.Resolve(extracted)
	log.Info("resolved dataset root", zap.String("root", root))

	progress(60, StepParsingAnnotations)
	anns, err := p.collector.Collect(root, cfg.Names)
	if err != nil {
		return &ProcessingError{Step: StepParsingAnnotations, Message: "collecting annotations", Cause: err}
	}
	completed = append(completed, StepParsingAnnotations)

	progress(80, StepProcessingImages)
	records, err := p.extractor.Extract(ctx, root, jobID, anns)
	if err != nil {
		return &ProcessingError{Step: StepProcessingImages, Message: "processing images", Cause: err}
	}
	completed = append(completed, StepProcessingImages)

	progress(90, StepStoringData)
	ds, imgs := dataset.Assemble(jobID, req, cfg.Names, records)
	datasetID, err := p.store.CreateDataset(ctx, ds)
	if err != nil {
		return &ProcessingError{Step: StepStoringData, Message: "storing dataset", Cause: err}
	}
	if _, err := p.store.CreateImages(ctx, datasetID, imgs); err != nil {
		return &ProcessingError{Step: StepStoringData, Message: "storing image records", Cause: err}
	}
	completed = append(completed, StepStoringData, StepCompleted)

	now := time.Now().UTC()
	if err := p.store.UpdateImportJob(ctx, jobID, map[string]any{
		"status":       db.StatusCompleted,
		"completed_at": now,
		"dataset_id":   datasetID,
		"progress": &db.JobProgress{
			Percentage:     100,
			CurrentStep:    StepCompleted,
			StepsCompleted: completed,
			TotalSteps:     totalSteps,
		},
		"summary": &db.JobSummary{
			TotalImages:      ds.Stats.TotalImages,
			TotalAnnotations: ds.Stats.TotalAnnotations,
			Classes:          cfg.Names,
			DatasetSizeBytes: ds.Stats.DatasetSizeBytes,
		},
	}); err != nil {
		return fmt.Errorf("marking job completed: %w", err)
	}

	log.Info("import job completed",
		zap.String("dataset_id", datasetID.String()),
		zap.Int("images", ds.Stats.TotalImages),
		zap.Int("annotations", ds.Stats.TotalAnnotations))
	return nil
}
