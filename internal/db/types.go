package db

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/dataset-hub/internal/yolo"
)

// Job and dataset lifecycle states.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

var validate = validator.New()

// ImportRequest is the client-supplied description of a dataset import.
type ImportRequest struct {
	Name        string `json:"name" validate:"required,min=1"`
	Description string `json:"description,omitempty"`
	ConfigURL   string `json:"config_url" validate:"required,min=1"`
	DatasetURL  string `json:"dataset_url" validate:"required,min=1"`
}

// Validate checks required fields after JSON decoding.
func (r *ImportRequest) Validate() error {
	return validate.Struct(r)
}

// JobProgress tracks where a running import is in its stage sequence.
type JobProgress struct {
	Percentage          int      `json:"percentage"`
	CurrentStep         string   `json:"current_step"`
	CurrentStepProgress int      `json:"current_step_progress"`
	StepsCompleted      []string `json:"steps_completed"`
	TotalSteps          int      `json:"total_steps"`
}

// JobError is the terminal error detail recorded on a failed job.
type JobError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// JobSummary is the result digest recorded on a completed job.
type JobSummary struct {
	TotalImages      int      `json:"total_images"`
	TotalAnnotations int      `json:"total_annotations"`
	Classes          []string `json:"classes"`
	DatasetSizeBytes int64    `json:"dataset_size_bytes"`
}

// ImportJob is the persisted state of one import request.
type ImportJob struct {
	JobID               string        `json:"job_id"`
	Status              string        `json:"status"`
	Request             ImportRequest `json:"request"`
	Progress            *JobProgress  `json:"progress,omitempty"`
	Summary             *JobSummary   `json:"summary,omitempty"`
	Error               *JobError     `json:"error,omitempty"`
	DatasetID           *uuid.UUID    `json:"dataset_id,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	StartedAt           *time.Time    `json:"started_at,omitempty"`
	CompletedAt         *time.Time    `json:"completed_at,omitempty"`
	EstimatedCompletion *time.Time    `json:"estimated_completion,omitempty"`
}

// DatasetStats are the aggregate numbers computed when a dataset is stored.
type DatasetStats struct {
	TotalImages            int     `json:"total_images"`
	TotalAnnotations       int     `json:"total_annotations"`
	TotalClasses           int     `json:"total_classes"`
	AvgAnnotationsPerImage float64 `json:"avg_annotations_per_image"`
	DatasetSizeBytes       int64   `json:"dataset_size_bytes"`
}

// DatasetClass is one schema class with its annotation occurrence count.
type DatasetClass struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DatasetStorage records where the dataset's blobs live.
type DatasetStorage struct {
	ImagesPath string `json:"images_path"`
	LabelsPath string `json:"labels_path"`
	ConfigPath string `json:"config_path"`
}

// Dataset is the persisted dataset document.
type Dataset struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Status      string         `json:"status"`
	ImportJobID string         `json:"import_job_id"`
	Stats       DatasetStats   `json:"stats"`
	Classes     []DatasetClass `json:"classes"`
	Storage     DatasetStorage `json:"storage"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// Image is the persisted per-image document.
type Image struct {
	ID              uuid.UUID         `json:"id"`
	DatasetID       uuid.UUID         `json:"dataset_id"`
	Filename        string            `json:"filename"`
	Width           int               `json:"width"`
	Height          int               `json:"height"`
	FileSizeBytes   int64             `json:"file_size_bytes"`
	StorageURL      string            `json:"storage_url"`
	Annotations     []yolo.Annotation `json:"annotations"`
	AnnotationCount int               `json:"annotation_count"`
	ProcessedAt     time.Time         `json:"processed_at"`
}
