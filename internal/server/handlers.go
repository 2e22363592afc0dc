package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/dataset-hub/internal/db"
	"github.com/jonathan/dataset-hub/internal/schemas"
)

// maxImportBodyBytes caps the import request body size.
const maxImportBodyBytes = 1 << 20

// estimatedImportDuration seeds estimated_completion on new jobs.
const estimatedImportDuration = 20 * time.Minute

// ImportResponse is the 202 body returned when a job is accepted.
type ImportResponse struct {
	JobID               string    `json:"job_id"`
	Status              string    `json:"status"`
	Message             string    `json:"message"`
	CreatedAt           time.Time `json:"created_at"`
	EstimatedCompletion time.Time `json:"estimated_completion"`
}

// handleImport validates the request, records the job and hands it to the
// dispatcher.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBodyBytes))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "reading request body: "+err.Error())
		return
	}

	if err := schemas.ValidateImportRequest(body); err != nil {
		var valErr *schemas.ValidationError
		if errors.As(err, &valErr) {
			s.errorResponse(w, http.StatusBadRequest, valErr.Error())
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}

	var req db.ImportRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "decoding request: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	estimated := now.Add(estimatedImportDuration)
	job := &db.ImportJob{
		JobID:   uuid.NewString(),
		Status:  db.StatusQueued,
		Request: req,
		Progress: &db.JobProgress{
			Percentage:     0,
			CurrentStep:    "queued",
			StepsCompleted: []string{},
			TotalSteps:     6,
		},
		CreatedAt:           now,
		EstimatedCompletion: &estimated,
	}

	if err := s.store.CreateImportJob(r.Context(), job); err != nil {
		s.log.Error("creating import job", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to create import job")
		return
	}

	if err := s.queue.Enqueue(r.Context(), job.JobID, req); err != nil {
		s.log.Error("enqueueing import job", zap.String("job_id", job.JobID), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to queue import job")
		return
	}

	s.jsonResponse(w, http.StatusAccepted, ImportResponse{
		JobID:               job.JobID,
		Status:              job.Status,
		Message:             "dataset import queued",
		CreatedAt:           now,
		EstimatedCompletion: estimated,
	})
}

// handleImportStatus returns the current state of a job.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")

	job, err := s.store.GetImportJob(r.Context(), jobID)
	if err != nil {
		s.log.Error("fetching import job", zap.String("job_id", jobID), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to fetch import job")
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "import job not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, job)
}

// ListResponse wraps a paginated collection.
type ListResponse struct {
	Items any `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	filters := db.DatasetFilters{
		Status: r.URL.Query().Get("status"),
		Page:   page,
		Limit:  limit,
	}

	datasets, total, err := s.store.ListDatasets(r.Context(), filters)
	if err != nil {
		s.log.Error("listing datasets", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to list datasets")
		return
	}

	s.jsonResponse(w, http.StatusOK, ListResponse{Items: datasets, Total: total, Page: page, Limit: limit})
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid dataset id")
		return
	}

	ds, err := s.store.GetDataset(r.Context(), id)
	if err != nil {
		s.log.Error("fetching dataset", zap.String("dataset_id", id.String()), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to fetch dataset")
		return
	}
	if ds == nil {
		s.errorResponse(w, http.StatusNotFound, "dataset not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, ds)
}

func (s *Server) handleListDatasetImages(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid dataset id")
		return
	}

	page, limit := pageParams(r)
	filters := db.ImageFilters{
		Class: r.URL.Query().Get("class_filter"),
		Page:  page,
		Limit: limit,
	}
	if v := r.URL.Query().Get("has_annotations"); v != "" {
		has, err := strconv.ParseBool(v)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "has_annotations must be a boolean")
			return
		}
		filters.HasAnnotations = &has
	}

	imgs, total, err := s.store.ListDatasetImages(r.Context(), id, filters)
	if err != nil {
		s.log.Error("listing dataset images", zap.String("dataset_id", id.String()), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to list images")
		return
	}

	s.jsonResponse(w, http.StatusOK, ListResponse{Items: imgs, Total: total, Page: page, Limit: limit})
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
