package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/dataset-hub/internal/db"
	"github.com/jonathan/dataset-hub/internal/queue"
)

// Worker is the HTTP surface a push dispatcher delivers jobs to. It runs the
// pipeline synchronously so the queue's retry policy sees failures.
type Worker struct {
	httpServer *http.Server
	runner     queue.Runner
	log        *zap.Logger
}

// processRequest is the body a push queue posts to /process.
type processRequest struct {
	JobID string `json:"job_id"`
	db.ImportRequest
}

// NewWorker builds the worker server around a job runner.
func NewWorker(port int, runner queue.Runner, log *zap.Logger) *Worker {
	w := &Worker{runner: runner, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /process", w.handleProcess)
	mux.HandleFunc("GET /health", w.handleHealth)

	w.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     mux,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	return w
}

// Handler exposes the configured routes, mainly for tests.
func (w *Worker) Handler() http.Handler {
	return w.httpServer.Handler
}

// ListenAndServe blocks serving /process deliveries.
func (w *Worker) ListenAndServe() error {
	w.log.Info("worker starting", zap.String("addr", w.httpServer.Addr))
	if err := w.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("worker server: %w", err)
	}
	return nil
}

func (w *Worker) handleProcess(rw http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(rw, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.JobID == "" {
		http.Error(rw, "job_id is required", http.StatusBadRequest)
		return
	}

	if err := w.runner.ProcessImport(r.Context(), req.JobID, req.ImportRequest); err != nil {
		w.log.Error("processing job", zap.String("job_id", req.JobID), zap.Error(err))
		http.Error(rw, "processing failed", http.StatusInternalServerError)
		return
	}

	rw.WriteHeader(http.StatusOK)
}

func (w *Worker) handleHealth(rw http.ResponseWriter, _ *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(http.StatusOK)
	_, _ = rw.Write([]byte(`{"status":"ok"}`))
}
