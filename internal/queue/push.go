package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/dataset-hub/internal/db"
)

// PushQueue delivers jobs to a remote worker over HTTP, the same contract a
// managed task queue pushes with.
type PushQueue struct {
	workerURL string
	client    *http.Client
	log       *zap.Logger
}

// pushPayload is the body posted to the worker's /process endpoint.
type pushPayload struct {
	JobID string `json:"job_id"`
	db.ImportRequest
}

func NewPushQueue(workerURL string, log *zap.Logger) *PushQueue {
	return &PushQueue{
		workerURL: workerURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       log,
	}
}

// Enqueue posts the job to the worker. A non-2xx response is an error so the
// caller can surface delivery failures.
func (q *PushQueue) Enqueue(ctx context.Context, jobID string, req db.ImportRequest) error {
	body, err := json.Marshal(pushPayload{JobID: jobID, ImportRequest: req})
	if err != nil {
		return fmt.Errorf("encoding job %s: %w", jobID, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, q.workerURL+"/process", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request for job %s: %w", jobID, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := q.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("delivering job %s: %w", jobID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("delivering job %s: worker returned status %d", jobID, resp.StatusCode)
	}

	q.log.Info("job delivered to worker", zap.String("job_id", jobID))
	return nil
}
