// Package queue dispatches import jobs to a worker, either in-process or over
// HTTP.
package queue

import (
	"context"

	"github.com/jonathan/dataset-hub/internal/db"
)

// Queue hands an accepted import job off for asynchronous processing.
type Queue interface {
	Enqueue(ctx context.Context, jobID string, req db.ImportRequest) error
}

// Runner executes one import job. Satisfied by *pipeline.Processor.
type Runner interface {
	ProcessImport(ctx context.Context, jobID string, req db.ImportRequest) error
}
