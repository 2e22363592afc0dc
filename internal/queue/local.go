package queue

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/dataset-hub/internal/db"
)

type task struct {
	jobID string
	req   db.ImportRequest
}

// LocalQueue runs import jobs on an in-process worker pool. Enqueue is
// fire-and-forget: job outcomes land in the job document, not the caller.
type LocalQueue struct {
	tasks  chan task
	runner Runner
	log    *zap.Logger
	wg     sync.WaitGroup

	closeOnce sync.Once
}

// NewLocalQueue starts workers goroutines consuming from a buffer of size
// queueSize.
func NewLocalQueue(runner Runner, workers, queueSize int, log *zap.Logger) *LocalQueue {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	q := &LocalQueue{
		tasks:  make(chan task, queueSize),
		runner: runner,
		log:    log,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	return q
}

func (q *LocalQueue) work() {
	defer q.wg.Done()
	for t := range q.tasks {
		// Jobs outlive the request that enqueued them.
		if err := q.runner.ProcessImport(context.Background(), t.jobID, t.req); err != nil {
			q.log.Error("import job failed", zap.String("job_id", t.jobID), zap.Error(err))
		}
	}
}

// Enqueue queues the job, blocking if the buffer is full.
func (q *LocalQueue) Enqueue(ctx context.Context, jobID string, req db.ImportRequest) error {
	select {
	case q.tasks <- task{jobID: jobID, req: req}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work and waits for in-flight jobs to finish.
func (q *LocalQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.tasks)
	})
	q.wg.Wait()
}
