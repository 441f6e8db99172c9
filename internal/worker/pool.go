package worker

import (
	"context"
	"fmt"
	"sync"

	"klaso-client/internal/logger"

	"github.com/rs/zerolog"
)

// Job is one unit of background work, typically the rendering of one export.
type Job func(context.Context) error

// WorkerPool runs jobs on a fixed number of goroutines. Its backlog holds two
// jobs per worker; anything beyond that is refused so the caller can requeue it.
type WorkerPool struct {
	size    int
	backlog chan Job

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup

	log zerolog.Logger
}

func NewWorkerPool(size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		backlog: make(chan Job, size*2),
		log:     logger.For("worker-pool"),
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	wp.log.Info().Int("size", wp.size).Int("backlog", cap(wp.backlog)).Msg("Starting worker pool")

	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.run(ctx, i)
	}
}

// Stop drains the backlog and waits for running jobs. Later submissions are refused.
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if wp.stopped {
		wp.mu.Unlock()
		return
	}
	wp.stopped = true
	close(wp.backlog)
	wp.mu.Unlock()

	wp.wg.Wait()
	wp.log.Info().Msg("Worker pool stopped")
}

// Submit queues a job without blocking and reports whether it was accepted.
func (wp *WorkerPool) Submit(job Job) bool {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.stopped {
		wp.log.Warn().Msg("Job refused, pool stopped")
		return false
	}

	select {
	case wp.backlog <- job:
		return true
	default:
		wp.log.Warn().Int("backlog", len(wp.backlog)).Msg("Job refused, backlog full")
		return false
	}
}

// run executes jobs until the backlog is closed and empty. ctx is handed to
// the jobs; cancelling it does not abandon queued jobs.
func (wp *WorkerPool) run(ctx context.Context, id int) {
	defer wp.wg.Done()

	log := wp.log.With().Int("worker_id", id).Logger()
	for job := range wp.backlog {
		if err := safely(ctx, job); err != nil {
			log.Error().Err(err).Msg("Job failed")
		}
	}
}

// safely turns a panicking job into an error so the worker survives it.
func safely(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job(ctx)
}
