// Package tasks implements the background task pool spec.md §5 requires:
// a bounded worker pool for fire-and-forget work (confirmation emails) that
// must not block the request that triggered it, but also must not spawn
// unbounded goroutines under load. Lifecycle audit CSV uploads do not use
// it; they run inline after their commit. A job receives only a context;
// the pool opens no database session for it.
//
// Grounded on the teacher's "go s.notification.NotifyX(...)" idiom
// (internal/services/other_services.go), generalized into an actual bounded
// pool since spec.md §5 is explicit that background work must be resource
// bounded, not one-goroutine-per-task.
package tasks

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Job is one unit of background work. It receives its own context, separate
// from the HTTP request that enqueued it, so cancellation of the inbound
// request never cancels work that must still complete.
type Job func(ctx context.Context)

// Pool runs jobs on a bounded number of workers, fed by a buffered channel.
// Submit never blocks the caller past the channel's capacity; a full queue
// drops the job and logs it rather than applying backpressure to the HTTP
// handler that enqueued it.
type Pool struct {
	jobs    chan Job
	logger  zerolog.Logger
	timeout time.Duration
	done    chan struct{}
}

// NewPool starts workers goroutines draining a queue of the given capacity.
// Each job gets timeout to complete before its context is cancelled.
func NewPool(workers, queueCapacity int, timeout time.Duration, logger zerolog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueCapacity < 1 {
		queueCapacity = 1
	}
	p := &Pool{
		jobs:    make(chan Job, queueCapacity),
		logger:  logger,
		timeout: timeout,
		done:    make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	for job := range p.jobs {
		p.runJob(job)
	}
}

func (p *Pool) runJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Interface("panic", r).Msg("background task panicked")
		}
	}()

	job(ctx)
}

// Submit enqueues a job. If the queue is full, the job is dropped and
// logged rather than blocking the submitting request.
func (p *Pool) Submit(job Job) {
	select {
	case p.jobs <- job:
	default:
		p.logger.Warn().Msg("background task queue full, dropping job")
	}
}

// Close stops accepting new jobs and waits for the queue to drain is
// intentionally not implemented: in-flight jobs run to their own timeout
// independent of server shutdown, matching the teacher's fire-and-forget
// semantics for notification dispatch.
func (p *Pool) Close() {
	close(p.jobs)
}
