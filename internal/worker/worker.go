// internal/worker/worker.go
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Job is a named unit of deferred work. Webhook processing runs through
// here so that failures are logged instead of vanishing in a detached
// goroutine.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

var ErrQueueFull = errors.New("worker queue is full")

type Pool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	timeout time.Duration
	once    sync.Once
}

// NewPool starts size workers draining a queue of the given depth.
func NewPool(size, depth int, jobTimeout time.Duration) *Pool {
	if size <= 0 {
		size = 2
	}
	if depth <= 0 {
		depth = 64
	}
	p := &Pool{
		jobs:    make(chan Job, depth),
		timeout: jobTimeout,
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for job := range p.jobs {
		ctx := context.Background()
		cancel := func() {}
		if p.timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, p.timeout)
		}

		start := time.Now()
		err := job.Run(ctx)
		cancel()

		entry := logrus.WithFields(logrus.Fields{
			"job":      job.Name,
			"duration": time.Since(start).Milliseconds(),
		})
		if err != nil {
			entry.WithError(err).Error("Background job failed")
		} else {
			entry.Debug("Background job completed")
		}
	}
}

// Enqueue submits a job without blocking the caller. A full queue is an
// error the caller must surface, not a silent drop.
func (p *Pool) Enqueue(job Job) error {
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	p.once.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}
