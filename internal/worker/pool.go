// Package worker runs background jobs that must not hold up a request, such as
// removing image files that are no longer referenced.
package worker

import (
	"log/slog"
	"sync"

	"github.com/baharkarakas/asso-backend/internal/metrics"
)

type Job struct {
	Name string
	Run  func() error
}

type Pool struct {
	wg     sync.WaitGroup
	mu     sync.RWMutex
	jobs   chan Job
	closed bool
	log    *slog.Logger
}

func NewPool(n, queue int, log *slog.Logger) *Pool {
	if n < 1 {
		n = 1
	}
	if log == nil {
		log = slog.Default()
	}
	p := &Pool{jobs: make(chan Job, queue), log: log}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
				p.run(job)
			}
		}()
	}
	return p
}

func (p *Pool) run(job Job) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error("worker job panicked", "job", job.Name, "panic", rec)
		}
	}()
	if err := job.Run(); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(job.Name).Inc()
		p.log.Warn("worker job failed", "job", job.Name, "err", err)
	}
}

// Submit queues job without blocking. It returns false when the queue is full or
// the pool is stopped; the job is dropped in that case.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.jobs <- job:
		metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
		return true
	default:
		p.log.Warn("worker queue full, dropping job", "job", job.Name)
		return false
	}
}

// Stop drains queued jobs and waits for the workers to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
