package worker

import (
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"resetd/pkg/common/logger"
)

// Job is a unit of work whose error is reported to the submitter.
type Job func() error

// Stats is a snapshot of pool activity.
type Stats struct {
	Capacity  int
	Running   int
	Submitted uint64
	Completed uint64
	Panics    uint64
	LastDur   time.Duration
}

// Pool runs jobs on a bounded set of goroutines.
type Pool struct {
	pool *ants.Pool

	mu    sync.Mutex
	stats Stats
}

// NewPool returns a pool with size workers. Submission blocks while all
// workers are busy.
func NewPool(size int) (*Pool, error) {
	p, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Pool{pool: p}, nil
}

// Go runs job on the pool. The returned channel receives the job's error
// (nil on success) exactly once. A panic in job is reported as an error.
func (p *Pool) Go(job Job) <-chan error {
	done := make(chan error, 1)
	p.mu.Lock()
	p.stats.Submitted++
	p.mu.Unlock()

	err := p.pool.Submit(func() {
		start := time.Now()
		var jobErr error
		defer func() {
			if r := recover(); r != nil {
				logger.WithComponent("worker").Error().Interface("panic", r).Msg("worker panic recovered")
				jobErr = fmt.Errorf("job panicked: %v", r)
				p.mu.Lock()
				p.stats.Panics++
				p.mu.Unlock()
			}
			p.mu.Lock()
			p.stats.Completed++
			p.stats.LastDur = time.Since(start)
			p.mu.Unlock()
			done <- jobErr
		}()
		jobErr = job()
	})
	if err != nil {
		p.mu.Lock()
		p.stats.Completed++
		p.mu.Unlock()
		done <- fmt.Errorf("submit job: %w", err)
	}
	return done
}

// Stats returns a copy of the current pool statistics.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.Capacity = p.pool.Cap()
	s.Running = p.pool.Running()
	return s
}

// Release stops accepting jobs and frees the workers.
func (p *Pool) Release() {
	p.pool.Release()
}
