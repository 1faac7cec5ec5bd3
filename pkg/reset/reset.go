// Package reset empties the application's database and cache between test
// runs. The work is refused unless the process runs in test mode.
package reset

import (
	"context"
	"time"

	"resetd/pkg/common/config"
	"resetd/pkg/common/logger"
	"resetd/pkg/common/worker"
)

// Outcome is the result of a reset request.
type Outcome int

const (
	// Succeeded means both the database and the cache were emptied.
	Succeeded Outcome = iota
	// Rejected means the guard refused the request; nothing was touched.
	Rejected
	// Failed means the guard passed but at least one store failed.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// DatabaseResetter empties the relational database.
type DatabaseResetter interface {
	ResetDatabase(ctx context.Context) error
}

// DatabaseFunc adapts a function to DatabaseResetter.
type DatabaseFunc func(ctx context.Context) error

func (f DatabaseFunc) ResetDatabase(ctx context.Context) error { return f(ctx) }

// CacheFlusher empties the cache store.
type CacheFlusher interface {
	Flush(ctx context.Context) error
}

// CacheFunc adapts a function to CacheFlusher.
type CacheFunc func(ctx context.Context) error

func (f CacheFunc) Flush(ctx context.Context) error { return f(ctx) }

// Runner starts a job and reports its result on the returned channel.
type Runner interface {
	Go(job worker.Job) <-chan error
}

type goRunner struct{}

func (goRunner) Go(job worker.Job) <-chan error {
	done := make(chan error, 1)
	go func() { done <- job() }()
	return done
}

// Orchestrator runs the guarded reset of both stores.
type Orchestrator struct {
	db      DatabaseResetter
	cache   CacheFlusher
	guard   func() bool
	runner  Runner
	timeout time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithGuard replaces the test mode check.
func WithGuard(guard func() bool) Option { return func(o *Orchestrator) { o.guard = guard } }

// WithRunner runs the sub-operations on r instead of bare goroutines.
func WithRunner(r Runner) Option { return func(o *Orchestrator) { o.runner = r } }

// WithTimeout bounds a single reset. Zero disables the bound.
func WithTimeout(d time.Duration) Option { return func(o *Orchestrator) { o.timeout = d } }

// New returns an Orchestrator guarded by config.IsTestMode.
func New(db DatabaseResetter, cache CacheFlusher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		db:      db,
		cache:   cache,
		guard:   config.IsTestMode,
		runner:  goRunner{},
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Reset empties the cache and the database concurrently and waits for
// both. Outside test mode it returns Rejected without touching either.
func (o *Orchestrator) Reset(ctx context.Context) Outcome {
	log := logger.WithComponent("reset")
	if !o.guard() {
		log.Warn().Msg("reset refused: not running in test mode")
		return Rejected
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	cacheDone := o.runner.Go(func() error { return o.cache.Flush(ctx) })
	dbDone := o.runner.Go(func() error { return o.db.ResetDatabase(ctx) })
	cacheErr, dbErr := <-cacheDone, <-dbDone

	if cacheErr != nil {
		log.Error().Err(cacheErr).Msg("cache flush failed")
	}
	if dbErr != nil {
		log.Error().Err(dbErr).Msg("database reset failed")
	}
	if cacheErr != nil || dbErr != nil {
		return Failed
	}
	log.Info().Dur("took", time.Since(start)).Msg("database and cache reset")
	return Succeeded
}
