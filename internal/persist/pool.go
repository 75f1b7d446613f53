// Package persist decouples blocking transactional upsert work from the
// I/O-bound crawl loop through a bounded worker pool.
package persist

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/pricewatch-it/pricewatch/internal/catalog"
)

var (
	observationsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricewatch_observations_persisted_total",
		Help: "The total number of observations successfully upserted.",
	})
	observationsSkippedStale = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricewatch_observations_skipped_stale_total",
		Help: "The total number of observations skipped because a fresher price was stored.",
	})
	observationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricewatch_observations_failed_total",
		Help: "The total number of observations whose upsert failed.",
	})
)

// Upserter applies one observation to the catalog. Implemented by the upsert
// engine.
type Upserter interface {
	Upsert(ctx context.Context, obs catalog.Observation, policy catalog.ConflictPolicy) (catalog.UpsertResult, error)
}

// Task is one unit of persistence work. Done, when set, receives the upsert
// outcome; it is called from a worker goroutine.
type Task struct {
	Observation catalog.Observation
	Policy      catalog.ConflictPolicy
	Done        func(catalog.UpsertResult, error)
}

// Config controls pool sizing.
type Config struct {
	Workers    int
	QueueDepth int
}

// Pool runs upserts on its own bounded worker set, distinct from the fetch
// concurrency bound, so transactional work never stalls fetching. Tasks
// accepted by Submit run to completion even if the submitting job is
// cancelled.
type Pool struct {
	engine Upserter
	logger *zap.Logger
	tasks  chan Task
	wg     sync.WaitGroup

	startOnce sync.Once
	closeOnce sync.Once
}

// New constructs a Pool.
func New(engine Upserter, cfg Config, logger *zap.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 5
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pool{
		engine: engine,
		logger: logger,
		tasks:  make(chan Task, cfg.QueueDepth),
	}
	p.startOnce.Do(func() { p.start(cfg.Workers) })
	return p
}

func (p *Pool) start(workers int) {
	// Workers deliberately outlive any submitting job's context: a partial
	// upsert must never leave a price row half-written.
	base := context.Background()
	for range workers {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				p.run(base, task)
			}
		}()
	}
}

func (p *Pool) run(ctx context.Context, task Task) {
	result, err := p.engine.Upsert(ctx, task.Observation, task.Policy)
	switch {
	case err != nil:
		observationsFailed.Inc()
		p.logger.Error("upsert failed",
			zap.String("product", task.Observation.Product),
			zap.String("store", task.Observation.StoreName),
			zap.Error(err),
		)
	case result.SkippedReason != "":
		observationsSkippedStale.Inc()
	default:
		observationsPersisted.Inc()
	}
	if task.Done != nil {
		task.Done(result, err)
	}
}

// Submit enqueues a task, blocking while the queue is full. The context only
// bounds the enqueue wait; once accepted, the task is processed regardless.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("submit canceled: %w", ctx.Err())
	case p.tasks <- task:
		return nil
	}
}

// Close stops accepting tasks and blocks until the queue drains.
func (p *Pool) Close() {
	p.closeOnce.Do(func() { close(p.tasks) })
	p.wg.Wait()
}
