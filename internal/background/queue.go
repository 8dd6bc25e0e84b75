// Package background runs fire-and-forget side effects (analytics events,
// notification mail) off the request path. Failures never reach the caller.
package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storvbox-be/internal/logger"
	"storvbox-be/internal/metrics"

	"go.uber.org/zap"
)

type Task func(ctx context.Context) error

type job struct {
	name  string
	reqID string
	run   Task
}

type Queue struct {
	jobs    chan job
	timeout time.Duration
	wg      sync.WaitGroup
	once    sync.Once

	mu     sync.RWMutex
	closed bool

	submitted *metrics.Counter
	dropped   *metrics.Counter
	failed    *metrics.Counter
	done      *metrics.Counter
}

type Options struct {
	Workers  int
	Capacity int
	Timeout  time.Duration
	Registry *metrics.Registry
}

// NewQueue starts the workers immediately.
func NewQueue(opts Options) *Queue {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Capacity <= 0 {
		opts.Capacity = 256
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Registry == nil {
		opts.Registry = metrics.Default
	}

	q := &Queue{
		jobs:      make(chan job, opts.Capacity),
		timeout:   opts.Timeout,
		submitted: opts.Registry.Counter("background.submitted"),
		dropped:   opts.Registry.Counter("background.dropped"),
		failed:    opts.Registry.Counter("background.failed"),
		done:      opts.Registry.Counter("background.done"),
	}

	for i := 0; i < opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Submit enqueues task without blocking. It returns false when the queue is
// full or closed; the task is then dropped and counted.
func (q *Queue) Submit(ctx context.Context, name string, task Task) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	log := logger.FromCtx(ctx).With(zap.String("layer", "background"), zap.String("task", name))

	if q.closed {
		q.dropped.Inc()
		log.Warn("queue closed, task dropped")
		return false
	}

	select {
	case q.jobs <- job{name: name, reqID: logger.RequestIDFrom(ctx), run: task}:
		q.submitted.Inc()
		return true
	default:
		q.dropped.Inc()
		log.Warn("queue full, task dropped")
		return false
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for j := range q.jobs {
		q.execute(j)
	}
}

func (q *Queue) execute(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if j.reqID != "" {
		ctx = logger.WithRequestID(ctx, j.reqID)
	}

	log := logger.FromCtx(ctx).With(zap.String("layer", "background"), zap.String("task", j.name))
	timer := metrics.StartTimer()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return j.run(ctx)
	}()

	if err != nil {
		q.failed.Inc()
		log.Warn("background task failed", zap.Error(err), zap.Duration("duration", timer.Duration()))
		return
	}

	q.done.Inc()
	log.Debug("background task done", zap.Duration("duration", timer.Duration()))
}

// Shutdown stops accepting work and waits for queued tasks, up to ctx's deadline.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.jobs)
		q.mu.Unlock()
	})

	finished := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
