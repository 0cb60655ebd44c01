package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DefaultMaxConcurrent is used when WithMaxConcurrent is not given.
const DefaultMaxConcurrent = 3

// Worker processes a single item. Returned errors and panics are contained
// by the Scheduler and never stop the run.
type Worker[T any] func(ctx context.Context, item T) error

// Stats describes the progress of the current or most recent run.
type Stats struct {
	Total      int
	Dispatched int
	Completed  int
	Failed     int
	Active     int
	MaxActive  int
	Waves      int
}

// Option configures a Scheduler.
type Option func(*options)

type options struct {
	maxConcurrent   int
	interBatchDelay time.Duration
	rps             float64
	gate            *Gate
	logger          *slog.Logger
	onDispatch      func(active int)
	onSettle        func(active int)
}

// WithMaxConcurrent sets the maximum number of concurrently running workers.
// Non-positive values are ignored.
func WithMaxConcurrent(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConcurrent = n
		}
	}
}

// WithInterBatchDelay sets the quiet period between waves.
// Negative values are ignored.
func WithInterBatchDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.interBatchDelay = d
		}
	}
}

// WithRateLimit additionally paces every dispatch to at most rps per second.
// Zero disables the limit.
func WithRateLimit(rps float64) Option {
	return func(o *options) {
		if rps >= 0 {
			o.rps = rps
		}
	}
}

// WithGate shares a pause Gate with the caller.
func WithGate(g *Gate) Option {
	return func(o *options) {
		if g != nil {
			o.gate = g
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithActiveHook registers callbacks invoked with the new active worker count
// after each dispatch and each settle. They run under the scheduler's lock and
// must not block.
func WithActiveHook(onDispatch, onSettle func(active int)) Option {
	return func(o *options) {
		o.onDispatch = onDispatch
		o.onSettle = onSettle
	}
}

// Scheduler dispatches items to a Worker.
type Scheduler[T any] struct {
	opts    options
	limiter *rate.Limiter

	// sleep waits for the inter-batch delay; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	running bool
	drained bool
	stats   Stats
}

// New creates a Scheduler.
func New[T any](opts ...Option) *Scheduler[T] {
	o := options{
		maxConcurrent: DefaultMaxConcurrent,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.gate == nil {
		o.gate = NewGate()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	s := &Scheduler[T]{
		opts:  o,
		sleep: sleepContext,
	}
	if o.rps > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(o.rps), 1)
	}
	return s
}

// Run dispatches every item to worker, in index order, and blocks until all
// dispatched workers have returned.
//
// If ctx is cancelled, no further items are dispatched and Run returns the
// context error once in-flight workers have settled. Workers receive ctx and
// are expected to observe it.
func (s *Scheduler[T]) Run(ctx context.Context, items []T, worker Worker[T]) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.drained = false
	s.stats = Stats{Total: len(items)}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.opts.logger.Debug("scheduler started",
		"items", len(items),
		"max_concurrent", s.opts.maxConcurrent,
		"inter_batch_delay", s.opts.interBatchDelay,
	)

	sem := semaphore.NewWeighted(int64(s.opts.maxConcurrent))
	var wg sync.WaitGroup

	for i, item := range items {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		if err := s.awaitDispatch(ctx); err != nil {
			sem.Release(1)
			break
		}

		s.mu.Lock()
		s.stats.Dispatched++
		s.stats.Active++
		if s.stats.Active > s.stats.MaxActive {
			s.stats.MaxActive = s.stats.Active
		}
		if s.opts.onDispatch != nil {
			s.opts.onDispatch(s.stats.Active)
		}
		s.mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			err := s.invoke(ctx, item, worker)
			if err != nil {
				s.opts.logger.Debug("worker failed", "index", i, "error", err)
			}

			s.mu.Lock()
			s.stats.Active--
			s.stats.Completed++
			if err != nil {
				s.stats.Failed++
			}
			if s.stats.Active == 0 && s.stats.Dispatched < s.stats.Total {
				s.drained = true
			}
			if s.opts.onSettle != nil {
				s.opts.onSettle(s.stats.Active)
			}
			s.mu.Unlock()
		}()
	}

	wg.Wait()

	stats := s.Stats()
	s.opts.logger.Debug("scheduler finished",
		"dispatched", stats.Dispatched,
		"failed", stats.Failed,
		"max_active", stats.MaxActive,
	)

	return ctx.Err()
}

// awaitDispatch blocks until the next item may be dispatched: the gate is
// open, the inter-batch delay has elapsed after a drain, and the rate limiter
// allows it.
func (s *Scheduler[T]) awaitDispatch(ctx context.Context) error {
	if err := s.opts.gate.Wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	wave := s.drained
	s.drained = false
	if wave {
		s.stats.Waves++
	}
	s.mu.Unlock()

	if wave && s.opts.interBatchDelay > 0 {
		if err := s.sleep(ctx, s.opts.interBatchDelay); err != nil {
			return err
		}
		// A pause may have arrived during the quiet period.
		if err := s.opts.gate.Wait(ctx); err != nil {
			return err
		}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// invoke runs worker, converting a panic into an error.
func (s *Scheduler[T]) invoke(ctx context.Context, item T, worker Worker[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.opts.logger.Error("worker panicked", "panic", r)
			err = fmt.Errorf("worker panic: %v", r)
		}
	}()
	return worker(ctx, item)
}

// Pause stops new dispatches. In-flight workers keep running.
func (s *Scheduler[T]) Pause() {
	s.opts.gate.Pause()
}

// Resume allows dispatching again.
func (s *Scheduler[T]) Resume() {
	s.opts.gate.Resume()
}

// Paused reports whether dispatching is paused.
func (s *Scheduler[T]) Paused() bool {
	return s.opts.gate.Paused()
}

// Running reports whether Run is in progress.
func (s *Scheduler[T]) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stats returns a snapshot of the run counters.
func (s *Scheduler[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
