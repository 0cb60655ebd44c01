package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/nao1215/a11yscan/internal/fetch"
	"github.com/nao1215/a11yscan/internal/metrics"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/rules"
	"github.com/nao1215/a11yscan/internal/scheduler"
)

// PageFetcher retrieves and parses a single URL.
// *fetch.Fetcher satisfies it.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Document, error)
}

// dispatchFunc runs worker over urls with the pacing described by cfg.
type dispatchFunc func(ctx context.Context, cfg model.RunConfig, gate *scheduler.Gate, urls []string, worker scheduler.Worker[string]) error

// Orchestrator runs audits. One Orchestrator runs at most one audit at a time
// and may be reused once a run has finished.
type Orchestrator struct {
	fetcher PageFetcher
	rules   *rules.Set
	logger  *slog.Logger
	metrics *metrics.Collector
	now     func() time.Time

	// dispatch is replaced in tests.
	dispatch dispatchFunc

	mu      sync.Mutex
	state   model.RunState
	run     *run
	cancel  context.CancelFunc
	emitMu  sync.Mutex
	running bool
}

// run holds the per-run data shared by workers.
type run struct {
	urls     []string
	cfg      model.RunConfig
	observer Observer
	gate     *scheduler.Gate
	claimed  int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRules replaces the default rule set.
func WithRules(set *rules.Set) Option {
	return func(o *Orchestrator) {
		if set != nil {
			o.rules = set
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records run metrics into c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *Orchestrator) {
		o.metrics = c
	}
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an Orchestrator that fetches pages with fetcher.
func New(fetcher PageFetcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher: fetcher,
		rules:   rules.NewSet(),
		logger:  slog.Default(),
		now:     time.Now,
		state:   model.RunState{Status: model.RunStatusIdle},
	}
	o.dispatch = o.schedule
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start audits urls and blocks until the run completes or is cancelled.
//
// Per-URL failures are delivered through the observer and recorded in the
// run state; they never make Start fail. A cancelled run returns nil and its
// final state is available from State. Start returns an error only when the
// run could not begin: ErrNoURLs, ErrAlreadyRunning or an invalid cfg.
func (o *Orchestrator) Start(ctx context.Context, urls []string, cfg model.RunConfig, observer Observer) error {
	if len(urls) == 0 {
		return ErrNoURLs
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid run config: %w", err)
	}
	if observer == nil {
		observer = ObserverFuncs{}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return ErrAlreadyRunning
	}
	r := &run{
		urls:     append([]string(nil), urls...),
		cfg:      cfg,
		observer: observer,
		gate:     scheduler.NewGate(),
	}
	o.running = true
	o.run = r
	o.cancel = cancel
	o.state = model.RunState{
		RunID:      uuid.NewString(),
		Status:     model.RunStatusRunning,
		TotalCount: len(urls),
		Errors:     []model.RunError{},
		StartedAt:  o.now(),
	}
	runID := o.state.RunID
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.running = false
		o.cancel = nil
		o.mu.Unlock()
	}()

	o.logger.Info("audit started",
		"run_id", runID,
		"urls", len(urls),
		"concurrency", cfg.Concurrency,
		"inter_batch_delay", cfg.InterBatchDelay,
		"per_fetch_timeout", cfg.PerFetchTimeout,
	)

	err := o.safeDispatch(runCtx, r)

	o.mu.Lock()
	if o.state.Status == model.RunStatusCancelled || runCtx.Err() != nil {
		o.state.Status = model.RunStatusCancelled
		o.state.FinishedAt = o.now()
		o.state.CurrentURL = ""
		o.mu.Unlock()
		o.logger.Info("audit cancelled", "run_id", runID)
		return nil
	}
	o.mu.Unlock()

	if err != nil {
		o.logger.Error("audit failed", "run_id", runID, "error", err)
		o.reportError(r, model.RunError{
			URL:     model.SystemURL,
			Message: err.Error(),
			Kind:    model.ErrorKindSystemFailure,
		})
	}

	o.mu.Lock()
	if o.state.Status == model.RunStatusCancelled {
		o.mu.Unlock()
		return nil
	}
	o.state.Status = model.RunStatusCompleted
	o.state.FinishedAt = o.now()
	o.state.CurrentURL = ""
	final := o.state.Clone()
	o.mu.Unlock()

	o.emit(func() {
		r.observer.OnComplete()
	})

	o.logger.Info("audit completed",
		"run_id", runID,
		"completed", final.CompletedCount,
		"errors", len(final.Errors),
		"elapsed", final.Duration(),
	)
	return nil
}

// safeDispatch runs the dispatcher, turning a panic into an error.
func (o *Orchestrator) safeDispatch(ctx context.Context, r *run) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("scheduler panic: %v", rec)
		}
	}()

	err = o.dispatch(ctx, r.cfg, r.gate, r.urls, func(ctx context.Context, url string) error {
		return o.auditURL(ctx, r, url)
	})
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}

// schedule is the default dispatcher.
func (o *Orchestrator) schedule(ctx context.Context, cfg model.RunConfig, gate *scheduler.Gate, urls []string, worker scheduler.Worker[string]) error {
	s := scheduler.New[string](
		scheduler.WithMaxConcurrent(cfg.Concurrency),
		scheduler.WithInterBatchDelay(cfg.InterBatchDelay),
		scheduler.WithRateLimit(cfg.RequestsPerSecond),
		scheduler.WithGate(gate),
		scheduler.WithLogger(o.logger),
		scheduler.WithActiveHook(o.metrics.SetActiveWorkers, o.metrics.SetActiveWorkers),
	)
	return s.Run(ctx, urls, worker)
}

// auditURL is the per-URL worker.
func (o *Orchestrator) auditURL(ctx context.Context, r *run, url string) error {
	if err := r.gate.Wait(ctx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	o.mu.Lock()
	r.claimed++
	o.state.CurrentURL = url
	start := model.Progress{
		CurrentURL: url,
		Completed:  o.state.CompletedCount,
		Total:      o.state.TotalCount,
	}
	o.mu.Unlock()

	o.emit(func() {
		r.observer.OnProgress(start)
	})

	fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.PerFetchTimeout)
	began := time.Now()
	doc, err := o.fetcher.Fetch(fetchCtx, url)
	cancel()
	o.metrics.ObserveFetch(time.Since(began))

	var batch []model.Finding
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		kind := fetch.Classify(err)
		if kind == model.ErrorKindCancelled {
			kind = model.ErrorKindFetchFailed
		}
		o.logger.Warn("fetch failed", "url", url, "kind", kind, "error", err)
		o.metrics.URLProcessed(metrics.OutcomeFor(kind))
		o.reportError(r, model.RunError{URL: url, Message: err.Error(), Kind: kind})
	} else {
		batch, err = o.evaluate(ctx, r, url, doc.DOM)
		if err != nil {
			// Cancelled mid-page: the partial batch is discarded.
			return err
		}
		o.metrics.URLProcessed(metrics.OutcomeOK)
	}

	o.emit(func() {
		if len(batch) > 0 {
			o.metrics.AddFindings(batch)
			r.observer.OnResults(batch)
		}

		o.mu.Lock()
		o.state.CompletedCount++
		next := ""
		if r.claimed < len(r.urls) {
			next = r.urls[r.claimed]
		}
		o.state.CurrentURL = next
		end := model.Progress{
			CurrentURL: next,
			Completed:  o.state.CompletedCount,
			Total:      o.state.TotalCount,
		}
		o.mu.Unlock()

		r.observer.OnProgress(end)
	})
	return nil
}

// evaluate runs every rule over dom. A failing rule is reported and skipped;
// only cancellation makes evaluate return an error.
func (o *Orchestrator) evaluate(ctx context.Context, r *run, url string, dom *goquery.Document) ([]model.Finding, error) {
	batch := make([]model.Finding, 0)
	for _, e := range o.rules.Evaluators() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		findings, err := runEvaluator(ctx, e, url, dom)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			o.logger.Warn("rule failed", "rule", e.Name(), "url", url, "error", err)
			o.reportError(r, model.RunError{
				URL:     url,
				Message: e.Name() + ": " + err.Error(),
				Kind:    model.ErrorKindEvaluatorFailure,
			})
			continue
		}
		batch = append(batch, findings...)
	}
	return batch, nil
}

// runEvaluator calls e.Evaluate, converting a panic into an error.
func runEvaluator(ctx context.Context, e rules.Evaluator, url string, dom *goquery.Document) (findings []model.Finding, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			findings = nil
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return e.Evaluate(ctx, url, dom)
}

// reportError records e in the run state and delivers it to the observer.
func (o *Orchestrator) reportError(r *run, e model.RunError) {
	if e.Timestamp.IsZero() {
		e.Timestamp = o.now()
	}
	o.emit(func() {
		o.mu.Lock()
		o.state.Errors = append(o.state.Errors, e)
		o.mu.Unlock()

		o.metrics.AddError(e.Kind)
		r.observer.OnError(e)
	})
}

// emit runs fn with observer callbacks serialized. fn is skipped once the
// run has been cancelled.
func (o *Orchestrator) emit(fn func()) bool {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	o.mu.Lock()
	cancelled := o.state.Status == model.RunStatusCancelled
	o.mu.Unlock()
	if cancelled {
		return false
	}
	fn()
	return true
}

// Pause stops new URLs from starting. URLs already in flight finish.
// It reports whether the run was running.
func (o *Orchestrator) Pause() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.running || o.state.Status != model.RunStatusRunning {
		return false
	}
	o.state.Status = model.RunStatusPaused
	o.run.gate.Pause()
	o.logger.Info("audit paused", "run_id", o.state.RunID)
	return true
}

// Resume continues a paused run. It reports whether the run was paused.
func (o *Orchestrator) Resume() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.running || o.state.Status != model.RunStatusPaused {
		return false
	}
	o.state.Status = model.RunStatusRunning
	o.run.gate.Resume()
	o.logger.Info("audit resumed", "run_id", o.state.RunID)
	return true
}

// Cancel stops the run. In-flight fetches and rules are aborted and their
// partial results discarded. After Cancel returns the observer receives no
// further callbacks. It reports whether a run was active.
//
// Cancel waits for a callback that is being delivered, so an Observer must
// use Stop instead.
func (o *Orchestrator) Cancel() bool {
	if !o.stop() {
		return false
	}
	// Wait out a callback that was already being delivered.
	o.emitMu.Lock()
	o.emitMu.Unlock() //nolint:staticcheck // SA2001: used as a fence
	return true
}

// Stop cancels the run like Cancel but does not wait for a callback in
// flight. Called from an Observer callback, that callback is the last one
// delivered. It reports whether a run was active.
func (o *Orchestrator) Stop() bool {
	return o.stop()
}

func (o *Orchestrator) stop() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.running || !o.state.Status.IsActive() {
		return false
	}
	o.state.Status = model.RunStatusCancelled
	o.cancel()
	o.logger.Info("audit cancelling", "run_id", o.state.RunID)
	return true
}

// IsRunning reports whether a run is in progress, paused or not.
func (o *Orchestrator) IsRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Status.IsActive()
}

// IsPaused reports whether the run is paused.
func (o *Orchestrator) IsPaused() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Status == model.RunStatusPaused
}

// State returns a snapshot of the current or most recent run.
func (o *Orchestrator) State() model.RunState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Clone()
}
