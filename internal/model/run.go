package model

import (
	"errors"
	"fmt"
	"time"
)

// Bounds for RunConfig values.
const (
	MinConcurrency = 1
	MaxConcurrency = 10

	MinInterBatchDelay = 0
	MaxInterBatchDelay = 5 * time.Second

	MinPerFetchTimeout = 5 * time.Second
	MaxPerFetchTimeout = 30 * time.Second
)

// Default RunConfig values.
const (
	DefaultConcurrency     = 3
	DefaultInterBatchDelay = 500 * time.Millisecond
	DefaultPerFetchTimeout = 15 * time.Second
)

var (
	// ErrInvalidConcurrency is returned when Concurrency is outside [1,10].
	ErrInvalidConcurrency = errors.New("concurrency must be between 1 and 10")

	// ErrInvalidInterBatchDelay is returned when InterBatchDelay is outside [0,5s].
	ErrInvalidInterBatchDelay = errors.New("inter-batch delay must be between 0s and 5s")

	// ErrInvalidPerFetchTimeout is returned when PerFetchTimeout is outside [5s,30s].
	ErrInvalidPerFetchTimeout = errors.New("per-fetch timeout must be between 5s and 30s")

	// ErrInvalidRequestsPerSecond is returned when RequestsPerSecond is negative.
	ErrInvalidRequestsPerSecond = errors.New("requests per second must not be negative")
)

// RunConfig holds the tuning knobs of one audit run.
// It is fixed for the lifetime of the run.
type RunConfig struct {
	// Concurrency is the maximum number of URLs processed at once.
	Concurrency int `json:"concurrency"`

	// InterBatchDelay is the pause inserted when every worker has finished
	// and work remains.
	InterBatchDelay time.Duration `json:"inter_batch_delay"`

	// PerFetchTimeout bounds a single page fetch.
	PerFetchTimeout time.Duration `json:"per_fetch_timeout"`

	// RequestsPerSecond optionally paces individual dispatches.
	// Zero disables pacing.
	RequestsPerSecond float64 `json:"requests_per_second,omitempty"`
}

// DefaultRunConfig returns a RunConfig with default values.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Concurrency:     DefaultConcurrency,
		InterBatchDelay: DefaultInterBatchDelay,
		PerFetchTimeout: DefaultPerFetchTimeout,
	}
}

// Validate checks that every value is within its allowed range.
// It returns the first violation found.
func (c RunConfig) Validate() error {
	if c.Concurrency < MinConcurrency || c.Concurrency > MaxConcurrency {
		return fmt.Errorf("%w: got %d", ErrInvalidConcurrency, c.Concurrency)
	}
	if c.InterBatchDelay < MinInterBatchDelay || c.InterBatchDelay > MaxInterBatchDelay {
		return fmt.Errorf("%w: got %s", ErrInvalidInterBatchDelay, c.InterBatchDelay)
	}
	if c.PerFetchTimeout < MinPerFetchTimeout || c.PerFetchTimeout > MaxPerFetchTimeout {
		return fmt.Errorf("%w: got %s", ErrInvalidPerFetchTimeout, c.PerFetchTimeout)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidRequestsPerSecond, c.RequestsPerSecond)
	}
	return nil
}

// RunStatus is the lifecycle state of an audit run.
type RunStatus int

const (
	// RunStatusIdle means no run has started.
	RunStatusIdle RunStatus = iota
	// RunStatusRunning means URLs are being dispatched.
	RunStatusRunning
	// RunStatusPaused means no new URLs start until resumed.
	RunStatusPaused
	// RunStatusCompleted means every URL was processed.
	RunStatusCompleted
	// RunStatusCancelled means the run was stopped early.
	RunStatusCancelled
)

// String returns the lowercase name of the status.
func (s RunStatus) String() string {
	switch s {
	case RunStatusIdle:
		return "idle"
	case RunStatusRunning:
		return "running"
	case RunStatusPaused:
		return "paused"
	case RunStatusCompleted:
		return "completed"
	case RunStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s RunStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsTerminal reports whether the status can no longer change.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusCancelled
}

// IsActive reports whether a run is in progress.
func (s RunStatus) IsActive() bool {
	return s == RunStatusRunning || s == RunStatusPaused
}

// ErrorKind classifies a run error.
type ErrorKind int

const (
	// ErrorKindFetchFailed covers non-2xx responses and transport failures.
	ErrorKindFetchFailed ErrorKind = iota
	// ErrorKindTimeout means the fetch exceeded its deadline.
	ErrorKindTimeout
	// ErrorKindEvaluatorFailure means a rule returned an error or panicked.
	ErrorKindEvaluatorFailure
	// ErrorKindCancelled means the run was cancelled. Never reported to observers.
	ErrorKindCancelled
	// ErrorKindSystemFailure is an orchestrator-level failure.
	ErrorKindSystemFailure
)

// String returns the machine-readable name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindFetchFailed:
		return "fetch_failed"
	case ErrorKindTimeout:
		return "timeout"
	case ErrorKindEvaluatorFailure:
		return "evaluator_failure"
	case ErrorKindCancelled:
		return "cancelled"
	case ErrorKindSystemFailure:
		return "system_failure"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// SystemURL is the URL recorded for orchestrator-level failures.
const SystemURL = "system"

// RunError records one failure during a run.
type RunError struct {
	URL       string    `json:"url"`
	Message   string    `json:"message"`
	Kind      ErrorKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e RunError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.URL, e.Kind, e.Message)
}

// RunState is a snapshot of an audit run.
type RunState struct {
	RunID          string     `json:"run_id"`
	Status         RunStatus  `json:"status"`
	CompletedCount int        `json:"completed_count"`
	TotalCount     int        `json:"total_count"`
	CurrentURL     string     `json:"current_url"`
	Errors         []RunError `json:"errors"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     time.Time  `json:"finished_at,omitzero"`
}

// Clone returns a deep copy so callers never share the error slice.
func (s RunState) Clone() RunState {
	out := s
	if s.Errors != nil {
		out.Errors = make([]RunError, len(s.Errors))
		copy(out.Errors, s.Errors)
	}
	return out
}

// Duration returns the elapsed time of the run.
// For unfinished runs it returns zero.
func (s RunState) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Progress is delivered to observers when a URL starts or finishes.
type Progress struct {
	// CurrentURL is the URL being started, or the next pending URL after
	// a completion. Empty when nothing remains.
	CurrentURL string `json:"current_url"`
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
}
