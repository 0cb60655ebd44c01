package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/nao1215/a11yscan/internal/model"
)

// ErrTimeout is returned when a fetch exceeds its deadline, either the
// fetcher's fixed maximum or the caller's per-fetch timeout.
var ErrTimeout = errors.New("fetch timed out")

// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs.
var ErrInvalidURL = errors.New("invalid URL: must be an absolute http or https URL")

// FetchError describes a failed fetch that was not a timeout or cancellation.
// StatusCode is zero for transport failures.
type FetchError struct {
	URL        string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Classify maps a fetch error onto the run error taxonomy.
func Classify(err error) model.ErrorKind {
	switch {
	case errors.Is(err, context.Canceled):
		return model.ErrorKindCancelled
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return model.ErrorKindTimeout
	default:
		return model.ErrorKindFetchFailed
	}
}

// normalizeError translates a source error into the package's error contract.
// parent is the caller's context; ctx is the one bounded by the fixed maximum.
func normalizeError(parent, ctx context.Context, rawURL string, err error) error {
	if errors.Is(parent.Err(), context.Canceled) {
		return context.Canceled
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, rawURL)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s", ErrTimeout, rawURL)
	}

	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return &FetchError{URL: rawURL, Message: err.Error(), Err: err}
}
