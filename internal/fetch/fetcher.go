package fetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/a11yscan/internal/model"
)

// DefaultMaxTimeout is the fixed upper bound on a single fetch.
const DefaultMaxTimeout = 15 * time.Second

// Fetcher turns URLs into parsed documents using a Source.
// It is safe for concurrent use if the Source is.
type Fetcher struct {
	source     Source
	maxTimeout time.Duration
	logger     *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxTimeout sets the fixed upper bound applied to every fetch.
func WithMaxTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.maxTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a Fetcher over the given source.
func New(source Source, opts ...Option) *Fetcher {
	f := &Fetcher{
		source:     source,
		maxTimeout: DefaultMaxTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves and parses one URL.
//
// The fixed maximum timeout is layered on top of ctx; whichever fires first
// aborts the fetch. Errors follow the package contract: context.Canceled
// when ctx was cancelled, ErrTimeout on any deadline, *FetchError otherwise.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, normalizeError(ctx, ctx, rawURL, err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, f.maxTimeout)
	defer cancel()

	start := time.Now()
	raw, err := f.source.FetchRaw(fetchCtx, rawURL)
	if err != nil {
		err = normalizeError(ctx, fetchCtx, rawURL, err)
		f.logger.Debug("fetch failed", "url", rawURL, "error", err, "elapsed", time.Since(start))
		return nil, err
	}

	page := &model.Page{
		URL:         rawURL,
		FinalURL:    raw.FinalURL,
		StatusCode:  raw.StatusCode,
		ContentType: raw.ContentType,
		Raw:         raw.Body,
	}
	page.TruncateRaw()
	page.ComputeDigest()

	f.logger.Debug("fetched page",
		"url", rawURL,
		"status", page.StatusCode,
		"bytes", len(page.Raw),
		"elapsed", time.Since(start),
	)

	return Parse(page), nil
}
