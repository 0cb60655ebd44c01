package fetch

import (
	"context"
)

// RawPage is what a Source returns for a successful fetch.
type RawPage struct {
	// Body is the decoded markup.
	Body []byte
	// StatusCode is the upstream HTTP status.
	StatusCode int
	// FinalURL is the URL after redirects, when known.
	FinalURL string
	// ContentType is the upstream content type, when known.
	ContentType string
}

// Source retrieves the markup of a single URL.
// Implementations return *FetchError for non-2xx upstream responses and
// must stop promptly when ctx is done.
type Source interface {
	FetchRaw(ctx context.Context, rawURL string) (*RawPage, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, rawURL string) (*RawPage, error)

// FetchRaw calls f(ctx, rawURL).
func (f SourceFunc) FetchRaw(ctx context.Context, rawURL string) (*RawPage, error) {
	return f(ctx, rawURL)
}
