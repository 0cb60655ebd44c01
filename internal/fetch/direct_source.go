package fetch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/nao1215/a11yscan/internal/model"
	"golang.org/x/net/html/charset"
)

// DefaultUserAgent is sent by DirectSource unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (compatible; a11yscan/1.0; +https://github.com/nao1215/a11yscan)"

// DirectSource fetches pages with a plain HTTP GET.
type DirectSource struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
}

// DirectOption configures a DirectSource.
type DirectOption func(*DirectSource)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) DirectOption {
	return func(d *DirectSource) {
		if ua != "" {
			d.userAgent = ua
		}
	}
}

// WithMaxBodySize limits how many bytes of a response body are read.
func WithMaxBodySize(n int64) DirectOption {
	return func(d *DirectSource) {
		if n > 0 {
			d.maxBodySize = n
		}
	}
}

// NewDirectSource creates a DirectSource using the given client.
// A nil client falls back to http.DefaultClient.
func NewDirectSource(client *http.Client, opts ...DirectOption) *DirectSource {
	if client == nil {
		client = http.DefaultClient
	}
	d := &DirectSource{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: model.MaxPageSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FetchRaw implements Source.
func (d *DirectSource) FetchRaw(ctx context.Context, rawURL string) (*RawPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Message: err.Error(), Err: err}
	}
	SetBrowserHeaders(req.Header, d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024)) //nolint:errcheck // drain for connection reuse
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Message: statusText(resp)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBodySize))
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	return &RawPage{
		Body:        DecodeBody(body, contentType),
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
		ContentType: contentType,
	}, nil
}

// SetBrowserHeaders sets the headers a typical browser sends for a page load.
// Some sites refuse requests that look scripted.
func SetBrowserHeaders(h http.Header, userAgent string) {
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.5")
	h.Set("Cache-Control", "no-cache")
}

// DecodeBody converts body to UTF-8 using the declared or sniffed charset.
// If conversion fails the raw bytes are returned.
func DecodeBody(body []byte, contentType string) []byte {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return body
	}
	return decoded
}

// statusText returns the reason phrase of resp, e.g. "Not Found".
func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return strings.TrimSpace(resp.Status)
}
