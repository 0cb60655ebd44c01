package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/nao1215/a11yscan/internal/model"
)

// ProxyResponse is the JSON body returned by the proxy endpoint.
// A successful response fills HTML, Status, StatusText and URL;
// a failed one fills only Error. Some proxies report the post-redirect
// address as finalUrl instead of url; both are accepted.
type ProxyResponse struct {
	HTML       string `json:"html,omitempty"`
	Status     int    `json:"status,omitempty"`
	StatusText string `json:"statusText,omitempty"`
	URL        string `json:"url,omitempty"`
	FinalURL   string `json:"finalUrl,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ProxySource fetches pages through an HTML fetch-proxy endpoint.
type ProxySource struct {
	endpoint    string
	client      *http.Client
	maxBodySize int64
}

// ProxyOption configures a ProxySource.
type ProxyOption func(*ProxySource)

// WithProxyHTTPClient sets the HTTP client used to call the endpoint.
func WithProxyHTTPClient(c *http.Client) ProxyOption {
	return func(p *ProxySource) {
		p.client = c
	}
}

// WithProxyMaxBodySize limits the size of the endpoint's response.
func WithProxyMaxBodySize(n int64) ProxyOption {
	return func(p *ProxySource) {
		if n > 0 {
			p.maxBodySize = n
		}
	}
}

// NewProxySource creates a ProxySource for the given endpoint URL,
// e.g. "http://127.0.0.1:8787/api/proxy".
func NewProxySource(endpoint string, opts ...ProxyOption) (*ProxySource, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid proxy endpoint %q", endpoint)
	}

	p := &ProxySource{
		endpoint: endpoint,
		client:   http.DefaultClient,
		// JSON escaping can expand markup, so allow headroom over the page cap.
		maxBodySize: 2 * model.MaxPageSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// FetchRaw implements Source.
func (p *ProxySource) FetchRaw(ctx context.Context, rawURL string) (*RawPage, error) {
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("url", rawURL)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBodySize))
	if err != nil {
		return nil, err
	}

	var pr ProxyResponse
	decodeErr := json.Unmarshal(body, &pr)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := pr.Error
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, &FetchError{URL: rawURL, Message: "invalid proxy response: " + decodeErr.Error(), Err: decodeErr}
	}
	if pr.Error != "" {
		return nil, &FetchError{URL: rawURL, StatusCode: pr.Status, Message: pr.Error}
	}

	status := pr.Status
	if status == 0 {
		status = resp.StatusCode
	}
	finalURL := pr.URL
	if finalURL == "" {
		finalURL = pr.FinalURL
	}
	return &RawPage{
		Body:       []byte(pr.HTML),
		StatusCode: status,
		FinalURL:   finalURL,
	}, nil
}
