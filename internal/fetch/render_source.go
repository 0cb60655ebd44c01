package fetch

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
)

// RenderSource loads pages in headless Chrome and returns the DOM after
// scripts have run. Pages that build their content client-side are only
// auditable this way.
//
// The browser is started lazily on the first fetch and shared by all
// fetches; each fetch gets its own tab. Call Close to stop the browser.
type RenderSource struct {
	allocOpts []chromedp.ExecAllocatorOption
	readySel  string

	once          sync.Once
	startErr      error
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// RenderOption configures a RenderSource.
type RenderOption func(*RenderSource)

// WithExecPath sets the Chrome executable path.
func WithExecPath(path string) RenderOption {
	return func(r *RenderSource) {
		if path != "" {
			r.allocOpts = append(r.allocOpts, chromedp.ExecPath(path))
		}
	}
}

// WithRenderUserAgent sets the browser User-Agent.
func WithRenderUserAgent(ua string) RenderOption {
	return func(r *RenderSource) {
		if ua != "" {
			r.allocOpts = append(r.allocOpts, chromedp.UserAgent(ua))
		}
	}
}

// WithReadySelector sets the element to wait for before capturing the DOM.
func WithReadySelector(sel string) RenderOption {
	return func(r *RenderSource) {
		if sel != "" {
			r.readySel = sel
		}
	}
}

// NewRenderSource creates a RenderSource. No browser is launched until
// the first fetch.
func NewRenderSource(opts ...RenderOption) *RenderSource {
	r := &RenderSource{
		allocOpts: append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
		),
		readySel: "body",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RenderSource) start() {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), r.allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// An empty Run launches the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		r.startErr = fmt.Errorf("failed to start headless browser: %w", err)
		return
	}

	r.allocCancel = allocCancel
	r.browserCtx = browserCtx
	r.browserCancel = browserCancel
}

// FetchRaw implements Source.
func (r *RenderSource) FetchRaw(ctx context.Context, rawURL string) (*RawPage, error) {
	r.once.Do(r.start)
	if r.startErr != nil {
		return nil, r.startErr
	}

	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(rawURL))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	page := &RawPage{StatusCode: 200}
	if resp != nil {
		page.StatusCode = int(resp.Status)
		page.ContentType = resp.MimeType
		if page.StatusCode < 200 || page.StatusCode > 299 {
			return nil, &FetchError{URL: rawURL, StatusCode: page.StatusCode, Message: resp.StatusText}
		}
	}

	var markup, location string
	err = chromedp.Run(tabCtx,
		chromedp.WaitReady(r.readySel, chromedp.ByQuery),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	page.Body = []byte(markup)
	page.FinalURL = location
	return page, nil
}

// Close stops the browser if it was started.
func (r *RenderSource) Close() error {
	if r.browserCancel != nil {
		r.browserCancel()
	}
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}
