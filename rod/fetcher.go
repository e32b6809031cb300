// Package rod renders JavaScript-heavy pages with headless Chrome.
package rod

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fwojciec/scrapedoc"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements scrapedoc.Fetcher at compile time.
var _ scrapedoc.Fetcher = (*Fetcher)(nil)

// Default render settings.
const (
	DefaultFetchTimeout = 30 * time.Second
	DefaultWidth        = 1200
	DefaultHeight       = 800
)

// serializeJS returns the document markup with open shadow roots inlined
// into their hosts, so content rendered by web components is visible to
// selector-based extraction.
const serializeJS = `() => {
  const inline = (src, dst) => {
    const s = src.children, d = dst.children;
    for (let i = 0; i < s.length && i < d.length; i++) inline(s[i], d[i]);
    if (src.shadowRoot) dst.insertAdjacentHTML('beforeend', src.shadowRoot.innerHTML);
  };
  const clone = document.documentElement.cloneNode(true);
  inline(document.documentElement, clone);
  return '<!DOCTYPE html>' + clone.outerHTML;
}`

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager  *BrowserManager
	timeout  time.Duration
	width    int
	height   int
	maxPages int64
	logger   *slog.Logger
	closed   atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout bounds each Fetch, including navigation and load.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithViewport sets the page viewport in CSS pixels.
func WithViewport(width, height int) Option {
	return func(f *Fetcher) {
		f.width = width
		f.height = height
	}
}

// WithRecycleAfter sets how many pages are rendered before the browser is
// restarted.
func WithRecycleAfter(pages int64) Option {
	return func(f *Fetcher) {
		f.maxPages = pages
	}
}

// WithLogger sets the logger used for browser lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:  DefaultFetchTimeout,
		width:    DefaultWidth,
		height:   DefaultHeight,
		maxPages: DefaultMaxPages,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager(
		WithMaxPages(f.maxPages),
		WithWindowSize(f.width, f.height),
		WithManagerLogger(f.logger),
	)
	if err != nil {
		return nil, err
	}
	f.manager = manager

	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", scrapedoc.Errorf(scrapedoc.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := f.manager.NewPage()
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  f.width,
		Height: f.height,
	}); err != nil {
		return "", err
	}

	if err := page.Navigate(url); err != nil {
		return "", contextErr(ctx, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", contextErr(ctx, err)
	}

	res, err := page.Eval(serializeJS)
	if err != nil {
		return "", contextErr(ctx, err)
	}

	return res.Value.Str(), nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}

// contextErr prefers the context's error so callers can match deadline and
// cancellation with errors.Is.
func contextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
