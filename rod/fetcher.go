// Package rod implements searchqa.Fetcher with a headless Chrome browser
// driven by github.com/go-rod/rod, for result pages that render their text
// with JavaScript.
package rod

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/searchqa"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/sync/semaphore"
)

// Defaults for Fetcher options.
const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultRenderDelay  = 500 * time.Millisecond
	DefaultMaxTabs      = 4
	DefaultMaxPages     = 75
)

// Ensure Fetcher implements searchqa.Fetcher at compile time.
var _ searchqa.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using headless Chrome. The browser is
// launched on the first Fetch, so a Fetcher that is never used costs
// nothing. Chrome leaks memory over long runs; the browser is restarted
// after MaxPages pages.
//
// Fetcher is safe for concurrent use; at most MaxTabs pages are open at once.
type Fetcher struct {
	timeout     time.Duration
	renderDelay time.Duration
	maxPages    int
	tabs        *semaphore.Weighted

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	pages    int
	active   sync.WaitGroup
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout bounds navigation and rendering of one page.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithRenderDelay sets how long to wait after load for scripts to run.
func WithRenderDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.renderDelay = d
	}
}

// WithMaxTabs limits concurrently open pages.
func WithMaxTabs(n int) Option {
	return func(f *Fetcher) {
		f.tabs = semaphore.NewWeighted(int64(max(n, 1)))
	}
}

// WithMaxPages sets how many pages are fetched before the browser restarts.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// NewFetcher creates a Fetcher. Close must be called when it is no longer needed.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     DefaultFetchTimeout,
		renderDelay: DefaultRenderDelay,
		maxPages:    DefaultMaxPages,
		tabs:        semaphore.NewWeighted(DefaultMaxTabs),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch navigates to url and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := f.tabs.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer f.tabs.Release(1)

	browser, err := f.acquire()
	if err != nil {
		return "", err
	}
	defer f.active.Done()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", searchqa.Errorf(searchqa.EUNAVAILABLE, "open tab: %v", err)
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(f.timeout)

	if err := page.Navigate(url); err != nil {
		return "", f.pageError(ctx, url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", f.pageError(ctx, url, err)
	}

	if f.renderDelay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.renderDelay):
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", f.pageError(ctx, url, err)
	}
	return html, nil
}

// acquire returns the running browser, launching or recycling it as
// needed. The caller must call f.active.Done when finished with it.
func (f *Fetcher) acquire() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil && f.maxPages > 0 && f.pages >= f.maxPages {
		// Wait for open pages on the old browser before closing it.
		f.active.Wait()
		f.shutdown()
	}

	if f.browser == nil {
		if err := f.launch(); err != nil {
			return nil, err
		}
	}

	f.pages++
	f.active.Add(1)
	return f.browser, nil
}

func (f *Fetcher) launch() error {
	l := launcher.New().
		Set("disable-dev-shm-usage").
		Set("disable-renderer-backgrounding").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return searchqa.Errorf(searchqa.EINTERNAL, "launching browser: %v", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	f.browser, f.launcher, f.pages = browser, l, 0
	return nil
}

// shutdown closes the browser. Must be called with mu held.
func (f *Fetcher) shutdown() error {
	var err error
	if f.browser != nil {
		err = f.browser.Close()
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Kill()
		f.launcher = nil
	}
	return err
}

func (f *Fetcher) pageError(ctx context.Context, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return searchqa.Errorf(searchqa.ETIMEOUT, "render %s: timed out after %s", url, f.timeout)
	}
	return searchqa.Errorf(searchqa.EUNAVAILABLE, "render %s: %v", url, err)
}

// Close releases browser resources. It is safe to call more than once.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active.Wait()
	return f.shutdown()
}
