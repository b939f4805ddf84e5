// Package pdf converts rendered HTML documents into PDF bytes using a
// shared headless Chromium process.
package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// A4 page geometry in inches, with 12mm margins.
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
	marginInches      = 0.4724
)

// Options configures the browser launch and per-render behavior.
type Options struct {
	Headless       bool
	NoSandbox      bool
	ExecutablePath string // empty means the bundled/system default
	RenderTimeout  time.Duration
}

// Engine owns one long-lived browser process shared by all renders in the
// process. Each Render opens its own tab, so calls may run concurrently;
// if the browser dies, the next call relaunches it transparently.
type Engine struct {
	opts   Options
	logger *slog.Logger

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewEngine creates an Engine. The browser is launched lazily on the
// first Render call, not here.
func NewEngine(opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = 90 * time.Second
	}
	return &Engine{
		opts:   opts,
		logger: logger,
	}
}

// browser returns a live browser context, launching or relaunching the
// process as needed.
func (e *Engine) browser() (context.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browserCtx != nil && e.browserCtx.Err() == nil {
		return e.browserCtx, nil
	}

	// Tear down any previous instance before relaunching.
	e.shutdownLocked()

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("headless", e.opts.Headless))
	if e.opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}
	if e.opts.ExecutablePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(e.opts.ExecutablePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Force the browser process to start now so launch failures surface
	// here instead of inside the first tab.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	e.allocCancel = allocCancel
	e.browserCtx = browserCtx
	e.browserCancel = browserCancel
	e.logger.Info("headless browser started",
		"headless", e.opts.Headless,
		"no_sandbox", e.opts.NoSandbox,
	)
	return e.browserCtx, nil
}

// Render prints an HTML document to A4 PDF bytes. A fresh tab is opened
// per call and closed before returning; the shared browser stays up.
// Failures propagate to the caller without retry, that is the job queue's
// concern.
func (e *Engine) Render(ctx context.Context, html string) ([]byte, error) {
	browserCtx, err := e.browser()
	if err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, e.opts.RenderTimeout)
	defer cancelTimeout()

	// Honor caller cancellation alongside the render timeout.
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		tabCtx, cancel = context.WithDeadline(tabCtx, deadline)
		defer cancel()
	}

	var buf []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidthInches).
				WithPaperHeight(paperHeightInches).
				WithMarginTop(marginInches).
				WithMarginBottom(marginInches).
				WithMarginLeft(marginInches).
				WithMarginRight(marginInches).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf, nil
}

// Close shuts the shared browser down. Safe to call multiple times; used
// by the graceful shutdown path.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdownLocked()
}

func (e *Engine) shutdownLocked() {
	if e.browserCancel != nil {
		e.browserCancel()
		e.browserCancel = nil
	}
	if e.allocCancel != nil {
		e.allocCancel()
		e.allocCancel = nil
	}
	e.browserCtx = nil
}
