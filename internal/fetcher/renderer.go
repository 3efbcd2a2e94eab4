package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Renderer loads the page in headless Chrome and returns the DOM after
// scripts ran. Each call starts its own browser so requests share nothing.
type Renderer struct {
	allocOpts []chromedp.ExecAllocatorOption
	timeout   time.Duration
}

// NewRenderer builds a Renderer with the given navigation timeout.
func NewRenderer(timeout time.Duration, userAgent string) *Renderer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	return &Renderer{allocOpts: opts, timeout: timeout}
}

// Fetch navigates to target and captures the outer HTML of the document.
func (r *Renderer) Fetch(ctx context.Context, target string) (*Page, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeoutCtx, cancel := context.WithTimeout(browserCtx, r.timeout)
	defer cancel()

	var html, location string
	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: render: %v", ErrFetchFailed, err)
	}

	return &Page{
		URL:      target,
		FinalURL: location,
		HTML:     []byte(html),
	}, nil
}

var _ Fetcher = (*Renderer)(nil)
