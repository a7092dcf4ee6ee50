package scraper

import (
	"context"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders pages in headless Chrome, for storefronts that build
// the gallery with JavaScript.
type BrowserFetcher struct {
	chromePath string
	userAgent  string
	timeout    time.Duration
}

func NewBrowserFetcher(chromePath, userAgent string, timeout time.Duration) *BrowserFetcher {
	if chromePath == "" {
		chromePath = os.Getenv("CHROME_PATH")
	}
	if chromePath == "" {
		chromePath = "/usr/bin/chromium-browser" // Docker/Linux default
	}
	if userAgent == "" {
		userAgent = USER_AGENT
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BrowserFetcher{chromePath: chromePath, userAgent: userAgent, timeout: timeout}
}

func (b *BrowserFetcher) FetchHTML(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(b.chromePath),
		chromedp.UserAgent(b.userAgent),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("headless", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()
	tabCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	tabCtx, cancel = context.WithTimeout(tabCtx, b.timeout)
	defer cancel()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// gallery thumbnails are injected after load
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}
