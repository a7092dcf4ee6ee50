package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"nutri-lens/config"
)

const USER_AGENT = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"

// maxPageBytes caps how much of a product page is read.
const maxPageBytes = 8 << 20

// PageFetcher returns the HTML of a product page.
type PageFetcher interface {
	FetchHTML(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches pages with a plain GET.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if userAgent == "" {
		userAgent = USER_AGENT
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (f *HTTPFetcher) FetchHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// NewPageFetcher picks the fetcher named by scraper.fetch_mode.
func NewPageFetcher(cfg config.ScraperConfig) PageFetcher {
	if cfg.FetchMode == "browser" {
		return NewBrowserFetcher(cfg.ChromePath, cfg.UserAgent, cfg.Timeout())
	}
	return NewHTTPFetcher(cfg.Timeout(), cfg.UserAgent)
}
