package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"nutri-lens/config"
	"nutri-lens/errs"
	"nutri-lens/llm"
)

// minProductImages is the smallest gallery the extractor is given.
const minProductImages = 2

// Acquisition is what the scraper hands to the rest of the pipeline.
type Acquisition struct {
	URLs   []string
	Images []llm.Image
}

// Acquirer turns a product page URL into downloaded product images.
type Acquirer struct {
	fetcher   PageFetcher
	client    *http.Client
	userAgent string
	maxBytes  int64
	maxImages int
	workers   int
}

func NewAcquirer(fetcher PageFetcher, cfg config.ScraperConfig) *Acquirer {
	a := &Acquirer{
		fetcher:   fetcher,
		client:    &http.Client{Timeout: cfg.Timeout()},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxImageBytes,
		maxImages: cfg.MaxImages,
		workers:   cfg.DownloadWorkers,
	}
	if a.userAgent == "" {
		a.userAgent = USER_AGENT
	}
	if a.maxBytes <= 0 {
		a.maxBytes = 8 << 20
	}
	if a.maxImages <= 0 {
		a.maxImages = 8
	}
	if a.workers <= 0 {
		a.workers = 4
	}
	return a
}

// Acquire fetches the page, extracts the gallery and downloads every image.
// Fewer than two usable image URLs is reported as errs.ErrInsufficientImages.
func (a *Acquirer) Acquire(ctx context.Context, pageURL string) (*Acquisition, error) {
	start := time.Now()
	html, err := a.fetcher.FetchHTML(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch product page: %w", err)
	}

	urls, err := ExtractImageURLs(html)
	if err != nil {
		return nil, fmt.Errorf("parse product page: %w", err)
	}
	if len(urls) < minProductImages {
		return nil, fmt.Errorf("%w: found %d", errs.ErrInsufficientImages, len(urls))
	}
	if len(urls) > a.maxImages {
		urls = urls[:a.maxImages]
	}

	images := make([]llm.Image, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, u := range urls {
		g.Go(func() error {
			img, err := a.download(gctx, u)
			if err != nil {
				return fmt.Errorf("download %s: %w", u, err)
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	config.InfoWithFields("product images acquired", config.Fields{
		"url":         pageURL,
		"image_count": len(images),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return &Acquisition{URLs: urls, Images: images}, nil
}

func (a *Acquirer) download(ctx context.Context, url string) (llm.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return llm.Image{}, err
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return llm.Image{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return llm.Image{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// one extra byte tells an oversized image apart from one exactly at the limit
	data, err := io.ReadAll(io.LimitReader(resp.Body, a.maxBytes+1))
	if err != nil {
		return llm.Image{}, err
	}
	if int64(len(data)) > a.maxBytes {
		return llm.Image{}, fmt.Errorf("image exceeds %d bytes", a.maxBytes)
	}
	if len(data) == 0 {
		return llm.Image{}, fmt.Errorf("empty image body")
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "image/") {
			mime = strings.TrimSpace(strings.Split(ct, ";")[0])
		} else {
			return llm.Image{}, fmt.Errorf("not an image: %s", mime)
		}
	}
	return llm.Image{MIMEType: mime, Data: data}, nil
}
