package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	zoomedImageSelector = ".js-image-zoom__zoomed-image"
	thumbnailSelector   = ".thumbnail img"
)

var cssURLPattern = regexp.MustCompile(`url\(\s*["']?([^"')]+)["']?\s*\)`)

// thumbnails are served small; the large rendition lives under /p/l/ without the resize query
var thumbnailRewriter = strings.NewReplacer("/p/s/", "/p/l/", "?tr=w-256,q=80", "")

// ExtractImageURLs collects product image URLs from a vendor product page:
// the zoomed main image first, then every thumbnail upgraded to its large rendition.
// The result is de-duplicated in first-seen order and holds only https URLs.
func ExtractImageURLs(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var candidates []string
	if style, ok := doc.Find(zoomedImageSelector).First().Attr("style"); ok {
		if m := cssURLPattern.FindStringSubmatch(style); len(m) == 2 {
			candidates = append(candidates, strings.TrimSpace(m[1]))
		}
	}

	doc.Find(thumbnailSelector).Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			return
		}
		candidates = append(candidates, thumbnailRewriter.Replace(strings.TrimSpace(src)))
	})

	return FilterImageURLs(candidates), nil
}

// FilterImageURLs keeps https URLs that are not inline data, dropping repeats.
func FilterImageURLs(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if !strings.HasPrefix(u, "https://") || strings.Contains(u, "data:image") {
			continue
		}
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
