package scraper

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutri-lens/config"
	"nutri-lens/errs"
)

type staticFetcher struct {
	html string
	err  error
}

func (s staticFetcher) FetchHTML(ctx context.Context, url string) (string, error) {
	return s.html, s.err
}

func productPage(zoomed string, thumbs ...string) string {
	var b bytes.Buffer
	b.WriteString("<html><body>")
	if zoomed != "" {
		fmt.Fprintf(&b, `<div class="js-image-zoom__zoomed-image" style="background-image: url(&quot;%s&quot;); width: 500px"></div>`, zoomed)
	}
	b.WriteString(`<ul>`)
	for _, src := range thumbs {
		fmt.Fprintf(&b, `<li class="thumbnail"><img src="%s"></li>`, src)
	}
	b.WriteString(`</ul></body></html>`)
	return b.String()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestExtractImageURLs(t *testing.T) {
	html := productPage(
		"https://www.bbassets.com/media/uploads/p/l/40.jpg",
		"https://www.bbassets.com/media/uploads/p/s/40.jpg?tr=w-256,q=80",
		"https://www.bbassets.com/media/uploads/p/s/41.jpg?tr=w-256,q=80",
		"http://insecure.example.com/p/s/42.jpg",
		"data:image/gif;base64,R0lGOD",
	)

	urls, err := ExtractImageURLs(html)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.bbassets.com/media/uploads/p/l/40.jpg",
		"https://www.bbassets.com/media/uploads/p/l/41.jpg",
	}, urls)
}

func TestExtractImageURLsWithoutGallery(t *testing.T) {
	urls, err := ExtractImageURLs("<html><body><p>out of stock</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestFilterImageURLsKeepsOrder(t *testing.T) {
	got := FilterImageURLs([]string{
		"https://a/2.jpg", "https://a/1.jpg", "https://a/2.jpg", "https://data:image/x", "ftp://a/3.jpg",
	})
	assert.Equal(t, []string{"https://a/2.jpg", "https://a/1.jpg"}, got)
}

func TestFilterImageURLsDropsInlineImages(t *testing.T) {
	got := FilterImageURLs([]string{
		"data:image/png;base64,iVBORw0KGgo=",
		"https://www.bbassets.com/media/uploads/p/l/40001_1.jpg",
		"data:image/svg+xml;utf8,<svg xmlns='http://www.w3.org/2000/svg'/>",
		"https://www.bbassets.com/media/uploads/p/l/40001_2.jpg",
	})
	assert.Equal(t, []string{
		"https://www.bbassets.com/media/uploads/p/l/40001_1.jpg",
		"https://www.bbassets.com/media/uploads/p/l/40001_2.jpg",
	}, got)
}

func TestExtractImageURLsDropsInlineImages(t *testing.T) {
	html := `<html><body>
<div class="thumbnail"><img src="data:image/png;base64,iVBORw0KGgo="></div>
<div class="thumbnail"><img src="data:image/svg+xml;utf8,%3Csvg%3E"></div>
<div class="thumbnail"><img src="https://www.bbassets.com/media/uploads/p/s/40001_1.jpg?tr=w-256,q=80"></div>
</body></html>`
	got, err := ExtractImageURLs(html)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.bbassets.com/media/uploads/p/l/40001_1.jpg"}, got)
}

func TestAcquireInsufficientImages(t *testing.T) {
	a := NewAcquirer(staticFetcher{html: productPage("https://cdn.example.com/p/l/1.jpg")}, config.ScraperConfig{})

	_, err := a.Acquire(context.Background(), "https://www.bigbasket.com/pd/1/")
	assert.ErrorIs(t, err, errs.ErrInsufficientImages)
}

func TestAcquireDownloadsImages(t *testing.T) {
	body := pngBytes(t)
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	html := productPage(srv.URL+"/p/l/1.png", srv.URL+"/p/s/2.png?tr=w-256,q=80", srv.URL+"/p/s/3.png")
	a := NewAcquirer(staticFetcher{html: html}, config.ScraperConfig{MaxImages: 2, DownloadWorkers: 2})
	a.client = srv.Client()

	got, err := a.Acquire(context.Background(), "https://www.bigbasket.com/pd/1/")
	require.NoError(t, err)
	require.Len(t, got.URLs, 2, "gallery is capped at max_images")
	require.Len(t, got.Images, 2)
	for _, img := range got.Images {
		assert.Equal(t, "image/png", img.MIMEType)
		assert.Equal(t, body, img.Data)
	}
}

func TestAcquireFailsOnBrokenImage(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	a := NewAcquirer(staticFetcher{html: productPage(srv.URL+"/a.png", srv.URL+"/b.png")}, config.ScraperConfig{})
	a.client = srv.Client()

	_, err := a.Acquire(context.Background(), "https://www.bigbasket.com/pd/1/")
	assert.Error(t, err)
}

func TestAcquireRejectsOversizedImage(t *testing.T) {
	body := pngBytes(t)
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	a := NewAcquirer(staticFetcher{html: productPage(srv.URL+"/a.png", srv.URL+"/b.png")},
		config.ScraperConfig{MaxImageBytes: int64(len(body) - 1)})
	a.client = srv.Client()

	_, err := a.Acquire(context.Background(), "https://www.bigbasket.com/pd/1/")
	assert.ErrorContains(t, err, "exceeds")
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "nutri-lens-test", r.Header.Get("User-Agent"))
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	html, err := NewHTTPFetcher(0, "nutri-lens-test").FetchHTML(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", html)
}
