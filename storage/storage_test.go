package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscodePNGFromJPEG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 3))
	src.Set(1, 1, color.RGBA{G: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, src, nil))

	out, err := TranscodePNG(buf.Bytes())
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 4, decoded.Bounds().Dx())
	assert.Equal(t, 3, decoded.Bounds().Dy())
}

func TestTranscodePNGRejectsGarbage(t *testing.T) {
	_, err := TranscodePNG([]byte("<html>not an image</html>"))
	assert.Error(t, err)
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("products")
	assert.True(t, strings.HasPrefix(key, "products/product-"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotEqual(t, key, ObjectKey("products"))

	assert.False(t, strings.Contains(ObjectKey(""), "/"))
}

func TestPublicURLRoundTrip(t *testing.T) {
	u := PublicURL("nutri-bucket", "", "products/product-1.png")
	assert.Equal(t, "https://storage.googleapis.com/nutri-bucket/products/product-1.png", u)
	key, ok := KeyFromURL("nutri-bucket", "", u)
	require.True(t, ok)
	assert.Equal(t, "products/product-1.png", key)

	u = PublicURL("nutri-bucket", "cdn.nutrilens.app", "products/product-1.png")
	assert.Equal(t, "https://cdn.nutrilens.app/products/product-1.png", u)
	key, ok = KeyFromURL("nutri-bucket", "cdn.nutrilens.app", u)
	require.True(t, ok)
	assert.Equal(t, "products/product-1.png", key)

	_, ok = KeyFromURL("nutri-bucket", "", "https://elsewhere.example.com/x.png")
	assert.False(t, ok)
}
