// Package storage keeps product images in Google Cloud Storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"nutri-lens/config"
)

// ObjectStore persists transcoded product images and hands back public URLs.
type ObjectStore interface {
	Store(ctx context.Context, png []byte) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

type GCSStore struct {
	client    *gcs.Client
	bucket    string
	cdnDomain string
	prefix    string
}

func NewGCSStore(ctx context.Context, cfg config.StorageConfig) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("missing storage bucket (GCS_BUCKET)")
	}

	opts := []option.ClientOption{option.WithScopes(gcs.ScopeReadWrite)}
	if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSStore{
		client:    client,
		bucket:    cfg.Bucket,
		cdnDomain: strings.TrimSuffix(cfg.CDNDomain, "/"),
		prefix:    strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (s *GCSStore) Close() error { return s.client.Close() }

// Store uploads png under <prefix>/product-<uuid>.png.
func (s *GCSStore) Store(ctx context.Context, png []byte) (string, error) {
	key := ObjectKey(s.prefix)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "image/png"
	w.CacheControl = "public, max-age=31536000"
	if _, err := io.Copy(w, bytes.NewReader(png)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return PublicURL(s.bucket, s.cdnDomain, key), nil
}

func (s *GCSStore) Delete(ctx context.Context, publicURL string) error {
	key, ok := KeyFromURL(s.bucket, s.cdnDomain, publicURL)
	if !ok {
		return fmt.Errorf("url %q does not belong to bucket %q", publicURL, s.bucket)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := s.client.Bucket(s.bucket).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, s.bucket, err)
	}
	return nil
}

func ObjectKey(prefix string) string {
	name := fmt.Sprintf("product-%s.png", uuid.NewString())
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func PublicURL(bucket, cdnDomain, key string) string {
	if cdnDomain != "" {
		if !strings.HasPrefix(cdnDomain, "http") {
			cdnDomain = "https://" + cdnDomain
		}
		return cdnDomain + "/" + key
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, key)
}

// KeyFromURL reverses PublicURL.
func KeyFromURL(bucket, cdnDomain, publicURL string) (string, bool) {
	base := strings.TrimSuffix(PublicURL(bucket, cdnDomain, ""), "/") + "/"
	if !strings.HasPrefix(publicURL, base) {
		return "", false
	}
	key := strings.TrimPrefix(publicURL, base)
	return key, key != ""
}
