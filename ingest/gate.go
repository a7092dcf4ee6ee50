// Package ingest guards the entrance of the product pipeline.
package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"nutri-lens/config"
	"nutri-lens/errs"
)

// Vendor is the storefront a submitted URL belongs to.
type Vendor struct {
	Name string
	Host string
}

// ProductReader answers whether a product page was already ingested.
type ProductReader interface {
	ExistsByVendorURLContaining(ctx context.Context, url string) (bool, error)
}

// Gate rejects unsupported and already-known product URLs before any network
// fetch or model call is made.
type Gate struct {
	vendors []config.VendorConfig
	reader  ProductReader
}

func NewGate(vendors []config.VendorConfig, reader ProductReader) *Gate {
	return &Gate{vendors: vendors, reader: reader}
}

// Check resolves the vendor of rawURL and makes sure it has not been seen.
func (g *Gate) Check(ctx context.Context, rawURL string) (Vendor, error) {
	rawURL = strings.TrimSpace(rawURL)
	vendor, err := g.Resolve(rawURL)
	if err != nil {
		return Vendor{}, err
	}

	exists, err := g.reader.ExistsByVendorURLContaining(ctx, rawURL)
	if err != nil {
		return Vendor{}, fmt.Errorf("dedup lookup: %w", err)
	}
	if exists {
		return Vendor{}, fmt.Errorf("%w: %s", errs.ErrDuplicateProduct, rawURL)
	}
	return vendor, nil
}

// Resolve matches rawURL against the vendor allow-list without touching storage.
func (g *Gate) Resolve(rawURL string) (Vendor, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return Vendor{}, fmt.Errorf("%w: malformed url %q", errs.ErrUnsupportedVendor, rawURL)
	}
	if u.Scheme != "https" {
		return Vendor{}, fmt.Errorf("%w: %s is not https", errs.ErrUnsupportedVendor, rawURL)
	}

	host := bareHost(u.Hostname())
	for _, v := range g.vendors {
		if bareHost(v.Host) != host {
			continue
		}
		name := v.Name
		if name == "" {
			name = VendorName(u.Hostname())
		}
		return Vendor{Name: name, Host: u.Hostname()}, nil
	}
	return Vendor{}, fmt.Errorf("%w: %s", errs.ErrUnsupportedVendor, u.Hostname())
}

// VendorName is the first host label after an optional "www.", e.g. bigbasket.
func VendorName(host string) string {
	host = bareHost(host)
	if i := strings.IndexByte(host, '.'); i > 0 {
		return host[:i]
	}
	return host
}

func bareHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(host)), "www.")
}
