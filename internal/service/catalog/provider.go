package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	model "github.com/ashleyhq/chat-backend/internal/model/catalog"
)

// Provider fetches a full catalog snapshot from wherever personas and
// models are administered.
type Provider interface {
	Fetch(ctx context.Context) (model.Catalog, error)
}

// StaticProvider serves the built-in seed registry. Used when no remote
// catalog endpoint is configured.
type StaticProvider struct{}

// Fetch returns the seed catalog.
func (StaticProvider) Fetch(_ context.Context) (model.Catalog, error) {
	return model.Seed(), nil
}

// HTTPProvider fetches the catalog from a remote admin service.
type HTTPProvider struct {
	client *resty.Client
}

// NewHTTPProvider builds a provider against the given base URL.
func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &HTTPProvider{client: client}
}

// Fetch requests GET {base}/catalog and decodes the snapshot.
func (p *HTTPProvider) Fetch(ctx context.Context) (model.Catalog, error) {
	var snapshot model.Catalog
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&snapshot).
		Get("/catalog")
	if err != nil {
		return model.Catalog{}, fmt.Errorf("catalog request failed: %w", err)
	}
	if resp.IsError() {
		return model.Catalog{}, fmt.Errorf("catalog request returned status %d", resp.StatusCode())
	}
	return snapshot, nil
}
