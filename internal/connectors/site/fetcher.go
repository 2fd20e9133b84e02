// Package site fetches rendered pages from the site origin.
package site

import (
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/oswaldlabs/sitechat/internal/core/ports/driven"
	"github.com/oswaldlabs/sitechat/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 5 * time.Second

	// DefaultRate is the default outbound request rate against the origin.
	DefaultRate = 8.0

	// MaxBodyBytes caps how much of a page body is read. Pages larger
	// than this are truncated rather than ballooning the index.
	MaxBodyBytes = 2 << 20
)

// Ensure Fetcher implements the interface.
var _ driven.PageFetcher = (*Fetcher)(nil)

// Fetcher retrieves page bodies over HTTP with a bounded timeout and a
// proactive throttle against the origin. It never retries; retry policy
// belongs to the ingestion coordinator.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher creates a fetcher. A non-positive timeout or rps falls
// back to the defaults.
func NewFetcher(timeout time.Duration, rps float64) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if rps <= 0 {
		rps = DefaultRate
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Fetch retrieves one URL's body. On timeout, non-2xx status or network
// failure it returns ok=false; the caller skips that page.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, bool) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logger.Warn("fetch %s: build request: %v", url, err)
		return "", false
	}
	req.Header.Set("Accept", "text/html, text/markdown;q=0.9, text/plain;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		logger.Warn("fetch %s: %v", url, err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("fetch %s: status %d", url, resp.StatusCode)
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		logger.Warn("fetch %s: read body: %v", url, err)
		return "", false
	}

	logger.Debug("fetched %s (%d bytes)", url, len(body))
	return string(body), true
}
