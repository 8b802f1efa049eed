// Package fetch provides the paced page-fetcher collaborator used by the
// resolver and the audit classifier. A browser-automation backend would
// satisfy the same interface; only the plain HTTP backend is shipped.
package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a page is read. Search and profile pages are
// small; anything larger is not worth parsing.
const maxBodyBytes = 512 * 1024

// Fetcher retrieves a single page. Implementations must pace their own
// requests so callers can treat every Get as load-limit safe.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Config tunes the HTTP fetcher.
type Config struct {
	Timeout   time.Duration // per-request transport timeout
	Delay     time.Duration // minimum spacing between requests
	UserAgent string
}

// HTTPFetcher fetches pages via net/http with a fixed timeout and a hard
// inter-request delay. No retries, no backoff: a failed fetch is "no
// evidence" and the caller moves on.
type HTTPFetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewHTTP creates an HTTPFetcher.
func NewHTTP(cfg Config) *HTTPFetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (compatible; LinkerBot/1.0)"
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Delay), 1)
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		limiter:   limiter,
		userAgent: userAgent,
	}
}

// Get fetches a URL, waiting out the pacing delay first. Non-2xx statuses
// are errors.
func (f *HTTPFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetch: pacing wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: get")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "fetch: read body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, eris.Errorf("fetch: status %d for %s", resp.StatusCode, url)
	}

	return body, nil
}
