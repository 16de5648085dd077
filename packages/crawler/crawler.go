// Package crawler
package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"pricealert/packages/domain"
)

const (
	DefaultTimeout = 8 * time.Second
	UserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	Accept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	// MaxBodyBytes caps how much of a page is read; the rest is dropped.
	MaxBodyBytes = 10 << 20
)

type Crawler struct {
	client  *http.Client
	maxBody int64
}

func New(timeout time.Duration) *Crawler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Crawler{
		client:  &http.Client{Timeout: timeout},
		maxBody: MaxBodyBytes,
	}
}

// Fetch issues exactly one GET. Any HTTP response is returned as a page; only
// transport failures become errors, wrapped in *domain.FetchError.
func (c *Crawler) Fetch(ctx context.Context, rawURL string) (*domain.FetchedPage, error) {
	slog.Debug("Starting page fetch", "url", rawURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", Accept)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	page := &domain.FetchedPage{StatusCode: resp.StatusCode, FinalURL: resp.Request.URL.String()}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Debug("Fetch returned bad status code", "url", rawURL, "status_code", resp.StatusCode)
		return page, nil
	}

	page.Body, err = io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, &domain.FetchError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(page.Body)) > c.maxBody {
		page.Body = page.Body[:c.maxBody]
		page.Truncated = true
		slog.Debug("Page body truncated", "url", rawURL, "limit_bytes", c.maxBody)
	}
	return page, nil
}
