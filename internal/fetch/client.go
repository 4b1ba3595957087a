// Package fetch provides the shared HTTP client used for all page fetches.
// A single client with a cookie jar is reused across a crawl to preserve
// session cookies and reduce blocks.
package fetch

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// Client wraps http.Client with listing-site defaults: per-request timeout,
// rotating User-Agent, Accept-Language and Referer headers, and a jittered
// politeness delay between detail fetches.
type Client struct {
	httpClient *http.Client
	referer    string
	delayMin   time.Duration
	delayMax   time.Duration

	mu      sync.Mutex
	rng     *rand.Rand
	uaIndex int
}

func NewClient(timeout time.Duration, referer string, delayMin, delayMax time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		httpClient: &http.Client{Timeout: timeout, Jar: jar},
		referer:    referer,
		delayMin:   delayMin,
		delayMax:   delayMax,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Get fetches a URL and returns the response body. Non-2xx statuses are
// returned as errors so callers can treat them as a failed page fetch.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.nextUserAgent())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if c.referer != "" {
		req.Header.Set("Referer", c.referer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Throttle sleeps for a uniform random duration between the configured delay
// bounds, or until the context is cancelled.
func (c *Client) Throttle(ctx context.Context) {
	c.mu.Lock()
	span := c.delayMax - c.delayMin
	d := c.delayMin
	if span > 0 {
		d += time.Duration(c.rng.Int63n(int64(span)))
	}
	c.mu.Unlock()

	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// nextUserAgent rotates through the pool sequentially.
func (c *Client) nextUserAgent() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ua := userAgents[c.uaIndex]
	c.uaIndex = (c.uaIndex + 1) % len(userAgents)
	return ua
}
