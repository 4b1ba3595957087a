// Package crawler implements the crawl-and-extract pipeline: paginated
// listing discovery, per-listing detail extraction with layered selector
// fallbacks, and normalization into canonical records.
package crawler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/isuckplshelpmetestimony/Kairos/internal/config"
	"github.com/isuckplshelpmetestimony/Kairos/internal/domain"
	"github.com/isuckplshelpmetestimony/Kairos/internal/fetch"
	"github.com/isuckplshelpmetestimony/Kairos/internal/monitoring"
	"github.com/isuckplshelpmetestimony/Kairos/internal/normalize"
)

// Crawler runs one crawl invocation end to end. It is safe for concurrent
// use; all per-crawl state lives on the stack of Crawl.
type Crawler struct {
	client     *fetch.Client
	normalizer *normalize.Normalizer
	metrics    *monitoring.Metrics
	logger     *zap.Logger

	baseURL      string
	maxPages     int
	detailBudget time.Duration
	backoff      time.Duration
}

func New(cfg *config.Config, client *fetch.Client, n *normalize.Normalizer, m *monitoring.Metrics, l *zap.Logger) *Crawler {
	return &Crawler{
		client:       client,
		normalizer:   n,
		metrics:      m,
		logger:       l,
		baseURL:      cfg.ScraperBaseURL,
		maxPages:     cfg.ScraperMaxPages,
		detailBudget: cfg.DetailBudget(),
		backoff:      botChallengeBackoff,
	}
}

// Crawl collects listing stubs, fetches details sequentially, and normalizes
// the result. Failures local to one page or one listing are absorbed; the
// only error returned is context cancellation.
func (c *Crawler) Crawl(ctx context.Context, req domain.CrawlRequest, progress chan<- domain.ProgressEvent) (*domain.CrawlResult, error) {
	start := time.Now()

	stubs, pagesScanned := c.collectStubs(ctx, req, progress)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	details, earlyExit := c.fetchDetails(ctx, stubs, start.Add(c.detailBudget))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	props, series, reason := c.normalizer.Normalize(details, req.PropertyType)

	duration := time.Since(start)
	if len(props) == 0 {
		c.logger.Warn("adapter-empty",
			zap.String("region", req.Region),
			zap.String("property_type", req.PropertyType),
			zap.Int("count", req.Count),
			zap.Duration("duration", duration),
			zap.String("reason", reason),
		)
	} else {
		c.logger.Info("adapter-success",
			zap.String("region", req.Region),
			zap.String("property_type", req.PropertyType),
			zap.Int("count", req.Count),
			zap.Duration("duration", duration),
			zap.Int("properties_len", len(props)),
		)
	}

	return &domain.CrawlResult{
		Properties:   props,
		Stats:        normalize.Stats(series),
		Reason:       reason,
		PagesScanned: pagesScanned,
		EarlyExit:    earlyExit,
	}, nil
}

// listURL builds the index URL for a page number. Page 1 is the bare index.
func (c *Crawler) listURL(region, propertyType string, page int) string {
	base := fmt.Sprintf("%s/buy/%s/%s/", c.baseURL, region, propertyType)
	if page <= 1 {
		return base
	}
	return fmt.Sprintf("%s?page=%d", base, page)
}

// absolutize resolves a site-relative href against the configured base URL.
func (c *Crawler) absolutize(href string) string {
	if len(href) > 0 && href[0] == '/' {
		return c.baseURL + href
	}
	return href
}
