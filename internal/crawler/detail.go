package crawler

import (
	"bytes"
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/isuckplshelpmetestimony/Kairos/internal/domain"
)

// fetchDetails visits each stub's detail page sequentially, in listing
// order, with a jittered delay between fetches. A failed fetch skips that
// listing only. Once the detail budget deadline passes, fetching stops early
// and whatever was already produced is kept.
func (c *Crawler) fetchDetails(ctx context.Context, stubs []domain.ListingStub, deadline time.Time) ([]domain.RawDetail, bool) {
	details := make([]domain.RawDetail, 0, len(stubs))
	earlyExit := false

	for i, stub := range stubs {
		if ctx.Err() != nil {
			earlyExit = true
			break
		}
		if time.Now().After(deadline) {
			c.logger.Warn("detail budget exhausted, stopping early",
				zap.Int("fetched", len(details)),
				zap.Int("remaining", len(stubs)-i),
			)
			earlyExit = true
			break
		}
		if i > 0 {
			c.client.Throttle(ctx)
		}

		body, err := c.client.Get(ctx, stub.URL)
		if err != nil {
			c.logger.Warn("detail fetch failed", zap.String("sku", stub.ID), zap.Error(err))
			c.metrics.IncErrors("detail_fetch_failed")
			continue
		}
		c.metrics.DetailsTotal.Inc()

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			c.logger.Warn("detail parse failed", zap.String("sku", stub.ID), zap.Error(err))
			continue
		}

		details = append(details, extractDetail(doc, stub))
	}

	return details, earlyExit
}
