package crawler

import (
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/isuckplshelpmetestimony/Kairos/internal/domain"
)

var (
	pageParamRe    = regexp.MustCompile(`[?&]page=(\d+)`)
	propertyPathRe = regexp.MustCompile(`/property/([^/?#]+)`)
)

// botChallengeMarkers are phrases the site serves instead of listings when it
// suspects automated traffic.
var botChallengeMarkers = []string{
	"security verification",
	"solve this math problem",
}

// botChallengeBackoff is the pause before the single retry on a challenged
// first page.
const botChallengeBackoff = 5 * time.Second

type candidate struct {
	id  string
	url string
}

// collectStubs scans index pages in increasing order and accumulates unique
// listing stubs until the requested count, the page cap, or cancellation.
// A failed page fetch is logged and skipped; it never aborts the crawl.
func (c *Crawler) collectStubs(ctx context.Context, req domain.CrawlRequest, progress chan<- domain.ProgressEvent) ([]domain.ListingStub, int) {
	maxPage := c.discoverMaxPage(ctx, req)
	if maxPage > c.maxPages {
		maxPage = c.maxPages
	}

	seen := make(map[string]struct{})
	var stubs []domain.ListingStub
	pagesScanned := 0

	for page := 1; page <= maxPage; page++ {
		if ctx.Err() != nil {
			break
		}

		body, err := c.client.Get(ctx, c.listURL(req.Region, req.PropertyType, page))
		if err != nil {
			c.logger.Warn("list page fetch failed", zap.Int("page", page), zap.Error(err))
			c.metrics.IncErrors("page_fetch_failed")
			continue
		}
		pagesScanned++
		c.metrics.PagesFetched.Inc()
		publish(progress, domain.ProgressEvent{PagesScanned: pagesScanned, MaxPages: maxPage})

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			c.logger.Warn("list page parse failed", zap.Int("page", page), zap.Error(err))
			continue
		}

		candidates := c.pageCandidates(doc)
		if page == 1 && len(candidates) == 0 && hasBotChallenge(doc) {
			candidates = c.retryChallengedPage(ctx, req)
		}

		c.logger.Info("page-candidates-found",
			zap.Int("page", page),
			zap.Int("candidates_on_page", len(candidates)),
		)

		for _, cand := range candidates {
			if _, dup := seen[cand.id]; dup {
				continue
			}
			seen[cand.id] = struct{}{}
			stubs = append(stubs, domain.ListingStub{ID: cand.id, URL: cand.url})
			if len(stubs) >= req.Count {
				break
			}
		}
		if len(stubs) >= req.Count {
			break
		}
	}

	c.logger.Info("pages-scanned-summary",
		zap.Int("pages_scanned", pagesScanned),
		zap.Int("capped_max_page", maxPage),
		zap.Int("requested_count", req.Count),
		zap.Int("collected", len(stubs)),
	)
	return stubs, pagesScanned
}

// discoverMaxPage reads the declared last page from the pagination widget,
// falling back to the highest page-number query parameter found in any
// anchor. Nothing found clamps to 1.
func (c *Crawler) discoverMaxPage(ctx context.Context, req domain.CrawlRequest) int {
	body, err := c.client.Get(ctx, c.listURL(req.Region, req.PropertyType, 1))
	if err != nil {
		c.logger.Warn("pagination discovery fetch failed", zap.Error(err))
		return 1
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return 1
	}

	maxPage := 1
	if raw, ok := doc.Find("div.BaseSection.Pagination").First().Attr("data-pagination-end"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > 1 {
			maxPage = n
		}
	}
	if maxPage == 1 {
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			if m := pageParamRe.FindStringSubmatch(href); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil && n > maxPage {
					maxPage = n
				}
			}
		})
	}
	return maxPage
}

// pageCandidates merges the three extraction strategies in priority order.
// Deduplication happens at insert time against the crawl-wide seen set.
func (c *Crawler) pageCandidates(doc *goquery.Document) []candidate {
	var out []candidate
	out = append(out, c.structuralCandidates(doc)...)
	out = append(out, c.attributeCandidates(doc)...)
	out = append(out, c.anchorCandidates(doc)...)
	return out
}

// structuralCandidates pairs each listing image container with its adjoining
// agent-row link, in document order.
func (c *Crawler) structuralCandidates(doc *goquery.Document) []candidate {
	images := doc.Find("div.ListingCell-MainImage")
	links := doc.Find("div.row.ListingCell-row.ListingCell-agent-redesign")
	n := images.Length()
	if links.Length() < n {
		n = links.Length()
	}

	var out []candidate
	for i := 0; i < n; i++ {
		sku, ok := images.Eq(i).Find("div").First().Attr("data-sku")
		if !ok || sku == "" {
			continue
		}
		href, ok := links.Eq(i).Find("a").First().Attr("href")
		if !ok || href == "" {
			continue
		}
		out = append(out, candidate{id: sku, url: c.absolutize(href)})
	}
	return out
}

// attributeCandidates collects elements carrying listing/sku-style data
// attributes paired with their first anchor.
func (c *Crawler) attributeCandidates(doc *goquery.Document) []candidate {
	var out []candidate
	doc.Find("[data-sku], [data-listing-id]").Each(func(_ int, s *goquery.Selection) {
		sku, _ := s.Attr("data-sku")
		if sku == "" {
			sku, _ = s.Attr("data-listing-id")
		}
		if sku == "" {
			return
		}
		href, ok := s.Find("a[href]").First().Attr("href")
		if !ok || href == "" {
			return
		}
		if !strings.HasPrefix(href, "/") && !strings.HasPrefix(href, c.baseURL) {
			return
		}
		out = append(out, candidate{id: sku, url: c.absolutize(href)})
	})
	return out
}

// anchorCandidates scans every anchor whose path matches the listing-detail
// URL pattern, deriving the id from the path segment.
func (c *Crawler) anchorCandidates(doc *goquery.Document) []candidate {
	var out []candidate
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.Contains(href, "/property/") {
			return
		}
		var abs string
		switch {
		case strings.HasPrefix(href, "/"):
			abs = c.absolutize(href)
		case strings.HasPrefix(href, "http"):
			abs = href
		default:
			return
		}
		matches := propertyPathRe.FindAllStringSubmatch(abs, -1)
		if len(matches) == 0 {
			return
		}
		id := matches[len(matches)-1][1]
		out = append(out, candidate{id: id, url: abs})
	})
	return out
}

// retryChallengedPage backs off briefly, then retries the first page with the
// anchor-scan strategy alone. One retry only.
func (c *Crawler) retryChallengedPage(ctx context.Context, req domain.CrawlRequest) []candidate {
	c.logger.Warn("bot challenge suspected on first page, backing off",
		zap.Duration("backoff", c.backoff))
	select {
	case <-time.After(c.backoff):
	case <-ctx.Done():
		return nil
	}

	body, err := c.client.Get(ctx, c.listURL(req.Region, req.PropertyType, 1))
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	return c.anchorCandidates(doc)
}

func hasBotChallenge(doc *goquery.Document) bool {
	text := strings.ToLower(visibleText(doc))
	if len(text) > 2000 {
		text = text[:2000]
	}
	for _, marker := range botChallengeMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// publish forwards a progress event without ever blocking the crawl.
func publish(progress chan<- domain.ProgressEvent, ev domain.ProgressEvent) {
	if progress == nil {
		return
	}
	select {
	case progress <- ev:
	default:
	}
}
