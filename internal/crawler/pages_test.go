package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/isuckplshelpmetestimony/Kairos/internal/config"
	"github.com/isuckplshelpmetestimony/Kairos/internal/domain"
	"github.com/isuckplshelpmetestimony/Kairos/internal/fetch"
	"github.com/isuckplshelpmetestimony/Kairos/internal/monitoring"
	"github.com/isuckplshelpmetestimony/Kairos/internal/normalize"
)

// Prometheus collectors register globally, so the test binary shares one set.
var testMetrics = monitoring.NewMetrics()

func newTestCrawler(baseURL string, maxPages int) *Crawler {
	cfg := &config.Config{
		ScraperBaseURL:  baseURL,
		ScraperMaxPages: maxPages,
		DetailBudgetSec: 60,
	}
	client := fetch.NewClient(5*time.Second, baseURL, 0, 0)
	c := New(cfg, client, normalize.New(zap.NewNop()), testMetrics, zap.NewNop())
	c.backoff = 10 * time.Millisecond
	return c
}

// listPage renders an index page with the structural listing markup, one
// cell per sku. Hrefs reuse the sku so all three strategies agree on the id.
func listPage(paginationEnd int, skus ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	if paginationEnd > 0 {
		fmt.Fprintf(&b, `<div class="BaseSection Pagination" data-pagination-end="%d"></div>`, paginationEnd)
	}
	for _, sku := range skus {
		fmt.Fprintf(&b, `<div class="ListingCell-MainImage"><div data-sku="%s"></div></div>`, sku)
		fmt.Fprintf(&b, `<div class="row ListingCell-row ListingCell-agent-redesign"><a href="/property/%s">view</a></div>`, sku)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func detailPage(price string) string {
	return fmt.Sprintf(`<html><body>
<div class="prices-and-fees__price">%s</div>
<div class="details-item-value">
Bedrooms
2
</div>
<div class="details-item-value">
Baths
1
</div>
<div class="details-item-value">
Floor area (m²)
45
</div>
<div class="view-map__text">BGC, Taguig</div>
</body></html>`, price)
}

// pageServer serves index pages keyed by page number and detail pages by sku.
type pageServer struct {
	mu       sync.Mutex
	pages    map[int]string
	failures map[int]bool
	details  map[string]string
	hits     []int // index page numbers requested, in order
}

func (ps *pageServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/property/") {
			sku := strings.TrimPrefix(r.URL.Path, "/property/")
			ps.mu.Lock()
			body, ok := ps.details[sku]
			ps.mu.Unlock()
			if !ok {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, body)
			return
		}

		page := 1
		if raw := r.URL.Query().Get("page"); raw != "" {
			fmt.Sscanf(raw, "%d", &page)
		}
		ps.mu.Lock()
		ps.hits = append(ps.hits, page)
		body, ok := ps.pages[page]
		fail := ps.failures[page]
		ps.mu.Unlock()

		if fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}
}

func skuRange(prefix string, from, to int) []string {
	var skus []string
	for i := from; i <= to; i++ {
		skus = append(skus, fmt.Sprintf("%s%d", prefix, i))
	}
	return skus
}

func testRequest(count int) domain.CrawlRequest {
	return domain.CrawlRequest{Region: "metro-manila", PropertyType: "condo", Count: count}
}

func TestCollectStubsStopsAtRequestedCount(t *testing.T) {
	ps := &pageServer{pages: map[int]string{
		1: listPage(2, skuRange("A", 1, 6)...),
		2: listPage(2, skuRange("B", 1, 6)...),
	}}
	srv := httptest.NewServer(ps.handler(t))
	defer srv.Close()

	c := newTestCrawler(srv.URL, 10)
	stubs, pagesScanned := c.collectStubs(context.Background(), testRequest(5), nil)

	if len(stubs) != 5 {
		t.Fatalf("got %d stubs; want 5", len(stubs))
	}
	if pagesScanned != 1 {
		t.Errorf("pagesScanned = %d; want 1 (count reached on the first page)", pagesScanned)
	}
	seen := make(map[string]struct{})
	for _, s := range stubs {
		if _, dup := seen[s.ID]; dup {
			t.Errorf("duplicate stub id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
}

func TestCollectStubsDedupesAcrossPages(t *testing.T) {
	// Page 2 repeats every id from page 1.
	ps := &pageServer{pages: map[int]string{
		1: listPage(2, "A1", "A2"),
		2: listPage(2, "A1", "A2"),
	}}
	srv := httptest.NewServer(ps.handler(t))
	defer srv.Close()

	c := newTestCrawler(srv.URL, 10)
	stubs, _ := c.collectStubs(context.Background(), testRequest(10), nil)

	if len(stubs) != 2 {
		t.Errorf("got %d stubs; want 2 unique", len(stubs))
	}
}

func TestCollectStubsNeverExceedsPageCap(t *testing.T) {
	pages := make(map[int]string)
	for i := 1; i <= 8; i++ {
		// One listing per page, never enough to satisfy the request.
		pages[i] = listPage(50, fmt.Sprintf("P%d", i))
	}
	ps := &pageServer{pages: pages}
	srv := httptest.NewServer(ps.handler(t))
	defer srv.Close()

	c := newTestCrawler(srv.URL, 3)
	_, pagesScanned := c.collectStubs(context.Background(), testRequest(100), nil)

	if pagesScanned != 3 {
		t.Errorf("pagesScanned = %d; want 3 (configured cap)", pagesScanned)
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for _, page := range ps.hits {
		if page > 3 {
			t.Errorf("page %d was fetched beyond the cap", page)
		}
	}
}

func TestCollectStubsSurvivesFailedPage(t *testing.T) {
	ps := &pageServer{
		pages: map[int]string{
			1: listPage(3, "A1", "A2"),
			3: listPage(3, "C1", "C2"),
		},
		failures: map[int]bool{2: true},
	}
	srv := httptest.NewServer(ps.handler(t))
	defer srv.Close()

	c := newTestCrawler(srv.URL, 10)
	stubs, pagesScanned := c.collectStubs(context.Background(), testRequest(10), nil)

	if len(stubs) != 4 {
		t.Fatalf("got %d stubs; want 4 (page 1 results kept, page 3 still crawled)", len(stubs))
	}
	if pagesScanned != 2 {
		t.Errorf("pagesScanned = %d; want 2 (the failed page does not count)", pagesScanned)
	}
}

func TestCollectStubsEmptyResultIsNotAnError(t *testing.T) {
	ps := &pageServer{pages: map[int]string{1: `<html><body><p>nothing here</p></body></html>`}}
	srv := httptest.NewServer(ps.handler(t))
	defer srv.Close()

	c := newTestCrawler(srv.URL, 10)
	stubs, _ := c.collectStubs(context.Background(), testRequest(10), nil)
	if len(stubs) != 0 {
		t.Errorf("got %d stubs; want 0", len(stubs))
	}
}

func TestDiscoverMaxPageAnchorFallback(t *testing.T) {
	// No pagination widget; anchors declare pages up to 4.
	body := `<html><body>
<a href="?page=2">2</a>
<a href="?page=4">4</a>
<a href="?page=3">3</a>
</body></html>`
	ps := &pageServer{pages: map[int]string{1: body}}
	srv := httptest.NewServer(ps.handler(t))
	defer srv.Close()

	c := newTestCrawler(srv.URL, 10)
	if got := c.discoverMaxPage(context.Background(), testRequest(10)); got != 4 {
		t.Errorf("discoverMaxPage = %d; want 4", got)
	}
}

func TestDiscoverMaxPageClampsToOne(t *testing.T) {
	ps := &pageServer{pages: map[int]string{1: `<html><body><p>no pagination at all</p></body></html>`}}
	srv := httptest.NewServer(ps.handler(t))
	defer srv.Close()

	c := newTestCrawler(srv.URL, 10)
	if got := c.discoverMaxPage(context.Background(), testRequest(10)); got != 1 {
		t.Errorf("discoverMaxPage = %d; want 1", got)
	}
}

func TestBotChallengeRetriesAnchorScan(t *testing.T) {
	challenge := `<html><body><p>Security verification required before you continue.</p></body></html>`
	recovered := `<html><body><a href="/property/R1">listing</a><a href="/property/R2">listing</a></body></html>`

	var mu sync.Mutex
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		n := requests
		mu.Unlock()
		// Pagination discovery and the first page fetch hit the challenge;
		// the backoff retry gets real content.
		if n <= 2 {
			fmt.Fprint(w, challenge)
			return
		}
		fmt.Fprint(w, recovered)
	}))
	defer srv.Close()

	c := newTestCrawler(srv.URL, 10)
	stubs, _ := c.collectStubs(context.Background(), testRequest(10), nil)

	if len(stubs) != 2 {
		t.Fatalf("got %d stubs after challenge retry; want 2", len(stubs))
	}
	if stubs[0].ID != "R1" || stubs[1].ID != "R2" {
		t.Errorf("stub ids = %v; want R1, R2", []string{stubs[0].ID, stubs[1].ID})
	}
}

func TestCrawlEndToEnd(t *testing.T) {
	// 12 unique listings across 2 pages, each page with ≥5 candidates.
	details := make(map[string]string)
	for _, sku := range append(skuRange("A", 1, 6), skuRange("B", 1, 6)...) {
		details[sku] = detailPage("₱5,500,000")
	}
	ps := &pageServer{
		pages: map[int]string{
			1: listPage(2, skuRange("A", 1, 6)...),
			2: listPage(2, skuRange("B", 1, 6)...),
		},
		details: details,
	}
	srv := httptest.NewServer(ps.handler(t))
	defer srv.Close()

	c := newTestCrawler(srv.URL, 10)
	progress := make(chan domain.ProgressEvent, 16)
	result, err := c.Crawl(context.Background(), testRequest(5), progress)
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}

	if len(result.Properties) != 5 {
		t.Fatalf("got %d properties; want 5", len(result.Properties))
	}
	if result.PagesScanned != 1 {
		t.Errorf("PagesScanned = %d; want 1", result.PagesScanned)
	}
	ids := make(map[string]struct{})
	for _, p := range result.Properties {
		ids[p.PropertyID] = struct{}{}
		if p.Price != 5500000 {
			t.Errorf("property %s price = %v; want 5500000", p.PropertyID, p.Price)
		}
		if p.Bedrooms != 2 || p.Bathrooms != 1 {
			t.Errorf("property %s bed/bath = %d/%d; want 2/1", p.PropertyID, p.Bedrooms, p.Bathrooms)
		}
		if p.City != "Taguig" {
			t.Errorf("property %s city = %q; want Taguig", p.PropertyID, p.City)
		}
	}
	if len(ids) != 5 {
		t.Errorf("got %d distinct property ids; want 5", len(ids))
	}
	if result.Stats.Count != 5 || result.Stats.Median != 5500000 {
		t.Errorf("stats = %+v; want count 5, median 5500000", result.Stats)
	}

	// Progress was published at least once with the effective page cap.
	select {
	case ev := <-progress:
		if ev.PagesScanned < 1 || ev.MaxPages != 2 {
			t.Errorf("progress event = %+v; want pages ≥1, max 2", ev)
		}
	default:
		t.Error("no progress event published")
	}
}

func TestCrawlSkipsFailedDetailFetch(t *testing.T) {
	ps := &pageServer{
		pages: map[int]string{1: listPage(1, "A1", "A2")},
		// A2 has no detail page registered → 404 → listing skipped.
		details: map[string]string{"A1": detailPage("₱1,000,000")},
	}
	srv := httptest.NewServer(ps.handler(t))
	defer srv.Close()

	c := newTestCrawler(srv.URL, 10)
	result, err := c.Crawl(context.Background(), testRequest(10), nil)
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(result.Properties) != 1 {
		t.Fatalf("got %d properties; want 1 (failed detail skipped, not fatal)", len(result.Properties))
	}
	if result.Properties[0].PropertyID != "A1" {
		t.Errorf("id = %q; want A1", result.Properties[0].PropertyID)
	}
}

func TestCrawlEmptyYieldsReason(t *testing.T) {
	ps := &pageServer{pages: map[int]string{1: `<html><body></body></html>`}}
	srv := httptest.NewServer(ps.handler(t))
	defer srv.Close()

	c := newTestCrawler(srv.URL, 10)
	result, err := c.Crawl(context.Background(), testRequest(5), nil)
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(result.Properties) != 0 {
		t.Fatalf("got %d properties; want 0", len(result.Properties))
	}
	if result.Reason != normalize.ReasonSelectorMiss {
		t.Errorf("reason = %q; want %q", result.Reason, normalize.ReasonSelectorMiss)
	}
}

func TestDetailBudgetStopsEarlyKeepingNothingButNotFailing(t *testing.T) {
	ps := &pageServer{
		pages:   map[int]string{1: listPage(1, "A1", "A2")},
		details: map[string]string{"A1": detailPage("₱1"), "A2": detailPage("₱2")},
	}
	srv := httptest.NewServer(ps.handler(t))
	defer srv.Close()

	c := newTestCrawler(srv.URL, 10)
	c.detailBudget = 0 // budget exhausted before the first detail fetch

	result, err := c.Crawl(context.Background(), testRequest(10), nil)
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if !result.EarlyExit {
		t.Error("expected EarlyExit to be set when the detail budget is exhausted")
	}
}
