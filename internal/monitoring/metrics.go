package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	CrawlsTotal   *prometheus.CounterVec
	PagesFetched  prometheus.Counter
	DetailsTotal  prometheus.Counter
	ErrorsTotal   *prometheus.CounterVec
	CrawlDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		CrawlsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kairos_crawls_total",
			Help: "The total number of crawl invocations by outcome",
		}, []string{"outcome"}), // 'success', 'empty', 'timeout', 'busy', 'error'
		PagesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kairos_list_pages_fetched_total",
			Help: "The total number of listing index pages fetched",
		}),
		DetailsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kairos_detail_pages_fetched_total",
			Help: "The total number of listing detail pages fetched",
		}),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kairos_errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g. 'page_fetch_failed', 'detail_fetch_failed', 'db_write_failed'
		CrawlDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "kairos_crawl_duration_seconds",
			Help:    "Wall-clock duration of completed crawls",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

func (m *Metrics) IncCrawl(outcome string) {
	m.CrawlsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncErrors(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
