// Package search implements the Philippine address autocomplete endpoint:
// a case-insensitive substring filter over a static corpus, behind a bounded
// result cache and a per-key rate limiter. Its locks are disjoint from the
// crawl path.
package search

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/isuckplshelpmetestimony/Kairos/internal/domain"
)

// MaxSuggestions bounds one response.
const MaxSuggestions = 10

// Service answers autocomplete queries.
type Service struct {
	corpus []domain.AddressSuggestion
	logger *zap.Logger

	cacheMu    sync.Mutex
	cache      map[string][]domain.AddressSuggestion
	cacheOrder []string // FIFO eviction order
	cacheSize  int

	limitersMu sync.Mutex
	limiters   map[string]*rate.Limiter
	rateLimit  rate.Limit
	burst      int
}

// New creates a Service. ratePerMin bounds requests per client key per
// minute; cacheSize bounds the number of cached queries.
func New(ratePerMin, cacheSize int, logger *zap.Logger) *Service {
	if cacheSize < 1 {
		cacheSize = 1
	}
	return &Service{
		corpus:    corpus,
		logger:    logger,
		cache:     make(map[string][]domain.AddressSuggestion),
		cacheSize: cacheSize,
		limiters:  make(map[string]*rate.Limiter),
		rateLimit: rate.Limit(float64(ratePerMin) / 60.0),
		burst:     ratePerMin,
	}
}

// Allow reports whether the client key has rate budget left. Each key gets
// its own sliding-window limiter.
func (s *Service) Allow(key string) bool {
	s.limitersMu.Lock()
	limiter, ok := s.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(s.rateLimit, s.burst)
		s.limiters[key] = limiter
	}
	s.limitersMu.Unlock()
	return limiter.Allow()
}

// Query returns up to MaxSuggestions corpus entries whose address contains
// the query, case-insensitively. Queries shorter than two characters return
// nothing.
func (s *Service) Query(q string) []domain.AddressSuggestion {
	q = strings.ToLower(strings.TrimSpace(q))
	if len(q) < 2 {
		return nil
	}

	if cached, ok := s.cached(q); ok {
		return cached
	}

	var results []domain.AddressSuggestion
	for _, entry := range s.corpus {
		if strings.Contains(strings.ToLower(entry.FullAddress), q) {
			results = append(results, entry)
			if len(results) >= MaxSuggestions {
				break
			}
		}
	}

	s.store(q, results)
	return results
}

func (s *Service) cached(q string) ([]domain.AddressSuggestion, bool) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	results, ok := s.cache[q]
	return results, ok
}

// store inserts into the cache, evicting the oldest entry once full.
func (s *Service) store(q string, results []domain.AddressSuggestion) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if _, exists := s.cache[q]; exists {
		return
	}
	for len(s.cacheOrder) >= s.cacheSize {
		oldest := s.cacheOrder[0]
		s.cacheOrder = s.cacheOrder[1:]
		delete(s.cache, oldest)
	}
	s.cache[q] = results
	s.cacheOrder = append(s.cacheOrder, q)
}
