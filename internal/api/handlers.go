package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/isuckplshelpmetestimony/Kairos/internal/domain"
	"github.com/isuckplshelpmetestimony/Kairos/internal/orchestrator"
	"github.com/isuckplshelpmetestimony/Kairos/internal/region"
)

type cmaResponse struct {
	Properties []domain.Property `json:"properties"`
	Stats      domain.PriceStats `json:"stats"`
	Reason     string            `json:"reason,omitempty"`
	DataSource string            `json:"data_source"`
}

type searchResponse struct {
	Suggestions []domain.AddressSuggestion `json:"suggestions"`
	Total       int                        `json:"total"`
	QueryTimeMs int64                      `json:"query_time_ms"`
}

func (s *Server) handleCMARequest(w http.ResponseWriter, r *http.Request) {
	var req domain.CMARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.PSGCProvinceCode = strings.TrimSpace(req.PSGCProvinceCode)
	req.PropertyType = strings.ToLower(strings.TrimSpace(req.PropertyType))

	if req.PSGCProvinceCode == "" || len(req.PSGCProvinceCode) > 8 {
		s.respondWithError(w, http.StatusBadRequest, "Invalid PSGC code")
		return
	}
	if req.PropertyType != "condo" {
		s.respondWithError(w, http.StatusBadRequest, "Unsupported property_type")
		return
	}
	slug, ok := region.Slug(req.PSGCProvinceCode)
	if !ok {
		s.respondWithError(w, http.StatusBadRequest, "Unsupported province")
		return
	}

	count := req.Count
	if count == 0 {
		count = 50
	}
	if count < 1 {
		count = 1
	}
	if count > s.config.ScraperMaxCount {
		count = s.config.ScraperMaxCount
	}

	result, source, err := s.crawls.Run(r.Context(), domain.CrawlRequest{
		Region:       slug,
		PropertyType: req.PropertyType,
		Count:        count,
		Force:        req.Force,
		AppraisalID:  req.AppraisalID,
	})
	if err != nil {
		// User-visible failure is always a small sanitized classification.
		switch {
		case errors.Is(err, orchestrator.ErrBusy):
			s.respondWithError(w, http.StatusConflict, "busy")
		case errors.Is(err, orchestrator.ErrTimeout):
			s.respondWithError(w, http.StatusGatewayTimeout, "Scrape timed out")
		default:
			s.logger.Error("crawl failed", zap.Error(err))
			s.respondWithError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	props := result.Properties
	if props == nil {
		props = []domain.Property{}
	}
	s.respondWithJSON(w, http.StatusOK, cmaResponse{
		Properties: props,
		Stats:      result.Stats,
		Reason:     result.Reason,
		DataSource: source,
	})
}

func (s *Server) handleStatusRequest(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, s.crawls.Status())
}

func (s *Server) handleAddressSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		s.respondWithError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	// Rate limit per client; RealIP middleware has already resolved the
	// remote address, possibly to a bare IP without a port.
	key := r.RemoteAddr
	if host, _, err := net.SplitHostPort(key); err == nil {
		key = host
	}
	if !s.addresses.Allow(key) {
		s.respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
		return
	}

	start := time.Now()
	suggestions := s.addresses.Query(q)
	if suggestions == nil {
		suggestions = []domain.AddressSuggestion{}
	}
	s.respondWithJSON(w, http.StatusOK, searchResponse{
		Suggestions: suggestions,
		Total:       len(suggestions),
		QueryTimeMs: time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := map[string]string{"service": "healthy"}

	if s.pgStore == nil {
		healthStatus["postgres"] = "disabled"
	} else if err := s.pgStore.Ping(ctx); err != nil {
		healthStatus["postgres"] = "unhealthy"
		s.logger.Error("health check failed for postgres", zap.Error(err))
	} else {
		healthStatus["postgres"] = "healthy"
	}

	if s.redisStore == nil {
		healthStatus["redis"] = "disabled"
	} else if err := s.redisStore.Ping(ctx); err != nil {
		healthStatus["redis"] = "unhealthy"
		s.logger.Error("health check failed for redis", zap.Error(err))
	} else {
		healthStatus["redis"] = "healthy"
	}

	if healthStatus["postgres"] == "unhealthy" || healthStatus["redis"] == "unhealthy" {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
