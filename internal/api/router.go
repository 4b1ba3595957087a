package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// The CMA route runs a whole crawl inside the request; its timeout has
	// to exceed the crawl budget.
	r.Use(middleware.Timeout(s.config.CrawlTimeout() + 30*time.Second))

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/api/health", s.handleHealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/cma", s.handleCMARequest)
		r.Get("/status", s.handleStatusRequest)
		r.Get("/addresses/search", s.handleAddressSearch)
	})

	return r
}
