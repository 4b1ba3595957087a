package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/isuckplshelpmetestimony/Kairos/internal/config"
	"github.com/isuckplshelpmetestimony/Kairos/internal/domain"
	"github.com/isuckplshelpmetestimony/Kairos/internal/search"
	"github.com/isuckplshelpmetestimony/Kairos/internal/storage"
)

// CrawlService is what the handlers need from the orchestrator.
type CrawlService interface {
	Run(ctx context.Context, req domain.CrawlRequest) (*domain.CrawlResult, string, error)
	Status() domain.CrawlStatus
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	crawls     CrawlService
	addresses  *search.Service
	pgStore    *storage.PostgresStore
	redisStore *storage.RedisStore
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, crawls CrawlService, addresses *search.Service, ps *storage.PostgresStore, rs *storage.RedisStore, l *zap.Logger) *Server {
	s := &Server{
		config:     cfg,
		crawls:     crawls,
		addresses:  addresses,
		pgStore:    ps,
		redisStore: rs,
		logger:     l,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:     s.router,
		ReadTimeout: 10 * time.Second,
		// Write timeout must cover a full live crawl.
		WriteTimeout: s.config.CrawlTimeout() + 30*time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
