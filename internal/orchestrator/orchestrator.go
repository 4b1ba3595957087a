// Package orchestrator bounds concurrent crawl invocations, enforces the
// wall-clock timeout, and republishes crawl progress to a pollable status
// record.
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/isuckplshelpmetestimony/Kairos/internal/config"
	"github.com/isuckplshelpmetestimony/Kairos/internal/domain"
	"github.com/isuckplshelpmetestimony/Kairos/internal/monitoring"
	"github.com/isuckplshelpmetestimony/Kairos/internal/storage"
)

var (
	// ErrBusy means the permit pool is exhausted. Requests are rejected
	// immediately, never queued.
	ErrBusy = errors.New("busy")
	// ErrTimeout means the whole-crawl wall-clock budget expired. No
	// partial result is surfaced.
	ErrTimeout = errors.New("crawl timed out")
)

// Data source tags for the CMA response.
const (
	SourceLive  = "live"
	SourceCache = "cache"
)

// Pipeline runs one crawl invocation to completion, streaming progress
// events as it goes.
type Pipeline interface {
	Crawl(ctx context.Context, req domain.CrawlRequest, progress chan<- domain.ProgressEvent) (*domain.CrawlResult, error)
}

// Orchestrator owns the admission permit pool and the shared progress
// record. One instance is constructed per process lifetime and passed by
// reference into request handlers.
type Orchestrator struct {
	pipeline Pipeline
	pg       *storage.PostgresStore
	rdb      *storage.RedisStore
	metrics  *monitoring.Metrics
	logger   *zap.Logger

	timeout  time.Duration
	cacheTTL time.Duration
	permits  chan struct{}

	// mu guards status and gen. The sole writer is the goroutine supervising
	// the currently running crawl; status polls read concurrently. gen is
	// bumped on reset so late events from a finished run can never mark the
	// status active again.
	mu     sync.RWMutex
	gen    uint64
	status domain.CrawlStatus
}

func New(cfg *config.Config, pipeline Pipeline, pg *storage.PostgresStore, rdb *storage.RedisStore, m *monitoring.Metrics, l *zap.Logger) *Orchestrator {
	return &Orchestrator{
		pipeline: pipeline,
		pg:       pg,
		rdb:      rdb,
		metrics:  m,
		logger:   l,
		timeout:  cfg.CrawlTimeout(),
		cacheTTL: cfg.ResultCacheTTL(),
		permits:  make(chan struct{}, cfg.CrawlPermits),
	}
}

// Run admits, executes, and cleans up one crawl. It returns the result and
// its data source tag, or one of ErrBusy / ErrTimeout / an internal error.
func (o *Orchestrator) Run(ctx context.Context, req domain.CrawlRequest) (*domain.CrawlResult, string, error) {
	if !req.Force {
		if cached, err := o.rdb.GetCachedResult(ctx, req.Region, req.PropertyType); err != nil {
			o.logger.Warn("result cache read failed", zap.Error(err))
		} else if cached != nil {
			o.logger.Info("serving cached result",
				zap.String("region", req.Region),
				zap.String("property_type", req.PropertyType),
			)
			// The cache is keyed by region and kind only; still honor the
			// caller's count bound.
			if len(cached.Properties) > req.Count {
				cached.Properties = cached.Properties[:req.Count]
			}
			return cached, SourceCache, nil
		}
	}

	// Non-blocking permit acquisition: reject rather than queue.
	select {
	case o.permits <- struct{}{}:
	default:
		o.logger.Warn("crawl-rejected-busy", zap.String("region", req.Region))
		o.metrics.IncCrawl("busy")
		return nil, "", ErrBusy
	}

	// Cleanup must run on every exit path, including timeout and panic
	// inside the supervising code.
	defer func() {
		<-o.permits
		o.resetStatus()
	}()
	gen := o.markActive()

	if err := o.pg.UpdateAppraisalStatus(ctx, req.AppraisalID, "processing"); err != nil {
		o.logger.Warn("appraisal status write failed", zap.Error(err))
		o.metrics.IncErrors("db_write_failed")
	}

	// The crawl runs as an isolated unit of work under its own deadline,
	// detached from the request context, so only the wall-clock budget can
	// stop it.
	crawlCtx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	progress := make(chan domain.ProgressEvent, 16)
	var drained sync.WaitGroup
	drained.Add(1)
	go func() {
		defer drained.Done()
		for ev := range progress {
			o.publish(gen, ev)
		}
	}()

	type outcome struct {
		result *domain.CrawlResult
		err    error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		result, err := o.pipeline.Crawl(crawlCtx, req, progress)
		close(progress)
		done <- outcome{result, err}
	}()

	select {
	case out := <-done:
		drained.Wait()
		duration := time.Since(start)
		if out.err != nil {
			return nil, "", o.finish(ctx, req, nil, duration, out.err)
		}
		return out.result, SourceLive, o.finish(ctx, req, out.result, duration, nil)
	case <-crawlCtx.Done():
		cancel()
		o.logger.Error("crawl-timeout",
			zap.String("region", req.Region),
			zap.Duration("timeout", o.timeout),
		)
		o.metrics.IncCrawl("timeout")
		o.recordRun(req, nil, o.timeout, "timeout")
		if err := o.pg.UpdateAppraisalStatus(ctx, req.AppraisalID, "failed"); err != nil {
			o.logger.Warn("appraisal status write failed", zap.Error(err))
		}
		return nil, "", ErrTimeout
	}
}

// finish classifies a completed crawl, persists diagnostics and job status,
// and caches non-empty results.
func (o *Orchestrator) finish(ctx context.Context, req domain.CrawlRequest, result *domain.CrawlResult, duration time.Duration, crawlErr error) error {
	o.metrics.CrawlDuration.Observe(duration.Seconds())

	if crawlErr != nil {
		o.metrics.IncCrawl("error")
		o.recordRun(req, result, duration, "error")
		if err := o.pg.UpdateAppraisalStatus(ctx, req.AppraisalID, "failed"); err != nil {
			o.logger.Warn("appraisal status write failed", zap.Error(err))
		}
		if errors.Is(crawlErr, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return crawlErr
	}

	status := "completed"
	if len(result.Properties) == 0 {
		o.metrics.IncCrawl("empty")
		o.recordRun(req, result, duration, "empty")
	} else {
		o.metrics.IncCrawl("success")
		o.recordRun(req, result, duration, "success")
		if err := o.rdb.SetCachedResult(ctx, req.Region, req.PropertyType, result, o.cacheTTL); err != nil {
			o.logger.Warn("result cache write failed", zap.Error(err))
		}
	}
	if err := o.pg.UpdateAppraisalStatus(ctx, req.AppraisalID, status); err != nil {
		o.logger.Warn("appraisal status write failed", zap.Error(err))
		o.metrics.IncErrors("db_write_failed")
	}
	return nil
}

// recordRun appends the per-run diagnostics row, best effort.
func (o *Orchestrator) recordRun(req domain.CrawlRequest, result *domain.CrawlResult, duration time.Duration, outcome string) {
	run := domain.CrawlRun{
		Region:         req.Region,
		PropertyType:   req.PropertyType,
		RequestedCount: req.Count,
		Duration:       duration,
		Outcome:        outcome,
		CreatedAt:      time.Now(),
	}
	if result != nil {
		run.ActualCount = len(result.Properties)
		run.EarlyExit = result.EarlyExit
		run.PagesScanned = result.PagesScanned
	}

	// Diagnostics writes get their own short deadline so a slow database
	// never extends a request.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.pg.AppendCrawlRun(ctx, run); err != nil {
		o.logger.Warn("diagnostics write failed", zap.Error(err))
		o.metrics.IncErrors("db_write_failed")
	}
}

// Status returns a snapshot of the in-flight crawl's progress. Safe for any
// number of concurrent callers.
func (o *Orchestrator) Status() domain.CrawlStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()
	status := o.status
	if o.status.MaxPages != nil {
		v := *o.status.MaxPages
		status.MaxPages = &v
	}
	return status
}

// markActive claims the status record for a new run and returns the run's
// generation. Events carrying a stale generation are discarded.
func (o *Orchestrator) markActive() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = domain.CrawlStatus{Active: true}
	return o.gen
}

func (o *Orchestrator) publish(gen uint64, ev domain.ProgressEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	// A timed-out crawl keeps publishing while it unwinds; once the run's
	// status has been reset, those events must not revive it.
	if gen != o.gen {
		return
	}
	o.status.Active = true
	o.status.PagesScanned = ev.PagesScanned
	max := ev.MaxPages
	o.status.MaxPages = &max
}

func (o *Orchestrator) resetStatus() {
	o.mu.Lock()
	o.gen++
	o.status = domain.CrawlStatus{}
	o.mu.Unlock()
}
