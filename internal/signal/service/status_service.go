package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"stock-signal-relay/internal/signal/config"
	"stock-signal-relay/internal/signal/dto"
	"stock-signal-relay/internal/signal/repository"
	"stock-signal-relay/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const (
	HealthHealthy   = "healthy"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"

	healthCheckTimeout = 5 * time.Second
)

// StatusService reports usage against the ceilings and dependency health.
type StatusService interface {
	Status(ctx context.Context) *dto.StatusResponse
}

type statusService struct {
	cfg    *config.Config
	log    *logger.Logger
	quotes repository.QuoteRepository
	cache  repository.SignalCacheRepository
	usage  UsageTracker
	now    func() time.Time
}

func NewStatusService(cfg *config.Config, log *logger.Logger,
	quotes repository.QuoteRepository,
	cache repository.SignalCacheRepository,
	usage UsageTracker) StatusService {
	return &statusService{
		cfg:    cfg,
		log:    log,
		quotes: quotes,
		cache:  cache,
		usage:  usage,
		now:    time.Now,
	}
}

func (s *statusService) Status(ctx context.Context) *dto.StatusResponse {
	snap := s.usage.Snapshot(ctx)
	health := s.checkHealth(ctx)

	return &dto.StatusResponse{
		Service: s.cfg.App.Name,
		Version: s.cfg.App.Version,
		Status:  health.Overall,
		Usage: dto.UsageStatus{
			ModelCalls: quotaStatus(snap.ModelCallsToday, s.cfg.Quota.MaxDailyModelCalls),
			Messages:   quotaStatus(snap.MessagesSentToday, s.cfg.Quota.MaxDailyMessages),
		},
		SystemHealth: health,
		DatabaseSize: s.databaseSize(ctx),
		MonthlyCost:  0,
		LastUpdated:  s.now(),
	}
}

func quotaStatus(used, limit int) dto.QuotaStatus {
	q := dto.QuotaStatus{Used: used, Limit: limit}
	if limit > 0 {
		q.Percentage = int(math.Round(float64(used) / float64(limit) * 100))
	}
	return q
}

// checkHealth runs the three probes concurrently. A failed probe only marks
// its own check false.
func (s *statusService) checkHealth(ctx context.Context) dto.SystemHealth {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	var checks dto.HealthChecks
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.cache.Ping(gctx); err != nil {
			s.log.WarnContext(ctx, "Store health check failed", logger.ErrorField(err))
			return nil
		}
		checks.Database = true
		return nil
	})
	g.Go(func() error {
		if len(s.cfg.Market.Symbols) == 0 {
			return nil
		}
		if err := s.quotes.Ping(gctx, s.cfg.Market.Symbols[0]); err != nil {
			s.log.WarnContext(ctx, "Quote upstream health check failed", logger.ErrorField(err))
			return nil
		}
		checks.ExternalAPI = true
		return nil
	})
	g.Go(func() error {
		entry, err := s.cache.Get(gctx)
		if err != nil {
			s.log.WarnContext(ctx, "Cache health check failed", logger.ErrorField(err))
			return nil
		}
		checks.Cache = entry != nil && entry.Age(s.now()) < s.cfg.Cache.FreshnessWindow()
		return nil
	})
	_ = g.Wait()

	return aggregateHealth(checks)
}

func aggregateHealth(checks dto.HealthChecks) dto.SystemHealth {
	passed := 0
	for _, ok := range []bool{checks.Database, checks.ExternalAPI, checks.Cache} {
		if ok {
			passed++
		}
	}
	const total = 3

	overall := HealthUnhealthy
	switch {
	case passed == total:
		overall = HealthHealthy
	case passed > 0:
		overall = HealthDegraded
	}

	return dto.SystemHealth{
		Checks:  checks,
		Overall: overall,
		Score:   fmt.Sprintf("%d/%d", passed, total),
	}
}

func (s *statusService) databaseSize(ctx context.Context) string {
	size, err := s.cache.Size(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to read store size", logger.ErrorField(err))
		return "0KB"
	}
	return fmt.Sprintf("%dKB", int(math.Round(float64(size)/1024)))
}
