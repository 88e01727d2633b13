package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stock-signal-relay/internal/signal/config"
	"stock-signal-relay/internal/signal/dto"
	"stock-signal-relay/internal/signal/repository"
	"stock-signal-relay/pkg/common"
	"stock-signal-relay/pkg/logger"
	"stock-signal-relay/pkg/metrics"

	"golang.org/x/sync/singleflight"
)

// Source names the tier that produced a resolution.
type Source string

const (
	SourceFresh    Source = "fresh"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

// FallbackReason is shown for every symbol when no analysis is available.
const FallbackReason = "データ取得中"

const regenerateKey = "regenerate"

// Resolution is the outcome of ResolveSignals.
type Resolution struct {
	Result *dto.AnalysisResult
	Source Source
}

// AnalysisRun is the outcome of one fetch, validate and generate pass.
type AnalysisRun struct {
	Result      *dto.AnalysisResult
	ValidQuotes int
}

// AnalysisOptions controls a direct pipeline run.
type AnalysisOptions struct {
	// WithSummary asks the model for a market summary as well.
	WithSummary bool
	// Store writes a successful result to the analysis cache.
	Store bool
}

type SignalService interface {
	// ResolveSignals serves a fresh, cached or fallback analysis. The only
	// error it returns is dto.ErrRateLimited, when userID is over its hourly ceiling.
	// An empty userID skips the per-user check.
	ResolveSignals(ctx context.Context, userID string) (*Resolution, error)
	// RunAnalysis runs the pipeline unconditionally. A successful model call is
	// recorded against the daily counter but the ceiling is not checked.
	RunAnalysis(ctx context.Context, opts AnalysisOptions) (*AnalysisRun, error)
	// Fallback returns the deterministic HOLD analysis for the configured symbols.
	Fallback() *dto.AnalysisResult
}

type signalService struct {
	cfg        *config.Config
	log        *logger.Logger
	quotes     repository.QuoteRepository
	ai         repository.AIRepository
	cache      repository.SignalCacheRepository
	usage      UsageTracker
	recorder   *metrics.Recorder
	now        func() time.Time
	regenerate singleflight.Group
}

func NewSignalService(cfg *config.Config, log *logger.Logger,
	quotes repository.QuoteRepository,
	ai repository.AIRepository,
	cache repository.SignalCacheRepository,
	usage UsageTracker,
	recorder *metrics.Recorder) SignalService {
	return &signalService{
		cfg:      cfg,
		log:      log,
		quotes:   quotes,
		ai:       ai,
		cache:    cache,
		usage:    usage,
		recorder: recorder,
		now:      time.Now,
	}
}

func (s *signalService) ResolveSignals(ctx context.Context, userID string) (*Resolution, error) {
	if userID != "" && !s.usage.ReserveUserRequest(ctx, userID) {
		return nil, fmt.Errorf("user %s: %w", userID, dto.ErrRateLimited)
	}

	if s.usage.AllowModelCall(ctx) {
		result, err := s.regenerateShared(ctx)
		if err == nil {
			return s.resolved(result, SourceFresh), nil
		}
		s.log.WarnContext(ctx, "Fresh analysis unavailable, falling back to cache", logger.ErrorField(err))
	} else {
		s.log.InfoContext(ctx, "Daily model call ceiling reached, serving cache",
			logger.IntField("limit", s.cfg.Quota.MaxDailyModelCalls))
	}

	if entry := s.freshCacheEntry(ctx); entry != nil {
		result := entry.Data.Clone()
		return s.resolved(&result, SourceCache), nil
	}
	return s.resolved(s.Fallback(), SourceFallback), nil
}

func (s *signalService) resolved(result *dto.AnalysisResult, source Source) *Resolution {
	s.recorder.RecordResolution(string(source))
	return &Resolution{Result: result, Source: source}
}

// regenerateShared collapses concurrent regenerations into one model call.
// The shared call is detached from the caller's cancellation so one
// disconnecting client cannot fail the others.
func (s *signalService) regenerateShared(ctx context.Context) (*dto.AnalysisResult, error) {
	v, err, _ := s.regenerate.Do(regenerateKey, func() (interface{}, error) {
		callCtx := context.WithoutCancel(ctx)
		// Re-checked here since another flight may have used the last call.
		if !s.usage.AllowModelCall(callCtx) {
			return nil, errors.New("daily model call ceiling reached")
		}
		run, err := s.analyze(callCtx, AnalysisOptions{Store: true})
		if err != nil {
			return nil, err
		}
		return run.Result, nil
	})
	if err != nil {
		return nil, err
	}
	result := v.(*dto.AnalysisResult).Clone()
	return &result, nil
}

func (s *signalService) RunAnalysis(ctx context.Context, opts AnalysisOptions) (*AnalysisRun, error) {
	return s.analyze(ctx, opts)
}

func (s *signalService) analyze(ctx context.Context, opts AnalysisOptions) (*AnalysisRun, error) {
	quotes := FilterValidQuotes(s.quotes.Fetch(ctx, s.cfg.Market.Symbols))
	if len(quotes) == 0 {
		return nil, dto.ErrNoValidQuotes
	}

	var (
		result *dto.AnalysisResult
		err    error
	)
	if opts.WithSummary {
		result, err = s.ai.GenerateMarketAnalysis(ctx, quotes)
	} else {
		result, err = s.ai.GenerateSignals(ctx, quotes)
	}
	if err != nil {
		s.recorder.RecordModelCall("failure")
		s.log.ErrorContext(ctx, "Failed to generate signals",
			logger.IntField("quotes", len(quotes)),
			logger.ErrorField(err),
		)
		return nil, fmt.Errorf("failed to generate signals: %w", err)
	}
	if result == nil || len(result.Signals) == 0 {
		s.recorder.RecordModelCall("failure")
		s.log.ErrorContext(ctx, "Model returned no signals", logger.IntField("quotes", len(quotes)))
		return nil, fmt.Errorf("failed to generate signals: %w", dto.ErrMalformedModelOutput)
	}
	s.recorder.RecordModelCall("success")
	s.usage.RecordModelCallSuccess(ctx)

	now := s.now()
	if result.GeneratedAt.IsZero() {
		result.GeneratedAt = now
	}

	if opts.Store {
		if err := s.cache.Upsert(ctx, result, now); err != nil {
			s.recorder.RecordCacheError("write")
			s.log.ErrorContext(ctx, "Failed to write analysis cache", logger.ErrorField(err))
		}
	}

	return &AnalysisRun{Result: result, ValidQuotes: len(quotes)}, nil
}

// freshCacheEntry returns the cached entry when it is younger than the
// freshness window at the time of the call. Read failures count as a miss.
func (s *signalService) freshCacheEntry(ctx context.Context) *dto.CacheEntry {
	entry, err := s.cache.Get(ctx)
	if err != nil {
		s.recorder.RecordCacheError("read")
		s.log.ErrorContext(ctx, "Failed to read analysis cache", logger.ErrorField(err))
		return nil
	}
	if entry == nil {
		return nil
	}
	if entry.Age(s.now()) >= s.cfg.Cache.FreshnessWindow() {
		s.log.DebugContext(ctx, "Cached analysis is stale",
			logger.DurationField("age", entry.Age(s.now())))
		return nil
	}
	return entry
}

func (s *signalService) Fallback() *dto.AnalysisResult {
	signals := make([]dto.Signal, 0, len(s.cfg.Market.Symbols))
	for _, symbol := range s.cfg.Market.Symbols {
		signals = append(signals, dto.Signal{
			Symbol:     symbol,
			Action:     common.ActionHold,
			Confidence: s.cfg.Market.FallbackConfidence,
			Reason:     FallbackReason,
		})
	}
	return &dto.AnalysisResult{Signals: signals, GeneratedAt: s.now()}
}
