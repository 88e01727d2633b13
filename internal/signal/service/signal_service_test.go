package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stock-signal-relay/internal/signal/config"
	"stock-signal-relay/internal/signal/dto"
	"stock-signal-relay/internal/signal/repository"
	"stock-signal-relay/pkg/common"
	"stock-signal-relay/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuoteRepository struct {
	quotes  []dto.MarketQuote
	pingErr error
}

func (f *fakeQuoteRepository) Fetch(ctx context.Context, symbols []string) []dto.MarketQuote {
	return f.quotes
}

func (f *fakeQuoteRepository) Ping(ctx context.Context, symbol string) error {
	return f.pingErr
}

type fakeAIRepository struct {
	mu           sync.Mutex
	result       *dto.AnalysisResult
	err          error
	signalCalls  int
	summaryCalls int
}

func (f *fakeAIRepository) GenerateSignals(ctx context.Context, quotes []dto.MarketQuote) (*dto.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signalCalls++
	return f.response()
}

func (f *fakeAIRepository) GenerateMarketAnalysis(ctx context.Context, quotes []dto.MarketQuote) (*dto.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryCalls++
	return f.response()
}

func (f *fakeAIRepository) response() (*dto.AnalysisResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := f.result.Clone()
	return &result, nil
}

func (f *fakeAIRepository) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signalCalls + f.summaryCalls
}

type fakeSignalCache struct {
	mu        sync.Mutex
	entry     *dto.CacheEntry
	getErr    error
	upsertErr error
	pingErr   error
	upserts   int
}

func (f *fakeSignalCache) Get(ctx context.Context) (*dto.CacheEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.entry == nil {
		return nil, nil
	}
	entry := *f.entry
	return &entry, nil
}

func (f *fakeSignalCache) Upsert(ctx context.Context, result *dto.AnalysisResult, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	f.entry = &dto.CacheEntry{Data: result.Clone(), UpdatedAt: updatedAt}
	return nil
}

func (f *fakeSignalCache) Ping(ctx context.Context) error {
	return f.pingErr
}

func (f *fakeSignalCache) Size(ctx context.Context) (int, error) {
	return 2048, nil
}

var (
	_ repository.QuoteRepository       = (*fakeQuoteRepository)(nil)
	_ repository.AIRepository          = (*fakeAIRepository)(nil)
	_ repository.SignalCacheRepository = (*fakeSignalCache)(nil)
)

func testConfig() *config.Config {
	return &config.Config{
		Quota: testQuota,
		Cache: config.Cache{FreshnessHours: 4, Backend: "memory"},
		Market: config.Market{
			Symbols:            []string{"6758", "7203", "9984"},
			TimeZone:           "Asia/Tokyo",
			TradingDays:        []int{1, 2, 3, 4, 5},
			TradingStartHour:   9,
			TradingEndHour:     15,
			FallbackConfidence: 50,
		},
	}
}

func validQuotes() []dto.MarketQuote {
	return []dto.MarketQuote{
		{Symbol: "6758", Price: 2500, PreviousClose: 2475, Change: 25, ChangePercent: "1.01", Volume: 1000},
		{Symbol: "7203", Price: 3000, PreviousClose: 3030, Change: -30, ChangePercent: "-0.99", Volume: 2000},
		{Symbol: "9984", Price: 8000, PreviousClose: 8000, Change: 0, ChangePercent: "0.00", Volume: 3000},
	}
}

type gateFixture struct {
	svc     *signalService
	quotes  *fakeQuoteRepository
	ai      *fakeAIRepository
	cache   *fakeSignalCache
	tracker UsageTracker
	clock   *fakeClock
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	cfg := testConfig()
	clock := &fakeClock{t: time.Date(2024, 3, 4, 1, 0, 0, 0, time.UTC)}
	f := &gateFixture{
		quotes: &fakeQuoteRepository{quotes: validQuotes()},
		ai: &fakeAIRepository{result: &dto.AnalysisResult{Signals: []dto.Signal{
			{Symbol: "6758", Action: "BUY", Confidence: 85, Reason: "x"},
		}}},
		cache:   &fakeSignalCache{},
		tracker: NewMemoryUsageTracker(cfg.Quota, time.UTC, clock.Now),
		clock:   clock,
	}
	f.svc = NewSignalService(cfg, logger.NewNop(), f.quotes, f.ai, f.cache, f.tracker, nil).(*signalService)
	f.svc.now = clock.Now
	return f
}

func (f *gateFixture) exhaustModelCalls(ctx context.Context) {
	for f.tracker.AllowModelCall(ctx) {
		f.tracker.RecordModelCallSuccess(ctx)
	}
}

func TestResolveSignals_FreshUpdatesCache(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()

	res, err := f.svc.ResolveSignals(ctx, "U1")
	require.NoError(t, err)

	assert.Equal(t, SourceFresh, res.Source)
	assert.Equal(t, []dto.Signal{{Symbol: "6758", Action: "BUY", Confidence: 85, Reason: "x"}}, res.Result.Signals)
	assert.Equal(t, f.clock.Now(), res.Result.GeneratedAt)

	require.NotNil(t, f.cache.entry)
	assert.Equal(t, res.Result.Signals, f.cache.entry.Data.Signals)
	assert.Equal(t, f.clock.Now(), f.cache.entry.UpdatedAt)
	assert.Equal(t, 1, f.tracker.Snapshot(ctx).ModelCallsToday)
}

func TestResolveSignals_GlobalCeilingSkipsGenerator(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()
	f.exhaustModelCalls(ctx)

	res, err := f.svc.ResolveSignals(ctx, "U1")
	require.NoError(t, err)

	assert.Equal(t, 0, f.ai.calls())
	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, testQuota.MaxDailyModelCalls, f.tracker.Snapshot(ctx).ModelCallsToday)
}

func TestResolveSignals_GlobalCeilingServesFreshCache(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()
	f.exhaustModelCalls(ctx)

	cached := dto.AnalysisResult{Signals: []dto.Signal{{Symbol: "7203", Action: "SELL", Confidence: 70, Reason: "y"}}}
	f.cache.entry = &dto.CacheEntry{Data: cached, UpdatedAt: f.clock.Now().Add(-3 * time.Hour)}

	res, err := f.svc.ResolveSignals(ctx, "U1")
	require.NoError(t, err)

	assert.Equal(t, 0, f.ai.calls())
	assert.Equal(t, SourceCache, res.Source)
	assert.Equal(t, cached.Signals, res.Result.Signals)
}

func TestResolveSignals_StaleCacheIsAbsent(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()
	f.exhaustModelCalls(ctx)

	f.cache.entry = &dto.CacheEntry{
		Data:      dto.AnalysisResult{Signals: []dto.Signal{{Symbol: "7203", Action: "SELL", Confidence: 70, Reason: "y"}}},
		UpdatedAt: f.clock.Now().Add(-5 * time.Hour),
	}

	res, err := f.svc.ResolveSignals(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, res.Source)
}

func TestResolveSignals_FailuresDegradeToFallback(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *gateFixture)
	}{
		{
			name:  "model failure",
			setup: func(f *gateFixture) { f.ai.err = dto.ErrUpstreamUnavailable },
		},
		{
			name:  "malformed model output",
			setup: func(f *gateFixture) { f.ai.err = dto.ErrMalformedModelOutput },
		},
		{
			name:  "no valid quotes",
			setup: func(f *gateFixture) { f.quotes.quotes = []dto.MarketQuote{{Symbol: "6758", Price: 0, ChangePercent: "0.00"}} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGateFixture(t)
			f.cache.getErr = errors.New("connection refused")
			tt.setup(f)
			ctx := context.Background()

			res, err := f.svc.ResolveSignals(ctx, "U1")
			require.NoError(t, err)

			assert.Equal(t, SourceFallback, res.Source)
			require.Len(t, res.Result.Signals, 3)
			for i, symbol := range []string{"6758", "7203", "9984"} {
				assert.Equal(t, dto.Signal{Symbol: symbol, Action: common.ActionHold, Confidence: 50, Reason: FallbackReason}, res.Result.Signals[i])
			}
			assert.Equal(t, 0, f.tracker.Snapshot(ctx).ModelCallsToday, "failed calls are not counted")
			assert.Equal(t, 0, f.cache.upserts)
		})
	}
}

func TestResolveSignals_GeneratorFailureServesFreshCache(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *gateFixture)
	}{
		{
			name:  "model failure",
			setup: func(f *gateFixture) { f.ai.err = dto.ErrUpstreamUnavailable },
		},
		{
			name:  "empty signal list",
			setup: func(f *gateFixture) { f.ai.result = &dto.AnalysisResult{Signals: []dto.Signal{}} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGateFixture(t)
			ctx := context.Background()
			cached := dto.AnalysisResult{Signals: []dto.Signal{{Symbol: "6758", Action: "BUY", Confidence: 80, Reason: "y"}}}
			f.cache.entry = &dto.CacheEntry{Data: cached, UpdatedAt: f.clock.Now().Add(-time.Hour)}
			tt.setup(f)

			res, err := f.svc.ResolveSignals(ctx, "U1")
			require.NoError(t, err)

			assert.Equal(t, 1, f.ai.calls())
			assert.Equal(t, SourceCache, res.Source)
			assert.Equal(t, cached.Signals, res.Result.Signals)
			assert.Equal(t, 0, f.cache.upserts, "cache is left untouched")
			assert.Equal(t, 0, f.tracker.Snapshot(ctx).ModelCallsToday, "failed calls are not counted")
		})
	}
}

func TestResolveSignals_RateLimitedUserSkipsGlobalQuota(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()

	for i := 0; i < testQuota.MaxUserRequestsPerHour; i++ {
		require.True(t, f.tracker.ReserveUserRequest(ctx, "U1"))
	}

	res, err := f.svc.ResolveSignals(ctx, "U1")
	assert.ErrorIs(t, err, dto.ErrRateLimited)
	assert.Nil(t, res)
	assert.Equal(t, 0, f.ai.calls())
	assert.Equal(t, 0, f.tracker.Snapshot(ctx).ModelCallsToday)
}

func TestResolveSignals_ConcurrentCallsStayUnderCeiling(t *testing.T) {
	f := newGateFixture(t)
	f.svc.cfg.Quota.MaxDailyModelCalls = 1
	f.tracker = NewMemoryUsageTracker(f.svc.cfg.Quota, time.UTC, f.clock.Now)
	f.svc.usage = f.tracker
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ResolveSignals(ctx, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, f.tracker.Snapshot(ctx).ModelCallsToday, 1)
	assert.LessOrEqual(t, f.ai.calls(), 1)
}

func TestRunAnalysis(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()
	f.exhaustModelCalls(ctx)

	run, err := f.svc.RunAnalysis(ctx, AnalysisOptions{WithSummary: true, Store: true})
	require.NoError(t, err)

	assert.Equal(t, 3, run.ValidQuotes)
	assert.Equal(t, 1, f.ai.summaryCalls, "runs regardless of the ceiling")
	assert.Equal(t, 1, f.cache.upserts)
	assert.Equal(t, testQuota.MaxDailyModelCalls+1, f.tracker.Snapshot(ctx).ModelCallsToday)
}

func TestRunAnalysis_FailureLeavesCache(t *testing.T) {
	f := newGateFixture(t)
	f.ai.err = dto.ErrUpstreamUnavailable

	_, err := f.svc.RunAnalysis(context.Background(), AnalysisOptions{Store: true})
	assert.ErrorIs(t, err, dto.ErrUpstreamUnavailable)
	assert.Equal(t, 0, f.cache.upserts)
}
