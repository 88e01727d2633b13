package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stock-signal-relay/internal/signal/config"
	"stock-signal-relay/internal/signal/dto"
	"stock-signal-relay/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuoteTestConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Market.Symbols = []string{"6758", "7203", "9984"}
	cfg.YahooFinance.BaseURL = baseURL
	cfg.YahooFinance.SymbolSuffix = ".T"
	cfg.YahooFinance.MaxRequestPerMinute = 6000
	cfg.YahooFinance.Timeout = 2 * time.Second
	return cfg
}

func TestYahooFinanceRepository_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v8/finance/chart/6758.T":
			_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"6758.T","regularMarketPrice":2525,"previousClose":2500,"regularMarketVolume":1200}}],"error":null}}`))
		case "/v8/finance/chart/7203.T":
			w.WriteHeader(http.StatusInternalServerError)
		case "/v8/finance/chart/9984.T":
			_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"9984.T","regularMarketPrice":9000}}],"error":null}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	repo := NewYahooFinanceRepository(newQuoteTestConfig(srv.URL), logger.NewNop(), nil)

	quotes := repo.Fetch(context.Background(), []string{"6758", "7203", "9984"})
	require.Len(t, quotes, 1)
	assert.Equal(t, dto.MarketQuote{
		Symbol:        "6758",
		Price:         2525,
		PreviousClose: 2500,
		Change:        25,
		ChangePercent: "1.00",
		Volume:        1200,
	}, quotes[0])
}

func TestYahooFinanceRepository_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v8/finance/chart/6758.T" {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	repo := NewYahooFinanceRepository(newQuoteTestConfig(srv.URL), logger.NewNop(), nil)
	assert.NoError(t, repo.Ping(context.Background(), "6758"))
	assert.Error(t, repo.Ping(context.Background(), "7203"))
}

func TestYahooFinanceRepository_PingKeepsFetchBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cfg := newQuoteTestConfig(srv.URL)
	cfg.YahooFinance.MaxRequestPerMinute = 1
	repo := NewYahooFinanceRepository(cfg, logger.NewNop(), nil).(*yahooFinanceRepository)

	require.NoError(t, repo.Ping(context.Background(), "6758"))
	assert.InDelta(t, 3, repo.requestLimiter.Tokens(), 0.1)
	assert.InDelta(t, 0, repo.probeLimiter.Tokens(), 0.1)
}

func TestBuildQuote(t *testing.T) {
	price, prev := 980.0, 1000.0
	quote, err := buildQuote("9984", dto.YahooChartMeta{RegularMarketPrice: &price, ChartPreviousClose: &prev})
	require.NoError(t, err)
	assert.Equal(t, "-2.00", quote.ChangePercent)
	assert.Equal(t, int64(0), quote.Volume)

	zero := 0.0
	_, err = buildQuote("9984", dto.YahooChartMeta{RegularMarketPrice: &price, PreviousClose: &zero})
	assert.Error(t, err)

	_, err = buildQuote("9984", dto.YahooChartMeta{PreviousClose: &prev})
	assert.Error(t, err)
}
