package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"stock-signal-relay/internal/signal/config"
	"stock-signal-relay/internal/signal/dto"
	"stock-signal-relay/pkg/logger"
	"stock-signal-relay/pkg/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// QuoteRepository fetches live quotes from the market-data upstream.
type QuoteRepository interface {
	// Fetch returns one quote per symbol that could be fetched, in input order.
	// A symbol that fails is logged and omitted; Fetch itself never fails.
	Fetch(ctx context.Context, symbols []string) []dto.MarketQuote
	// Ping reports whether the upstream answers for symbol.
	Ping(ctx context.Context, symbol string) error
}

type yahooFinanceRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	metrics        *metrics.Recorder
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	probeLimiter   *rate.Limiter
}

// NewYahooFinanceRepository creates a QuoteRepository backed by the Yahoo Finance chart API.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger, recorder *metrics.Recorder) QuoteRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.YahooFinance.MaxRequestPerMinute)
	return &yahooFinanceRepository{
		cfg:     cfg,
		log:     log,
		metrics: recorder,
		httpClient: &http.Client{
			Timeout: cfg.YahooFinance.Timeout,
		},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), max(1, len(cfg.Market.Symbols))),
		probeLimiter:   rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

func (r *yahooFinanceRepository) Fetch(ctx context.Context, symbols []string) []dto.MarketQuote {
	quotes := make([]dto.MarketQuote, 0, len(symbols))
	for _, symbol := range symbols {
		quote, err := r.fetchQuote(ctx, symbol)
		if err != nil {
			r.metrics.RecordQuoteFetchFailure(symbol)
			r.log.ErrorContext(ctx, "Failed to fetch quote", logger.StringField("symbol", symbol), logger.ErrorField(err))
			continue
		}
		quotes = append(quotes, *quote)
	}
	return quotes
}

// Ping waits on its own limiter so status polling never delays Fetch.
func (r *yahooFinanceRepository) Ping(ctx context.Context, symbol string) error {
	_, err := r.sendRequest(ctx, r.probeLimiter, r.chartURL(symbol))
	return err
}

func (r *yahooFinanceRepository) fetchQuote(ctx context.Context, symbol string) (*dto.MarketQuote, error) {
	body, err := r.sendRequest(ctx, r.requestLimiter, r.chartURL(symbol))
	if err != nil {
		return nil, err
	}

	var chart dto.YahooChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("failed to decode chart response: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("chart api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart api returned no result")
	}

	return buildQuote(symbol, chart.Chart.Result[0].Meta)
}

// buildQuote derives change and changePercent from the chart meta.
func buildQuote(symbol string, meta dto.YahooChartMeta) (*dto.MarketQuote, error) {
	if meta.RegularMarketPrice == nil {
		return nil, fmt.Errorf("chart meta has no regularMarketPrice")
	}
	prevClose := meta.PreviousClose
	if prevClose == nil {
		prevClose = meta.ChartPreviousClose
	}
	if prevClose == nil || *prevClose == 0 {
		return nil, fmt.Errorf("chart meta has no usable previousClose")
	}

	price := *meta.RegularMarketPrice
	change := price - *prevClose
	percent := decimal.NewFromFloat(change).
		Div(decimal.NewFromFloat(*prevClose)).
		Mul(decimal.NewFromInt(100))

	var volume int64
	if meta.RegularMarketVolume != nil {
		volume = *meta.RegularMarketVolume
	}

	return &dto.MarketQuote{
		Symbol:        symbol,
		Price:         price,
		PreviousClose: *prevClose,
		Change:        change,
		ChangePercent: percent.StringFixed(2),
		Volume:        volume,
	}, nil
}

func (r *yahooFinanceRepository) chartURL(symbol string) string {
	return fmt.Sprintf("%s/v8/finance/chart/%s", r.cfg.YahooFinance.BaseURL, url.PathEscape(symbol+r.cfg.YahooFinance.SymbolSuffix))
}

func (r *yahooFinanceRepository) sendRequest(ctx context.Context, limiter *rate.Limiter, endpoint string) ([]byte, error) {
	fields := []zap.Field{
		zap.String("url", endpoint),
		zap.Int("max_request_per_minute", r.cfg.YahooFinance.MaxRequestPerMinute),
	}

	if err := limiter.Wait(ctx); err != nil {
		r.log.ErrorContext(ctx, "Failed to wait for request limit", append(fields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Yahoo Finance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.DebugContext(ctx, "Received non-OK response from Yahoo Finance", append(fields, zap.Int("status_code", resp.StatusCode))...)
		return nil, fmt.Errorf("received non-OK response from Yahoo Finance: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
