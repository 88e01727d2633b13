package repository

import (
	"context"
	"encoding/json"
	"errors"
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

func newGroqTestConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Groq.BaseURL = baseURL
	cfg.Groq.APIKey = "test-key"
	cfg.Groq.Model = "llama-3.1-70b-versatile"
	cfg.Groq.Timeout = 2 * time.Second
	cfg.AI.MaxTokens = 500
	cfg.AI.Temperature = 0.3
	cfg.Market.TimeZone = "UTC"
	return cfg
}

func completionHandler(t *testing.T, content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req dto.ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama-3.1-70b-versatile", req.Model)
		assert.Equal(t, 500, req.MaxTokens)
		assert.InDelta(t, 0.3, req.Temperature, 1e-9)
		if assert.Len(t, req.Messages, 1) {
			assert.Contains(t, req.Messages[0].Content, "6758")
		}

		_ = json.NewEncoder(w).Encode(dto.ChatCompletionResponse{
			Choices: []dto.Choice{{Message: dto.Message{Role: "assistant", Content: content}}},
		})
	}
}

var testQuotes = []dto.MarketQuote{{Symbol: "6758", Price: 2500, ChangePercent: "1.00"}}

func TestGroqAIRepository_GenerateSignals(t *testing.T) {
	srv := httptest.NewServer(completionHandler(t, `{"signals":[{"symbol":"6758","action":"BUY","confidence":85,"reason":"x"}]}`))
	defer srv.Close()

	repo := NewGroqAIRepository(newGroqTestConfig(srv.URL), logger.NewNop())
	result, err := repo.GenerateSignals(context.Background(), testQuotes)
	require.NoError(t, err)
	assert.Equal(t, []dto.Signal{{Symbol: "6758", Action: "BUY", Confidence: 85, Reason: "x"}}, result.Signals)
}

func TestGroqAIRepository_MalformedOutput(t *testing.T) {
	for name, content := range map[string]string{
		"prose":         "BUY everything",
		"empty signals": `{"signals":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(completionHandler(t, content))
			defer srv.Close()

			repo := NewGroqAIRepository(newGroqTestConfig(srv.URL), logger.NewNop())
			_, err := repo.GenerateMarketAnalysis(context.Background(), testQuotes)
			assert.True(t, errors.Is(err, dto.ErrMalformedModelOutput))
		})
	}
}

func TestGroqAIRepository_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	repo := NewGroqAIRepository(newGroqTestConfig(srv.URL), logger.NewNop())
	_, err := repo.GenerateSignals(context.Background(), testQuotes)
	assert.True(t, errors.Is(err, dto.ErrUpstreamUnavailable))
}

func TestGroqAIRepository_NoQuotes(t *testing.T) {
	repo := NewGroqAIRepository(newGroqTestConfig("http://unused"), logger.NewNop())
	_, err := repo.GenerateSignals(context.Background(), nil)
	assert.True(t, errors.Is(err, dto.ErrNoValidQuotes))
}
