package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stock-signal-relay/internal/signal/config"
	"stock-signal-relay/internal/signal/dto"
	"stock-signal-relay/pkg/logger"
	"stock-signal-relay/pkg/utils"
)

type groqAIRepository struct {
	client *http.Client
	cfg    *config.Config
	logger *logger.Logger
	now    func() time.Time
}

// NewGroqAIRepository creates an AIRepository for the Groq OpenAI-compatible chat completions API.
func NewGroqAIRepository(cfg *config.Config, logger *logger.Logger) AIRepository {
	return &groqAIRepository{
		client: &http.Client{
			Timeout: cfg.Groq.Timeout,
		},
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

func (r *groqAIRepository) GenerateSignals(ctx context.Context, quotes []dto.MarketQuote) (*dto.AnalysisResult, error) {
	if len(quotes) == 0 {
		return nil, dto.ErrNoValidQuotes
	}
	return r.generate(ctx, BuildSignalPrompt(quotes))
}

func (r *groqAIRepository) GenerateMarketAnalysis(ctx context.Context, quotes []dto.MarketQuote) (*dto.AnalysisResult, error) {
	if len(quotes) == 0 {
		return nil, dto.ErrNoValidQuotes
	}
	loc := utils.LoadLocation(r.cfg.Market.TimeZone)
	return r.generate(ctx, BuildMarketAnalysisPrompt(quotes, r.now().In(loc)))
}

func (r *groqAIRepository) generate(ctx context.Context, prompt string) (*dto.AnalysisResult, error) {
	resp, err := r.SendRequest(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", dto.ErrMalformedModelOutput)
	}

	result, err := ParseAnalysis(resp.Choices[0].Message.Content)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to parse model response", logger.ErrorField(err), logger.StringField("response", resp.Choices[0].Message.Content))
		return nil, err
	}
	return result, nil
}

// SendRequest posts a single-message chat completion with the configured generation limits.
func (r *groqAIRepository) SendRequest(ctx context.Context, prompt string) (*dto.ChatCompletionResponse, error) {
	payload := dto.ChatCompletionRequest{
		Model: r.cfg.Groq.Model,
		Messages: []dto.Message{
			{
				Role:    "user",
				Content: prompt,
			},
		},
		MaxTokens:      r.cfg.AI.MaxTokens,
		Temperature:    r.cfg.AI.Temperature,
		ResponseFormat: &dto.ResponseFormat{Type: "json_object"},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	r.logger.DebugContext(ctx, "Sending request to Groq API", logger.StringField("url", r.cfg.Groq.BaseURL), logger.StringField("model", r.cfg.Groq.Model))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Groq.BaseURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.cfg.Groq.APIKey))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request to Groq API: %v", dto.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		r.logger.ErrorContext(ctx, "Received non-OK response from Groq API", logger.IntField("status_code", resp.StatusCode), logger.StringField("model", r.cfg.Groq.Model))
		return nil, fmt.Errorf("%w: received non-OK response from Groq API: %d - %s", dto.ErrUpstreamUnavailable, resp.StatusCode, string(body))
	}

	var completion dto.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response body: %v", dto.ErrUpstreamUnavailable, err)
	}

	r.logger.DebugContext(ctx, "Groq token usage", logger.IntField("total_tokens", completion.Usage.TotalTokens))
	return &completion, nil
}
