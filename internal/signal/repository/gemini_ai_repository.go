package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stock-signal-relay/internal/signal/config"
	"stock-signal-relay/internal/signal/dto"
	"stock-signal-relay/pkg/logger"
	"stock-signal-relay/pkg/utils"

	"google.golang.org/genai"
)

// geminiAIRepository is an implementation of AIRepository that uses the Google Gemini API.
type geminiAIRepository struct {
	cfg         *config.Config
	logger      *logger.Logger
	genAiClient *genai.Client
	now         func() time.Time
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (AIRepository, error) {
	if genAiClient == nil {
		return nil, fmt.Errorf("gemini client is required")
	}
	return &geminiAIRepository{
		cfg:         cfg,
		logger:      log,
		genAiClient: genAiClient,
		now:         time.Now,
	}, nil
}

func (r *geminiAIRepository) GenerateSignals(ctx context.Context, quotes []dto.MarketQuote) (*dto.AnalysisResult, error) {
	if len(quotes) == 0 {
		return nil, dto.ErrNoValidQuotes
	}
	return r.generate(ctx, BuildSignalPrompt(quotes))
}

func (r *geminiAIRepository) GenerateMarketAnalysis(ctx context.Context, quotes []dto.MarketQuote) (*dto.AnalysisResult, error) {
	if len(quotes) == 0 {
		return nil, dto.ErrNoValidQuotes
	}
	loc := utils.LoadLocation(r.cfg.Market.TimeZone)
	return r.generate(ctx, BuildMarketAnalysisPrompt(quotes, r.now().In(loc)))
}

func (r *geminiAIRepository) generate(ctx context.Context, prompt string) (*dto.AnalysisResult, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	genCfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(r.cfg.AI.Temperature)),
		MaxOutputTokens:  int32(r.cfg.AI.MaxTokens),
		ResponseMIMEType: "application/json",
	}

	r.logger.DebugContext(ctx, "Sending request to Gemini API", logger.StringField("model", r.cfg.Gemini.Model))

	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.Model, contents, genCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate content: %v", dto.ErrUpstreamUnavailable, err)
	}

	text := responseText(resp)
	result, err := ParseAnalysis(text)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to parse Gemini response", logger.ErrorField(err), logger.StringField("response", text))
		return nil, err
	}
	return result, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
