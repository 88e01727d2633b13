package repository

import (
	"context"

	"stock-signal-relay/internal/signal/dto"
)

// AIRepository turns validated quotes into trading signals via a language model.
type AIRepository interface {
	// GenerateSignals asks for one signal per quote. quotes must be non-empty.
	GenerateSignals(ctx context.Context, quotes []dto.MarketQuote) (*dto.AnalysisResult, error)
	// GenerateMarketAnalysis also asks for a market summary; used by scheduled runs.
	GenerateMarketAnalysis(ctx context.Context, quotes []dto.MarketQuote) (*dto.AnalysisResult, error)
}
