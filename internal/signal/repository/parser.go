package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"stock-signal-relay/internal/signal/dto"
	"stock-signal-relay/pkg/common"
)

type modelPayload struct {
	Signals       []dto.Signal `json:"signals"`
	MarketSummary string       `json:"market_summary"`
}

// ParseAnalysis decodes model text into an AnalysisResult. Code fences around
// the JSON are tolerated; anything that does not match the signal schema is
// reported as dto.ErrMalformedModelOutput.
func ParseAnalysis(raw string) (*dto.AnalysisResult, error) {
	rawJSON := strings.TrimSpace(raw)
	rawJSON = strings.TrimPrefix(rawJSON, "```json")
	rawJSON = strings.TrimPrefix(rawJSON, "```")
	rawJSON = strings.TrimSuffix(rawJSON, "```")
	rawJSON = strings.TrimSpace(rawJSON)
	if rawJSON == "" {
		return nil, fmt.Errorf("%w: empty response", dto.ErrMalformedModelOutput)
	}

	var payload modelPayload
	if err := json.Unmarshal([]byte(rawJSON), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrMalformedModelOutput, err)
	}
	if len(payload.Signals) == 0 {
		return nil, fmt.Errorf("%w: no signals", dto.ErrMalformedModelOutput)
	}

	for i, s := range payload.Signals {
		if s.Symbol == "" {
			return nil, fmt.Errorf("%w: signal %d has no symbol", dto.ErrMalformedModelOutput, i)
		}
		action := strings.ToUpper(strings.TrimSpace(s.Action))
		switch action {
		case common.ActionBuy, common.ActionSell, common.ActionHold:
		default:
			return nil, fmt.Errorf("%w: signal %s has action %q", dto.ErrMalformedModelOutput, s.Symbol, s.Action)
		}
		if s.Confidence < 0 || s.Confidence > 100 {
			return nil, fmt.Errorf("%w: signal %s has confidence %d", dto.ErrMalformedModelOutput, s.Symbol, s.Confidence)
		}
		payload.Signals[i].Action = action
	}

	return &dto.AnalysisResult{
		Signals:       payload.Signals,
		MarketSummary: payload.MarketSummary,
	}, nil
}
