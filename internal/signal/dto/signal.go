package dto

import "time"

// MarketQuote is a single validated price snapshot for one ticker.
type MarketQuote struct {
	Symbol        string  `json:"symbol" validate:"required"`
	Price         float64 `json:"price" validate:"gt=0"`
	PreviousClose float64 `json:"previous_close"`
	Change        float64 `json:"change"`
	ChangePercent string  `json:"change_percent" validate:"required"`
	Volume        int64   `json:"volume" validate:"gte=0"`
}

// Signal is the model's opinion on one symbol.
type Signal struct {
	Symbol     string `json:"symbol"`
	Action     string `json:"action"`
	Confidence int    `json:"confidence"`
	Reason     string `json:"reason"`
}

// AnalysisResult is the unit stored in and served from the cache.
type AnalysisResult struct {
	Signals       []Signal  `json:"signals"`
	MarketSummary string    `json:"market_summary,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// CacheEntry is the singleton cached analysis row.
type CacheEntry struct {
	Data      AnalysisResult `json:"data"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Age returns how old the entry is at now.
func (e CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.UpdatedAt)
}

// Clone returns a copy that shares no slice storage with r.
func (r AnalysisResult) Clone() AnalysisResult {
	if r.Signals != nil {
		r.Signals = append([]Signal(nil), r.Signals...)
	}
	return r
}
