package service

import (
	"math"

	"stock-signal-relay/internal/signal/dto"

	"github.com/go-playground/validator/v10"
)

var quoteValidator = validator.New()

// IsValidQuote reports whether q may be embedded in a model prompt: a positive
// finite price, a non-empty symbol and a present change percent.
func IsValidQuote(q *dto.MarketQuote) bool {
	if q == nil {
		return false
	}
	if math.IsNaN(q.Price) || math.IsInf(q.Price, 0) {
		return false
	}
	return quoteValidator.Struct(q) == nil
}

// FilterValidQuotes drops invalid quotes, keeping input order.
func FilterValidQuotes(quotes []dto.MarketQuote) []dto.MarketQuote {
	valid := make([]dto.MarketQuote, 0, len(quotes))
	for i := range quotes {
		if IsValidQuote(&quotes[i]) {
			valid = append(valid, quotes[i])
		}
	}
	return valid
}
