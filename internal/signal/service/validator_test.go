package service

import (
	"math"
	"testing"

	"stock-signal-relay/internal/signal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidQuote(t *testing.T) {
	tests := []struct {
		name  string
		quote *dto.MarketQuote
		want  bool
	}{
		{"valid", &dto.MarketQuote{Symbol: "6758", Price: 1000, ChangePercent: "+2.5"}, true},
		{"nil", nil, false},
		{"negative price", &dto.MarketQuote{Symbol: "6758", Price: -100, ChangePercent: "+2.5"}, false},
		{"zero price", &dto.MarketQuote{Symbol: "6758", Price: 0, ChangePercent: "0.00"}, false},
		{"empty symbol", &dto.MarketQuote{Symbol: "", Price: 1000, ChangePercent: "+2.5"}, false},
		{"missing change percent", &dto.MarketQuote{Symbol: "6758", Price: 1000}, false},
		{"incomplete", &dto.MarketQuote{Symbol: "6758"}, false},
		{"NaN price", &dto.MarketQuote{Symbol: "6758", Price: math.NaN(), ChangePercent: "1.00"}, false},
		{"infinite price", &dto.MarketQuote{Symbol: "6758", Price: math.Inf(1), ChangePercent: "1.00"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidQuote(tt.quote))
		})
	}
}

func TestFilterValidQuotes(t *testing.T) {
	quotes := []dto.MarketQuote{
		{Symbol: "6758", Price: 1000, ChangePercent: "1.00"},
		{Symbol: "", Price: 1000, ChangePercent: "1.00"},
		{Symbol: "9984", Price: 9000, ChangePercent: "-0.50"},
	}

	valid := FilterValidQuotes(quotes)
	require.Len(t, valid, 2)
	assert.Equal(t, []string{"6758", "9984"}, []string{valid[0].Symbol, valid[1].Symbol})
	assert.Empty(t, FilterValidQuotes(nil))
}
