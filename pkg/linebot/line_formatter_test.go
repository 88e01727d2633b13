package linebot

import (
	"strings"
	"testing"

	"stock-signal-relay/internal/signal/dto"

	"github.com/stretchr/testify/assert"
)

func TestFormatSignals(t *testing.T) {
	result := &dto.AnalysisResult{Signals: []dto.Signal{
		{Symbol: "6758", Action: "BUY", Confidence: 85, Reason: "出来高増加"},
		{Symbol: "7203", Action: "SELL", Confidence: 70, Reason: "過熱感"},
		{Symbol: "9984", Action: "HOLD", Confidence: 50, Reason: "中立"},
	}}

	got := FormatSignals(result, 42)

	assert.True(t, strings.HasPrefix(got, "📊 TradeharmonyAI シグナル\n\n"))
	assert.Contains(t, got, "🟢 6758: 買い時\n信頼度: 85%\n理由: 出来高増加\n\n")
	assert.Contains(t, got, "🔴 7203: 売り時\n信頼度: 70%\n")
	assert.Contains(t, got, "⚪ 9984: 様子見\n信頼度: 50%\n")
	assert.True(t, strings.HasSuffix(got, "⚠️ 投資判断は自己責任で\n📱 無料版：1日42通残り"))

	first := strings.Index(got, "6758")
	second := strings.Index(got, "7203")
	third := strings.Index(got, "9984")
	assert.True(t, first < second && second < third, "signals keep input order")
}

func TestFormatSignals_MarketSummary(t *testing.T) {
	got := FormatSignals(&dto.AnalysisResult{
		Signals:       []dto.Signal{{Symbol: "6758", Action: "buy", Confidence: 60, Reason: "r"}},
		MarketSummary: "堅調",
	}, 0)

	assert.Contains(t, got, "🟢 6758: 買い時")
	assert.Contains(t, got, "📝 市場概況: 堅調")
}

func TestFormatSignals_NoData(t *testing.T) {
	assert.Equal(t, NoDataMessage, FormatSignals(nil, 10))
	assert.Equal(t, NoDataMessage, FormatSignals(&dto.AnalysisResult{}, 10))
}

func TestFormatSignals_NegativeRemaining(t *testing.T) {
	got := FormatSignals(&dto.AnalysisResult{Signals: []dto.Signal{}}, -3)
	assert.Contains(t, got, "1日0通残り")
}

func TestHelpMessage(t *testing.T) {
	got := HelpMessage(HelpInfo{
		DailyModelCalls: 20,
		DailyMessages:   50,
		Symbols:         3,
		FreshnessHours:  4,
		TradingStart:    9,
		TradingEnd:      15,
	})

	assert.Contains(t, got, "• 1日20回AI分析")
	assert.Contains(t, got, "• 1日50通LINE通知")
	assert.Contains(t, got, "• 3銘柄監視")
	assert.Contains(t, got, "• 4時間キャッシュ")
	assert.Contains(t, got, "平日9:00-15:00")
}

func TestRateLimitMessage(t *testing.T) {
	assert.Equal(t, "⏰ 1時間に5回までご利用いただけます。しばらく時間をおいてからお試しください。", RateLimitMessage(5))
}
