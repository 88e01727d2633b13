package linebot

import (
	"fmt"
	"strings"

	"stock-signal-relay/internal/signal/dto"
)

const (
	// NoDataMessage is sent when there is no analysis to show.
	NoDataMessage = "❌ 現在、分析データを取得できません。しばらく後にお試しください。"
	// PromptMessage answers any text that is not a known command.
	PromptMessage = "「シグナル」または「ヘルプ」と入力してください。"
	// ErrorMessage is sent when handling a message failed unexpectedly.
	ErrorMessage = "❌ 申し訳ございません。一時的なエラーが発生しました。しばらく後にお試しください。"
)

var actionLabels = map[string]struct {
	emoji string
	text  string
}{
	"BUY":  {emoji: "🟢", text: "買い時"},
	"SELL": {emoji: "🔴", text: "売り時"},
}

var holdLabel = struct {
	emoji string
	text  string
}{emoji: "⚪", text: "様子見"}

// FormatSignals renders an analysis as a chat message. remaining is the
// number of messages left today and is shown in the trailer.
func FormatSignals(result *dto.AnalysisResult, remaining int) string {
	if result == nil || result.Signals == nil {
		return NoDataMessage
	}

	var b strings.Builder
	b.WriteString("📊 TradeharmonyAI シグナル\n\n")

	for _, s := range result.Signals {
		label, ok := actionLabels[strings.ToUpper(s.Action)]
		if !ok {
			label = holdLabel
		}
		fmt.Fprintf(&b, "%s %s: %s\n", label.emoji, s.Symbol, label.text)
		fmt.Fprintf(&b, "信頼度: %d%%\n", s.Confidence)
		fmt.Fprintf(&b, "理由: %s\n\n", s.Reason)
	}

	if summary := strings.TrimSpace(result.MarketSummary); summary != "" {
		fmt.Fprintf(&b, "📝 市場概況: %s\n\n", summary)
	}

	if remaining < 0 {
		remaining = 0
	}
	fmt.Fprintf(&b, "⚠️ 投資判断は自己責任で\n📱 無料版：1日%d通残り", remaining)
	return b.String()
}

// HelpInfo carries the live limits shown in the help message.
type HelpInfo struct {
	DailyModelCalls int
	DailyMessages   int
	Symbols         int
	FreshnessHours  int
	TradingStart    int
	TradingEnd      int
}

// HelpMessage renders the command list and current limits.
func HelpMessage(info HelpInfo) string {
	return fmt.Sprintf(`🤖 TradeharmonyAI - 無料版

📊 コマンド:
• "シグナル" - 最新分析結果
• "ヘルプ" - この画面

🆓 無料版制限:
• 1日%d回AI分析
• 1日%d通LINE通知
• %d銘柄監視
• %d時間キャッシュ

💡 データ更新: 平日%d:00-%d:00
⚠️ 投資は自己責任でお願いします`,
		info.DailyModelCalls, info.DailyMessages, info.Symbols, info.FreshnessHours,
		info.TradingStart, info.TradingEnd)
}

// RateLimitMessage tells a user they have used up their hourly requests.
func RateLimitMessage(perHour int) string {
	return fmt.Sprintf("⏰ 1時間に%d回までご利用いただけます。しばらく時間をおいてからお試しください。", perHour)
}
