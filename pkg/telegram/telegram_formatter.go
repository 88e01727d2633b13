package telegram

import (
	"fmt"
	"html"
	"strings"
	"time"

	"stock-signal-relay/internal/signal/dto"
)

// maxMessageLen stays under Telegram's 4096 character limit.
const maxMessageLen = 4090

var actionEmoji = map[string]string{
	"BUY":  "🟢",
	"SELL": "🔴",
	"HOLD": "⚪",
}

// FormatScheduledAnalysis renders a scheduled analysis run for the operator chat.
func FormatScheduledAnalysis(result *dto.AnalysisResult, validQuotes int, at time.Time) string {
	var sb strings.Builder

	sb.WriteString("📊 <b>Scheduled analysis</b>\n")
	sb.WriteString(fmt.Sprintf("🕒 %s\n", at.Format("2006-01-02 15:04 MST")))
	sb.WriteString(fmt.Sprintf("📈 Quotes: %d, signals: %d\n\n", validQuotes, len(result.Signals)))

	for _, s := range result.Signals {
		emoji, ok := actionEmoji[strings.ToUpper(s.Action)]
		if !ok {
			emoji = "⚪"
		}
		sb.WriteString(fmt.Sprintf("%s <b>%s</b> %s (%d%%)\n", emoji, html.EscapeString(s.Symbol), html.EscapeString(s.Action), s.Confidence))
		if s.Reason != "" {
			sb.WriteString(fmt.Sprintf("<i>%s</i>\n", html.EscapeString(s.Reason)))
		}
	}

	if result.MarketSummary != "" {
		sb.WriteString(fmt.Sprintf("\n📝 %s\n", html.EscapeString(result.MarketSummary)))
	}

	return truncate(sb.String())
}

// FormatErrorAlertMessage renders a failed scheduled run.
func FormatErrorAlertMessage(at time.Time, errType string, errMsg string) string {
	return truncate(fmt.Sprintf("📛 <b>[ERROR ALERT]</b>\n%s\n🔧 %s\n⚠️ %s\n",
		at.Format("2006-01-02 15:04 MST"), html.EscapeString(errType), html.EscapeString(errMsg)))
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxMessageLen {
		return s
	}
	return string(r[:maxMessageLen-1]) + "…"
}
