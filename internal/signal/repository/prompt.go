package repository

import (
	"fmt"
	"strings"
	"time"

	"stock-signal-relay/internal/signal/dto"
)

func formatQuoteLines(quotes []dto.MarketQuote) string {
	var b strings.Builder
	for _, q := range quotes {
		sign := ""
		if !strings.HasPrefix(q.ChangePercent, "-") {
			sign = "+"
		}
		b.WriteString(fmt.Sprintf("%s: ¥%s (%s%s%%)\n", q.Symbol, formatPrice(q.Price), sign, q.ChangePercent))
	}
	return b.String()
}

func formatPrice(price float64) string {
	s := fmt.Sprintf("%.2f", price)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// BuildSignalPrompt asks for one BUY/SELL/HOLD decision per quote as strict JSON.
func BuildSignalPrompt(quotes []dto.MarketQuote) string {
	return fmt.Sprintf(`日本株の簡易分析をお願いします。

データ:
%s
以下のJSON形式で%dつの銘柄の判断を返してください。JSON以外は出力しないでください：
{
  "signals": [
    {
      "symbol": "%s",
      "action": "BUY|SELL|HOLD",
      "confidence": 85,
      "reason": "簡潔な理由"
    }
  ]
}

判断基準：
- BUY: 上昇トレンドかつ出来高増加
- SELL: 下落トレンドかつ過熱感
- HOLD: 判断材料不足または中立
`, formatQuoteLines(quotes), len(quotes), quotes[0].Symbol)
}

// BuildMarketAnalysisPrompt is the scheduled variant that also asks for a market summary.
func BuildMarketAnalysisPrompt(quotes []dto.MarketQuote, now time.Time) string {
	return fmt.Sprintf(`日本株の定期分析を実行します。

現在のデータ:
%s
以下のJSON形式で分析結果を返してください。JSON以外は出力しないでください：
{
  "signals": [
    {
      "symbol": "%s",
      "action": "BUY|SELL|HOLD",
      "confidence": 85,
      "reason": "分析理由"
    }
  ],
  "market_summary": "市場全体の状況",
  "timestamp": "%s"
}
`, formatQuoteLines(quotes), quotes[0].Symbol, now.Format(time.RFC3339))
}
