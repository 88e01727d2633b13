package dto

// YahooChartResponse is the subset of the Yahoo Finance v8 chart response we read.
type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta YahooChartMeta `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// YahooChartMeta holds the live quote fields of a chart result.
type YahooChartMeta struct {
	Symbol               string   `json:"symbol"`
	RegularMarketPrice   *float64 `json:"regularMarketPrice"`
	PreviousClose        *float64 `json:"previousClose"`
	ChartPreviousClose   *float64 `json:"chartPreviousClose"`
	RegularMarketVolume  *int64   `json:"regularMarketVolume"`
	Currency             string   `json:"currency"`
	ExchangeName         string   `json:"exchangeName"`
	RegularMarketTimeSec int64    `json:"regularMarketTime"`
}
