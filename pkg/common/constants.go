package common

const (
	// SignalCacheTable is the store collection holding the cached analysis.
	SignalCacheTable = "signal_cache"
	// SignalCacheID is the fixed id of the single cached analysis row.
	SignalCacheID = "latest"

	RedisKeySignalCache  = "signal_cache:latest"
	RedisKeyModelCalls   = "usage:model_calls"
	RedisKeyMessagesSent = "usage:messages_sent"
	RedisKeyUserRequests = "usage:user"

	HeaderLineSignature = "X-Line-Signature"

	ActionBuy  = "BUY"
	ActionSell = "SELL"
	ActionHold = "HOLD"
)
