package config

import (
	"time"

	"stock-signal-relay/pkg/config"
)

// Quota holds the metered-call ceilings.
type Quota struct {
	MaxDailyModelCalls     int `mapstructure:"max_daily_model_calls" default:"20" validate:"gt=0"`
	MaxDailyMessages       int `mapstructure:"max_daily_messages" default:"50" validate:"gt=0"`
	MaxUserRequestsPerHour int `mapstructure:"max_user_requests_per_hour" default:"5" validate:"gt=0"`
}

// Cache holds analysis cache settings.
type Cache struct {
	FreshnessHours int    `mapstructure:"freshness_hours" default:"4" validate:"gt=0"`
	Backend        string `mapstructure:"backend" default:"postgres" validate:"oneof=postgres redis memory"`
}

// FreshnessWindow returns the maximum age a cached analysis may have.
func (c Cache) FreshnessWindow() time.Duration {
	return time.Duration(c.FreshnessHours) * time.Hour
}

// Usage selects where quota counters live.
type Usage struct {
	Backend string `mapstructure:"backend" default:"memory" validate:"oneof=memory redis"`
}

// Market holds the watched symbols and the local trading window.
type Market struct {
	Symbols            []string `mapstructure:"symbols" default:"[\"6758\",\"7203\",\"9984\"]" validate:"min=1,dive,required"`
	TimeZone           string   `mapstructure:"time_zone" default:"Asia/Tokyo"`
	TradingDays        []int    `mapstructure:"trading_days" default:"[1,2,3,4,5]" validate:"dive,min=0,max=6"`
	TradingStartHour   int      `mapstructure:"trading_start_hour" default:"9" validate:"min=0,max=23"`
	TradingEndHour     int      `mapstructure:"trading_end_hour" default:"15" validate:"min=0,max=23"`
	FallbackConfidence int      `mapstructure:"fallback_confidence" default:"50" validate:"min=0,max=100"`
}

// AI selects the language-model provider.
type AI struct {
	Provider    string  `mapstructure:"provider" default:"groq" validate:"oneof=groq gemini"`
	MaxTokens   int     `mapstructure:"max_tokens" default:"500" validate:"gt=0"`
	Temperature float64 `mapstructure:"temperature" default:"0.3" validate:"min=0,max=2"`
}

// Groq holds the configuration for the Groq (OpenAI-compatible) API.
type Groq struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url" default:"https://api.groq.com/openai/v1/chat/completions"`
	Model   string        `mapstructure:"model" default:"llama-3.1-70b-versatile"`
	Timeout time.Duration `mapstructure:"timeout" default:"30s"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model" default:"gemini-2.0-flash"`
}

// YahooFinance holds the configuration for the quote upstream.
type YahooFinance struct {
	BaseURL             string        `mapstructure:"base_url" default:"https://query1.finance.yahoo.com"`
	SymbolSuffix        string        `mapstructure:"symbol_suffix" default:".T"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute" default:"60" validate:"gt=0"`
	Timeout             time.Duration `mapstructure:"timeout" default:"10s"`
}

// Line holds the chat channel credentials.
type Line struct {
	ChannelSecret      string `mapstructure:"channel_secret"`
	ChannelAccessToken string `mapstructure:"channel_access_token"`
}

// Telegram holds configuration for the optional operator broadcast.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Cron holds configuration for the in-process scheduled trigger.
type Cron struct {
	Enabled bool   `mapstructure:"enabled"`
	Spec    string `mapstructure:"spec" default:"0 9-15 * * 1-5"`
}

// Config holds the full configuration for the signal service.
type Config struct {
	App          config.App      `mapstructure:"app"`
	Logger       config.Logger   `mapstructure:"logger"`
	Database     config.Database `mapstructure:"database"`
	Redis        config.Redis    `mapstructure:"redis"`
	API          config.API      `mapstructure:"api"`
	Quota        Quota           `mapstructure:"quota"`
	Cache        Cache           `mapstructure:"cache"`
	Usage        Usage           `mapstructure:"usage"`
	Market       Market          `mapstructure:"market"`
	AI           AI              `mapstructure:"ai"`
	Groq         Groq            `mapstructure:"groq"`
	Gemini       Gemini          `mapstructure:"gemini"`
	YahooFinance YahooFinance    `mapstructure:"yahoo_finance"`
	Line         Line            `mapstructure:"line"`
	Telegram     Telegram        `mapstructure:"telegram"`
	Cron         Cron            `mapstructure:"cron"`
}

// envAliases keeps the flat variable names of earlier deployments working.
var envAliases = map[string][]string{
	"quota.max_daily_model_calls": {"MAX_DAILY_MODEL_CALLS", "MAX_DAILY_GROQ_CALLS"},
	"quota.max_daily_messages":    {"MAX_DAILY_MESSAGES", "MAX_DAILY_LINE_MESSAGES"},
	"cache.freshness_hours":       {"CACHE_FRESHNESS_HOURS", "CACHE_DURATION_HOURS"},
	"line.channel_secret":         {"LINE_CHANNEL_SECRET"},
	"line.channel_access_token":   {"LINE_CHANNEL_ACCESS_TOKEN"},
	"groq.api_key":                {"GROQ_API_KEY"},
	"gemini.api_key":              {"GEMINI_API_KEY"},
	"database.url":                {"DATABASE_URL"},
}

// Load loads the signal service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, envAliases); err != nil {
		return nil, err
	}
	return &cfg, nil
}
