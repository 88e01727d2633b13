package dto

import "time"

// StatusResponse is the body of the status endpoint.
type StatusResponse struct {
	Service      string       `json:"service"`
	Version      string       `json:"version"`
	Status       string       `json:"status"`
	Usage        UsageStatus  `json:"usage"`
	SystemHealth SystemHealth `json:"system_health"`
	DatabaseSize string       `json:"database_size"`
	MonthlyCost  int          `json:"monthly_cost"`
	LastUpdated  time.Time    `json:"last_updated"`
}

type UsageStatus struct {
	ModelCalls QuotaStatus `json:"model_calls"`
	Messages   QuotaStatus `json:"messages"`
}

type QuotaStatus struct {
	Used       int `json:"used"`
	Limit      int `json:"limit"`
	Percentage int `json:"percentage"`
}

type SystemHealth struct {
	Checks  HealthChecks `json:"checks"`
	Overall string       `json:"overall"`
	Score   string       `json:"score"`
}

type HealthChecks struct {
	Database    bool `json:"database"`
	ExternalAPI bool `json:"external_api"`
	Cache       bool `json:"cache"`
}

// TriggerResponse is the body of the scheduled trigger endpoint.
type TriggerResponse struct {
	Message   string     `json:"message"`
	Status    string     `json:"status,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Symbols   int        `json:"symbols,omitempty"`
	Signals   int        `json:"signals,omitempty"`
}

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
