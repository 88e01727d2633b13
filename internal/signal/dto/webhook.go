package dto

// WebhookRequest is the inbound chat webhook body.
type WebhookRequest struct {
	Destination string         `json:"destination"`
	Events      []WebhookEvent `json:"events"`
}

// WebhookEvent is one chat event. Only message events with a text message are acted on.
type WebhookEvent struct {
	Type       string          `json:"type"`
	ReplyToken string          `json:"replyToken"`
	Timestamp  int64           `json:"timestamp"`
	Source     EventSource     `json:"source"`
	Message    *WebhookMessage `json:"message,omitempty"`
}

type EventSource struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	GroupID string `json:"groupId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
}

type WebhookMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// IsTextMessage reports whether the event carries a text message.
func (e WebhookEvent) IsTextMessage() bool {
	return e.Type == "message" && e.Message != nil && e.Message.Type == "text"
}
