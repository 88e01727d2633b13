package linebot

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

// ErrInvalidSignature is returned when a webhook body does not match its signature header.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Sign returns the base64 HMAC-SHA256 of body under secret, the value the
// channel sends in the signature header.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidateSignature reports whether signature matches the raw body under
// secret. An empty signature or secret never validates.
func ValidateSignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	return webhook.ValidateSignature(secret, signature, body)
}
