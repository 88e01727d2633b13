package linebot

import (
	"context"
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Replier sends a text reply to a chat event.
type Replier interface {
	Reply(ctx context.Context, replyToken, text string) error
}

type client struct {
	api *messaging_api.MessagingApiAPI
}

// NewClient creates a Replier backed by the LINE Messaging API.
func NewClient(channelAccessToken string) (Replier, error) {
	api, err := messaging_api.NewMessagingApiAPI(channelAccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE messaging client: %w", err)
	}
	return &client{api: api}, nil
}

// Reply answers the event identified by replyToken with a single text message.
// The SDK client carries its own context, so ctx only gates the call.
func (c *client) Reply(ctx context.Context, replyToken, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{Text: text},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to reply via LINE: %w", err)
	}
	return nil
}
