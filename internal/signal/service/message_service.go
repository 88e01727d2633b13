package service

import (
	"context"
	"errors"
	"strings"

	"stock-signal-relay/internal/signal/config"
	"stock-signal-relay/internal/signal/dto"
	"stock-signal-relay/pkg/linebot"
	"stock-signal-relay/pkg/logger"
	"stock-signal-relay/pkg/metrics"
)

type command int

const (
	commandOther command = iota
	commandSignal
	commandHelp
)

func classify(text string) command {
	text = strings.ToLower(text)
	switch {
	case strings.Contains(text, "シグナル"), strings.Contains(text, "分析"):
		return commandSignal
	case strings.Contains(text, "ヘルプ"):
		return commandHelp
	default:
		return commandOther
	}
}

// MessageService answers chat webhook events.
type MessageService interface {
	// HandleEvents processes events in order. Events that are not text
	// messages are ignored. Failures are logged, never returned.
	HandleEvents(ctx context.Context, events []dto.WebhookEvent)
}

type messageService struct {
	cfg      *config.Config
	log      *logger.Logger
	signals  SignalService
	usage    UsageTracker
	replier  linebot.Replier
	recorder *metrics.Recorder
}

func NewMessageService(cfg *config.Config, log *logger.Logger,
	signals SignalService,
	usage UsageTracker,
	replier linebot.Replier,
	recorder *metrics.Recorder) MessageService {
	return &messageService{
		cfg:      cfg,
		log:      log,
		signals:  signals,
		usage:    usage,
		replier:  replier,
		recorder: recorder,
	}
}

func (s *messageService) HandleEvents(ctx context.Context, events []dto.WebhookEvent) {
	for _, event := range events {
		if !event.IsTextMessage() {
			continue
		}
		s.handleMessage(ctx, event)
	}
}

func (s *messageService) handleMessage(ctx context.Context, event dto.WebhookEvent) {
	userID := event.Source.UserID
	cmd := classify(event.Message.Text)

	if userID == "" {
		s.log.WarnContext(ctx, "Message without user id refused")
		s.reply(ctx, event.ReplyToken, linebot.RateLimitMessage(s.cfg.Quota.MaxUserRequestsPerHour), false)
		return
	}

	if cmd == commandSignal && s.usage.AllowMessage(ctx) {
		res, err := s.signals.ResolveSignals(ctx, userID)
		if err != nil {
			if errors.Is(err, dto.ErrRateLimited) {
				s.replyRateLimited(ctx, event.ReplyToken, userID)
				return
			}
			s.log.ErrorContext(ctx, "Failed to resolve signals",
				logger.StringField("user_id", userID),
				logger.ErrorField(err),
			)
			s.reply(ctx, event.ReplyToken, linebot.ErrorMessage, false)
			return
		}
		s.log.InfoContext(ctx, "Signals resolved",
			logger.StringField("user_id", userID),
			logger.StringField("source", string(res.Source)),
		)
		s.reply(ctx, event.ReplyToken, linebot.FormatSignals(res.Result, s.remainingMessages(ctx)), true)
		return
	}

	if !s.usage.ReserveUserRequest(ctx, userID) {
		s.replyRateLimited(ctx, event.ReplyToken, userID)
		return
	}

	if !s.usage.AllowMessage(ctx) {
		s.log.WarnContext(ctx, "Daily message ceiling reached, dropping message",
			logger.StringField("user_id", userID),
			logger.IntField("limit", s.cfg.Quota.MaxDailyMessages),
		)
		return
	}

	switch cmd {
	case commandHelp:
		s.reply(ctx, event.ReplyToken, linebot.HelpMessage(s.helpInfo()), true)
	default:
		s.reply(ctx, event.ReplyToken, linebot.PromptMessage, true)
	}
}

func (s *messageService) replyRateLimited(ctx context.Context, replyToken, userID string) {
	s.log.InfoContext(ctx, "User request rate limited", logger.StringField("user_id", userID))
	s.reply(ctx, replyToken, linebot.RateLimitMessage(s.cfg.Quota.MaxUserRequestsPerHour), false)
}

// reply sends text and, when counted is set, records it against the daily
// message ceiling once the channel has accepted it.
func (s *messageService) reply(ctx context.Context, replyToken, text string, counted bool) {
	if err := s.replier.Reply(ctx, replyToken, text); err != nil {
		s.log.ErrorContext(ctx, "Failed to send reply", logger.ErrorField(err))
		return
	}
	if counted {
		s.usage.RecordMessageSent(ctx)
		s.recorder.RecordMessageSent()
	}
}

func (s *messageService) remainingMessages(ctx context.Context) int {
	return s.cfg.Quota.MaxDailyMessages - s.usage.Snapshot(ctx).MessagesSentToday
}

func (s *messageService) helpInfo() linebot.HelpInfo {
	return linebot.HelpInfo{
		DailyModelCalls: s.cfg.Quota.MaxDailyModelCalls,
		DailyMessages:   s.cfg.Quota.MaxDailyMessages,
		Symbols:         len(s.cfg.Market.Symbols),
		FreshnessHours:  s.cfg.Cache.FreshnessHours,
		TradingStart:    s.cfg.Market.TradingStartHour,
		TradingEnd:      s.cfg.Market.TradingEndHour,
	}
}
