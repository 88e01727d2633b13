package service

import (
	"context"
	"time"

	"stock-signal-relay/internal/signal/config"
	"stock-signal-relay/internal/signal/dto"
	"stock-signal-relay/pkg/logger"
	"stock-signal-relay/pkg/telegram"
	"stock-signal-relay/pkg/utils"
)

const (
	TriggerMessageCompleted    = "Analysis completed"
	TriggerMessageOutsideHours = "Outside market hours"
	TriggerMessageFailed       = "Analysis failed"
	TriggerStatusFailed        = "failed"
)

// TriggerService runs the scheduled analysis.
type TriggerService interface {
	// Run regenerates the cached analysis when called inside the trading
	// window. It never returns an error; failures are reported in the response.
	Run(ctx context.Context) *dto.TriggerResponse
	// InTradingWindow reports whether t falls inside the configured window.
	InTradingWindow(t time.Time) bool
}

type triggerService struct {
	cfg      *config.Config
	log      *logger.Logger
	signals  SignalService
	notifier telegram.Notifier
	loc      *time.Location
	now      func() time.Time
}

// NewTriggerService creates a TriggerService. notifier may be nil.
func NewTriggerService(cfg *config.Config, log *logger.Logger, signals SignalService, notifier telegram.Notifier) TriggerService {
	return &triggerService{
		cfg:      cfg,
		log:      log,
		signals:  signals,
		notifier: notifier,
		loc:      utils.LoadLocation(cfg.Market.TimeZone),
		now:      time.Now,
	}
}

func (s *triggerService) InTradingWindow(t time.Time) bool {
	local := t.In(s.loc)
	if local.Hour() < s.cfg.Market.TradingStartHour || local.Hour() > s.cfg.Market.TradingEndHour {
		return false
	}
	weekday := int(local.Weekday())
	for _, d := range s.cfg.Market.TradingDays {
		if d == weekday {
			return true
		}
	}
	return false
}

func (s *triggerService) Run(ctx context.Context) *dto.TriggerResponse {
	now := s.now()
	if !s.InTradingWindow(now) {
		s.log.InfoContext(ctx, "Scheduled analysis skipped outside market hours",
			logger.StringField("local_time", now.In(s.loc).Format(time.RFC3339)))
		return &dto.TriggerResponse{Message: TriggerMessageOutsideHours}
	}

	run, err := s.signals.RunAnalysis(ctx, AnalysisOptions{WithSummary: true, Store: true})
	finished := s.now()
	if err != nil {
		s.log.ErrorContext(ctx, "Scheduled analysis failed", logger.ErrorField(err))
		s.notify(ctx, telegram.FormatErrorAlertMessage(finished.In(s.loc), "scheduled analysis", err.Error()))
		return &dto.TriggerResponse{
			Message:   TriggerMessageFailed,
			Status:    TriggerStatusFailed,
			Timestamp: &finished,
			Symbols:   len(s.cfg.Market.Symbols),
		}
	}

	s.log.InfoContext(ctx, "Scheduled analysis completed",
		logger.IntField("valid_quotes", run.ValidQuotes),
		logger.IntField("signals", len(run.Result.Signals)),
	)
	s.notify(ctx, telegram.FormatScheduledAnalysis(run.Result, run.ValidQuotes, finished.In(s.loc)))

	return &dto.TriggerResponse{
		Message:   TriggerMessageCompleted,
		Timestamp: &finished,
		Symbols:   len(s.cfg.Market.Symbols),
		Signals:   len(run.Result.Signals),
	}
}

func (s *triggerService) notify(ctx context.Context, text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendMessage(text); err != nil {
		s.log.WarnContext(ctx, "Failed to send operator notification", logger.ErrorField(err))
	}
}
