package scheduler

import (
	"context"
	"fmt"
	"time"

	"stock-signal-relay/internal/signal/service"
	"stock-signal-relay/pkg/logger"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Scheduler runs the scheduled analysis in-process on a cron expression
// evaluated in the market time zone.
type Scheduler struct {
	trigger  service.TriggerService
	logger   *logger.Logger
	schedule cron.Schedule
	loc      *time.Location
	spec     string
}

// NewScheduler parses spec and returns a Scheduler for it.
func NewScheduler(spec string, loc *time.Location, trigger service.TriggerService, logger *logger.Logger) (*Scheduler, error) {
	schedule, err := cronParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		trigger:  trigger,
		logger:   logger,
		schedule: schedule,
		loc:      loc,
		spec:     spec,
	}, nil
}

// Next returns the first run after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.loc))
}

// Start blocks until ctx is done, running the analysis on schedule.
// Overlapping runs are skipped.
func (s *Scheduler) Start(ctx context.Context) {
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithParser(cronParser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() { s.runOnce(ctx) }))
	c.Start()

	s.logger.Info("Scheduler started",
		logger.StringField("spec", s.spec),
		logger.StringField("next_run", s.Next(time.Now()).Format(time.RFC3339)),
	)

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	resp := s.trigger.Run(ctx)
	s.logger.InfoContext(ctx, "Scheduled run finished",
		logger.StringField("message", resp.Message),
		logger.StringField("status", resp.Status),
		logger.IntField("signals", resp.Signals),
	)
}
