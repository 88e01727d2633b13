package main

import (
	"context"
	"fmt"
	"time"

	"stock-signal-relay/internal/signal/config"
	"stock-signal-relay/internal/signal/repository"
	"stock-signal-relay/internal/signal/service"
	"stock-signal-relay/pkg/logger"
	"stock-signal-relay/pkg/metrics"
	"stock-signal-relay/pkg/postgres"
	"stock-signal-relay/pkg/redis"
	"stock-signal-relay/pkg/telegram"
	"stock-signal-relay/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/genai"
)

// app holds the wired services shared by the serve and analyze commands.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	registry *prometheus.Registry
	recorder *metrics.Recorder
	loc      *time.Location

	quotes   repository.QuoteRepository
	cache    repository.SignalCacheRepository
	usage    service.UsageTracker
	signals  service.SignalService
	trigger  service.TriggerService
	status   service.StatusService
	notifier telegram.Notifier

	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (*app, error) {
	a := &app{
		cfg:      cfg,
		log:      appLogger,
		registry: prometheus.NewRegistry(),
		loc:      utils.LoadLocation(cfg.Market.TimeZone),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.recorder = metrics.New(a.registry)

	if err := a.initStores(); err != nil {
		a.Close()
		return nil, err
	}

	aiRepo, err := a.newAIRepository(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Telegram.Enabled {
		notifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.notifier = notifier
	}

	a.quotes = repository.NewYahooFinanceRepository(cfg, appLogger, a.recorder)
	a.signals = service.NewSignalService(cfg, appLogger, a.quotes, aiRepo, a.cache, a.usage, a.recorder)
	a.trigger = service.NewTriggerService(cfg, appLogger, a.signals, a.notifier)
	a.status = service.NewStatusService(cfg, appLogger, a.quotes, a.cache, a.usage)
	return a, nil
}

// initStores opens only the backends the configuration selects.
func (a *app) initStores() error {
	cfg := a.cfg

	var redisClient *redis.Client
	if cfg.Cache.Backend == "redis" || cfg.Usage.Backend == "redis" {
		client, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		redisClient = client
	}

	switch cfg.Cache.Backend {
	case "postgres":
		db, err := postgres.NewDB(postgres.Config{
			DSN:             cfg.Database.DSN(),
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			LogLevel:        cfg.Database.LogLevel,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			a.closers = append(a.closers, func() { _ = sqlDB.Close() })
		}
		a.cache = repository.NewSignalCacheRepository(db.DB)
	case "redis":
		a.cache = repository.NewRedisSignalCacheRepository(redisClient.Client, cfg.Redis.KeyPrefix)
	default:
		a.cache = repository.NewMemorySignalCacheRepository()
	}

	switch cfg.Usage.Backend {
	case "redis":
		a.usage = service.NewRedisUsageTracker(redisClient.Client, cfg.Quota, a.loc, cfg.Redis.KeyPrefix, a.log)
	default:
		a.usage = service.NewMemoryUsageTracker(cfg.Quota, a.loc, nil)
	}

	a.log.Info("Stores initialized",
		logger.StringField("cache_backend", cfg.Cache.Backend),
		logger.StringField("usage_backend", cfg.Usage.Backend),
	)
	return nil
}

func (a *app) newAIRepository(ctx context.Context) (repository.AIRepository, error) {
	switch a.cfg.AI.Provider {
	case "gemini":
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  a.cfg.Gemini.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		return repository.NewGeminiAIRepository(a.cfg, a.log, genAiClient)
	case "groq":
		return repository.NewGroqAIRepository(a.cfg, a.log), nil
	default:
		return nil, fmt.Errorf("invalid AI provider %q", a.cfg.AI.Provider)
	}
}
