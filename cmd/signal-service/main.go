package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"stock-signal-relay/internal/signal/config"
	delivery "stock-signal-relay/internal/signal/delivery/http"
	"stock-signal-relay/internal/signal/delivery/scheduler"
	_ "stock-signal-relay/internal/signal/docs"
	"stock-signal-relay/internal/signal/service"
	"stock-signal-relay/pkg/linebot"
	"stock-signal-relay/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var (
	configPath  string
	storeResult bool
	withSummary bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the webhook, trigger and status HTTP server",
	Run:   runServe,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Runs the analysis once and prints the chat message",
	Run:   runAnalyze,
}

func loadConfigAndLogger() (*config.Config, *logger.Logger) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return cfg, appLogger
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, appLogger := loadConfigAndLogger()
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Signal Service",
		logger.Field("name", cfg.App.Name),
		logger.Field("version", cfg.App.Version),
	)

	a, err := newApp(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize service", logger.ErrorField(err))
	}
	defer a.Close()

	replier, err := linebot.NewClient(cfg.Line.ChannelAccessToken)
	if err != nil {
		appLogger.Fatal("Failed to initialize LINE client", logger.ErrorField(err))
	}
	messageSvc := service.NewMessageService(cfg, appLogger, a.signals, a.usage, replier, a.recorder)

	if cfg.Cron.Enabled {
		sched, err := scheduler.NewScheduler(cfg.Cron.Spec, a.loc, a.trigger, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize scheduler", logger.ErrorField(err))
		}
		go sched.Start(ctx)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(delivery.RequestID())
	e.Use(delivery.AccessLog(appLogger))
	e.Use(middleware.Recover())

	delivery.NewWebhookHandler(messageSvc, cfg.Line.ChannelSecret, appLogger).RegisterRoutes(e.Group("/webhook"))
	delivery.NewTriggerHandler(a.trigger, appLogger).RegisterRoutes(e.Group("/cron"))
	delivery.NewStatusHandler(a.status, appLogger).RegisterRoutes(e.Group("/status"))

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", swagger.WrapHandler)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func runAnalyze(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, appLogger := loadConfigAndLogger()
	defer func() { _ = appLogger.Sync() }()

	a, err := newApp(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize service", logger.ErrorField(err))
	}
	defer a.Close()

	run, err := a.signals.RunAnalysis(ctx, service.AnalysisOptions{WithSummary: withSummary, Store: storeResult})
	if err != nil {
		appLogger.Error("Analysis failed", logger.ErrorField(err))
		fmt.Println(linebot.FormatSignals(a.signals.Fallback(), cfg.Quota.MaxDailyMessages))
		os.Exit(1)
	}

	appLogger.Info("Analysis completed",
		logger.IntField("valid_quotes", run.ValidQuotes),
		logger.IntField("signals", len(run.Result.Signals)),
		logger.BoolField("stored", storeResult),
	)
	fmt.Println(linebot.FormatSignals(run.Result, cfg.Quota.MaxDailyMessages))
}

// @title Stock Signal Relay API
// @version 1.0
// @description Chat webhook, scheduled trigger and status endpoints for the stock signal relay.
// @BasePath /
func main() {
	rootCmd := &cobra.Command{Use: "signal-service"}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-signal.yaml", "Path to the configuration file")

	analyzeCmd.Flags().BoolVar(&storeResult, "store", false, "Write the result to the analysis cache")
	analyzeCmd.Flags().BoolVar(&withSummary, "summary", false, "Also ask for a market summary")

	rootCmd.AddCommand(serveCmd, analyzeCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing signal-service CLI: %s\n", err)
		os.Exit(1)
	}
}
