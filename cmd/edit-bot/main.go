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

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/schedule-editor-bot/internal/handler"
	"github.com/noah-isme/schedule-editor-bot/internal/middleware"
	"github.com/noah-isme/schedule-editor-bot/internal/repository"
	"github.com/noah-isme/schedule-editor-bot/internal/service"
	"github.com/noah-isme/schedule-editor-bot/internal/telegram"
	"github.com/noah-isme/schedule-editor-bot/pkg/cache"
	"github.com/noah-isme/schedule-editor-bot/pkg/config"
	"github.com/noah-isme/schedule-editor-bot/pkg/database"
	"github.com/noah-isme/schedule-editor-bot/pkg/jobs"
	"github.com/noah-isme/schedule-editor-bot/pkg/logger"
	"github.com/noah-isme/schedule-editor-bot/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("edit bot stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(cfg.Access.OperatorIDs) == 0 {
		logr.Warn("no operators configured, every edit attempt will be denied")
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cache.Needed(cfg) {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
	}

	metrics := service.NewMetricsService()

	deadlineRepo := repository.NewDeadlineRepository(db)
	certificationRepo := repository.NewCertificationRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	editors := service.NewEditorRegistry(
		service.NewSessionPeriodEditor(repository.NewSessionPeriodRepository(db), metrics),
		service.NewDeadlineEditor(deadlineRepo, metrics),
		service.NewCertificationEditor(certificationRepo, metrics),
		service.NewTeacherEditor(teacherRepo, metrics),
		service.NewScheduleEditor(scheduleRepo, metrics),
	)
	cacheSvc := service.NewCacheService(repository.NewCatalogCacheRepository(redisClient, logr), metrics, cfg.Catalog.CacheTTL, logr, cfg.Catalog.CacheEnabled)
	catalogSvc := service.NewCatalogService(deadlineRepo, certificationRepo, teacherRepo, scheduleRepo, cacheSvc, metrics, logr)

	var store service.SessionStore
	if cfg.Dialogue.SessionBackend == config.SessionBackendRedis {
		store = repository.NewRedisSessionRepository(redisClient, cfg.Dialogue.SessionKeyPrefix, cfg.Dialogue.IdleTimeout)
	} else {
		store = repository.NewMemorySessionRepository(cfg.Dialogue.IdleTimeout)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("init telegram bot: %w", err)
	}
	bot.Debug = cfg.Telegram.Debug
	logr.Info("telegram bot authorized", zap.String("username", bot.Self.UserName), zap.String("mode", cfg.Telegram.Mode))

	presenter := telegram.NewPresenter(bot, logr)
	dialogue := service.NewDialogueService(store, editors, catalogSvc, presenter, service.NewAuthGate(cfg.Access.OperatorIDs), metrics, logr,
		service.WithIdleTimeout(cfg.Dialogue.IdleTimeout),
	)

	queue := jobs.NewQueue("dialogue", telegram.EventJobHandler(dialogue, cfg.Database.QueryTimeout), jobs.QueueConfig{
		Workers: cfg.Dialogue.Workers,
		Logger:  logr,
	})
	intake := telegram.NewIntake(queue, presenter, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(middleware.Metrics(metrics, "/metrics"))

	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = cache.Ping(redisClient)
	}
	metricsHandler := handler.NewMetricsHandler(metrics, checks, logr)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Telegram.Mode == config.TelegramModeWebhook {
		if err := registerWebhook(bot, cfg.Telegram); err != nil {
			return err
		}
		r.POST(cfg.Telegram.WebhookPath, handler.NewWebhookHandler(intake, cfg.Telegram.WebhookSecret, logr).Receive)
	} else if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete telegram webhook: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	queue.Start(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return queue.Run(gctx) })
	g.Go(func() error { return dialogue.RunJanitor(gctx, cfg.Dialogue.SweepInterval) })
	if cfg.Telegram.Mode == config.TelegramModePolling {
		g.Go(func() error { return intake.Poll(gctx, bot, cfg.Telegram.PollTimeout) })
	}

	err = g.Wait()
	logr.Info("edit bot shut down")
	return err
}

func registerWebhook(bot *tgbotapi.BotAPI, cfg config.TelegramConfig) error {
	if cfg.WebhookURL == "" {
		return errors.New("TELEGRAM_WEBHOOK_URL is required in webhook mode")
	}
	params := tgbotapi.Params{"url": cfg.WebhookURL}
	params.AddNonEmpty("secret_token", cfg.WebhookSecret)
	if _, err := bot.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("register telegram webhook: %w", err)
	}
	return nil
}
