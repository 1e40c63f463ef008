package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"roomdesk/internal/api"
	"roomdesk/internal/bot"
	"roomdesk/internal/config"
	"roomdesk/internal/events"
	"roomdesk/internal/export"
	"roomdesk/internal/logging"
	"roomdesk/internal/metrics"
	"roomdesk/internal/models"
	"roomdesk/internal/session"
	"roomdesk/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	metrics.Register()

	sessions, err := session.NewStore(cfg.Session.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации хранилища сессий")
		return err
	}
	defer sessions.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, stateService := initStateService(ctx, cfg, &logger)
	if redisClient != nil {
		defer (func(c *redis.Client) { _ = session.CloseRedis(c) })(redisClient)
	}

	backend := api.New(cfg.Backend)

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug
	tgService := bot.NewBotWrapper(botAPI)

	// Воркер уведомлений администраторам
	retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2, Jitter: 0.2}
	notifier := worker.NewNotifyWorker(tgService, redisClient, retryPolicy, &logger)
	go notifier.Start(ctx)

	eventBus := events.NewEventBus()
	subscribeBookingEvents(ctx, eventBus, notifier, cfg.Admins, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	exporter := export.New(cfg.Exports.Path, &logger)

	telegramBot, err := bot.NewBot(tgService, cfg, backend, sessions, stateService, eventBus, exporter, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бота")
		return err
	}

	logger.Info().Msg("Бот запущен...")
	telegramBot.Start(ctx)

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Session.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
		return err
	}
	return nil
}

func initStateService(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *session.StateService) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = session.NewRedisClient(cfg.Redis)
		if errPing := session.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	ttl := time.Duration(models.DefaultFlowStateTTL) * time.Second
	primaryRepo := session.NewRedisStateRepository(redisClient, ttl)
	fallbackRepo := session.NewMemoryStateRepository(ttl)
	stateRepo := session.NewFailoverStateRepository(primaryRepo, fallbackRepo, logger)
	return redisClient, session.NewStateService(stateRepo, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		logger.Info().Int("port", port).Msg("Prometheus metrics server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Metrics server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

// subscribeBookingEvents wires booking lifecycle events to admin
// notifications delivered through the notify worker.
func subscribeBookingEvents(
	ctx context.Context,
	bus *events.EventBus,
	notifier *worker.NotifyWorker,
	admins []int64,
	logger *zerolog.Logger,
) {
	if bus == nil || notifier == nil || len(admins) == 0 {
		return
	}

	decode := func(ev *events.Event) (events.BookingEventPayload, error) {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return payload, err
		}
		return payload, nil
	}

	notifyAdmins := func(text string) {
		for _, adminID := range admins {
			if err := notifier.Enqueue(ctx, adminID, text); err != nil {
				logger.Error().Err(err).Int64("admin_id", adminID).Msg("event bus: enqueue notification")
			}
		}
	}

	bus.Subscribe(events.EventBookingRequested, func(ev *events.Event) error {
		payload, err := decode(ev)
		if err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		notifyAdmins(fmt.Sprintf("🆕 New booking request from <b>%s</b>\n🛏 %s\n📅 %s → %s",
			payload.Username, payload.RoomName,
			payload.CheckIn.Format("02.01.2006"), payload.CheckOut.Format("02.01.2006")))
		return nil
	})

	statusText := map[string]string{
		events.EventBookingApproved:  "✅ Booking %s approved by %s",
		events.EventBookingRejected:  "🚫 Booking %s rejected by %s",
		events.EventBookingCancelled: "❌ Booking %s cancelled by %s",
		events.EventBookingDeleted:   "🗑 Booking %s deleted by %s",
	}
	for eventType, format := range statusText {
		format := format
		bus.Subscribe(eventType, func(ev *events.Event) error {
			payload, err := decode(ev)
			if err != nil {
				logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
				return nil
			}
			notifyAdmins(fmt.Sprintf(format, payload.BookingID, payload.ChangedBy))
			return nil
		})
	}
}
