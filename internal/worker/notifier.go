package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"roomdesk/internal/domain"
	"roomdesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NotifyTask is one chat message waiting for delivery.
type NotifyTask struct {
	ID         string    `json:"id"`
	ChatID     int64     `json:"chat_id"`
	Text       string    `json:"text"`
	RetryCount int       `json:"retry_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// NotifyWorker delivers admin notifications with retries. Tasks go to
// redis when available so pending notifications survive a restart; the
// channel is the fallback path.
type NotifyWorker struct {
	sender        domain.TelegramSender
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan NotifyTask
	redisQueueKey string
	deadLetterKey string
	logger        *zerolog.Logger
}

func NewNotifyWorker(sender domain.TelegramSender, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *NotifyWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &NotifyWorker{
		sender:        sender,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan NotifyTask, models.NotifyQueueSize),
		redisQueueKey: "notify:queue",
		deadLetterKey: "notify:deadletter",
		logger:        logger,
	}
}

// Enqueue schedules a notification via redis, falling back to the
// in-memory queue.
func (w *NotifyWorker) Enqueue(ctx context.Context, chatID int64, text string) error {
	if chatID == 0 {
		return errors.New("chat id is required")
	}
	if text == "" {
		return errors.New("text is required")
	}

	task := NotifyTask{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Warn().Err(err).Msg("notify: redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
		return nil
	default:
		return errors.New("notify queue is full")
	}
}

// Start launches the delivery loop; stops when ctx is done.
func (w *NotifyWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("notify worker started")
	defer w.logger.Info().Msg("notify worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if task, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, task)
			continue
		}

		if task, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, task)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case task := <-w.queue:
			w.processTask(ctx, task)
		case <-time.After(time.Second):
		}
	}
}

func (w *NotifyWorker) tryLocalQueue() (NotifyTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return NotifyTask{}, false
	}
}

func (w *NotifyWorker) tryRedis(ctx context.Context) (NotifyTask, bool) {
	if w.redis == nil {
		return NotifyTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, redis.Nil) {
			return NotifyTask{}, false
		}
		w.logger.Warn().Err(err).Msg("notify: redis BRPOP error")
		return NotifyTask{}, false
	}
	if len(res) != 2 {
		return NotifyTask{}, false
	}
	var task NotifyTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Warn().Err(err).Msg("notify: decode redis task")
		return NotifyTask{}, false
	}
	return task, true
}

func (w *NotifyWorker) processTask(ctx context.Context, task NotifyTask) {
	msg := tgbotapi.NewMessage(task.ChatID, task.Text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := w.sender.Send(msg); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}
}

func (w *NotifyWorker) retryOrFail(ctx context.Context, task NotifyTask, cause error) {
	task.RetryCount++
	if w.retryPolicy.Exhausted(task.RetryCount) {
		w.logger.Error().Err(cause).
			Str("task_id", task.ID).
			Int64("chat_id", task.ChatID).
			Msg("notify: delivery failed, moving to dead letter")
		w.pushDeadLetter(ctx, task)
		return
	}

	delay := w.retryPolicy.NextDelay(task.RetryCount)
	w.logger.Warn().Err(cause).
		Str("task_id", task.ID).
		Int("retry", task.RetryCount).
		Dur("delay", delay).
		Msg("notify: delivery failed, will retry")

	time.AfterFunc(delay, func() {
		if w.redis != nil {
			if err := w.pushRedis(ctx, task); err == nil {
				return
			}
		}
		select {
		case w.queue <- task:
		default:
			w.logger.Error().Str("task_id", task.ID).Msg("notify: queue full, task dropped")
		}
	})
}

func (w *NotifyWorker) pushRedis(ctx context.Context, task NotifyTask) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *NotifyWorker) pushDeadLetter(ctx context.Context, task NotifyTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Str("task_id", task.ID).Msg("notify: encode dead letter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Str("task_id", task.ID).Msg("notify: dead letter push")
	}
}
