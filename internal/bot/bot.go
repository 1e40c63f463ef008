package bot

import (
	"context"
	"os"
	"sync"
	"time"

	"roomdesk/internal/catalog"
	"roomdesk/internal/config"
	"roomdesk/internal/domain"
	"roomdesk/internal/events"
	"roomdesk/internal/flow"
	"roomdesk/internal/metrics"
	"roomdesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Exporter writes admin exports and returns the file path.
type Exporter interface {
	WriteBookings(bookings []models.Booking) (string, error)
	WriteRooms(rooms []models.Room) (string, error)
}

type Bot struct {
	tgService    domain.TelegramSender
	config       *config.Config
	backend      domain.Backend
	sessions     domain.SessionStore
	stateService domain.StateManager
	eventBus     domain.EventPublisher
	exporter     Exporter
	dialogs      *flow.Registry
	logger       *zerolog.Logger

	mu           sync.Mutex
	roomFilters  map[int64]catalog.RoomFilter
	adminQueries map[int64]catalog.BookingQuery
	myQueries    map[int64]catalog.BookingQuery
	myBookings   map[int64][]models.Booking
	adminLists   map[int64][]models.Booking
	flowMsgs     map[int64]int
}

func NewBot(
	tgService domain.TelegramSender,
	config *config.Config,
	backend domain.Backend,
	sessions domain.SessionStore,
	stateService domain.StateManager,
	eventBus domain.EventPublisher,
	exporter Exporter,
	logger *zerolog.Logger,
) (*Bot, error) {
	if eventBus == nil {
		eventBus = events.NewEventBus()
	}

	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	return &Bot{
		tgService:    tgService,
		config:       config,
		backend:      backend,
		sessions:     sessions,
		stateService: stateService,
		eventBus:     eventBus,
		exporter:     exporter,
		dialogs:      flow.NewRegistry(),
		logger:       logger,
		roomFilters:  make(map[int64]catalog.RoomFilter),
		adminQueries: make(map[int64]catalog.BookingQuery),
		myQueries:    make(map[int64]catalog.BookingQuery),
		myBookings:   make(map[int64][]models.Booking),
		adminLists:   make(map[int64][]models.Booking),
		flowMsgs:     make(map[int64]int),
	}, nil
}

// Conversation steps held in flow state between messages.
const (
	stepLoginUsername    = "login_username"
	stepLoginPassword    = "login_password"
	stepRegisterUsername = "register_username"
	stepRegisterEmail    = "register_email"
	stepRegisterPassword = "register_password"

	stepBookCheckIn  = "book_check_in"
	stepBookCheckOut = "book_check_out"
	stepBookGuests   = "book_guests"
	stepBookRequests = "book_requests"

	stepFilterFloor    = "filter_floor"
	stepFilterMinPrice = "filter_min_price"
	stepFilterMaxPrice = "filter_max_price"

	stepMySearch = "my_search"

	stepRejectReason  = "reject_reason"
	stepAdminSearch   = "admin_search"
	stepAdminDateFrom = "admin_date_from"
	stepAdminDateTo   = "admin_date_to"

	stepRoomName        = "room_name"
	stepRoomDescription = "room_description"
	stepRoomPrice       = "room_price"
	stepRoomType        = "room_type"
	stepRoomCapacity    = "room_capacity"
	stepRoomBed         = "room_bed"
	stepRoomFloor       = "room_floor"
	stepRoomImages      = "room_images"
	stepRoomAmenities   = "room_amenities"
	stepRoomAvailable   = "room_available"
)

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	// Контекст на каждое обновление
	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	requestID := uuid.New().String()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		var userID, chatID int64
		if update.Message != nil {
			userID = update.Message.From.ID
			chatID = update.Message.Chat.ID
			metrics.IncUpdate("message")
		} else if update.CallbackQuery != nil {
			userID = update.CallbackQuery.From.ID
			chatID = update.CallbackQuery.Message.Chat.ID
			metrics.IncUpdate("callback")
		}

		if userID == 0 {
			return
		}

		if b.isBlacklisted(userID) {
			return
		}

		allowed, err := b.stateService.CheckRateLimit(updateCtx, userID,
			b.config.Bot.RateLimitMessages, time.Duration(b.config.Bot.RateLimitWindow)*time.Second)
		if err != nil {
			l.Error().Err(err).Int64("user_id", userID).Msg("Rate limit check failed")
		} else if !allowed {
			l.Warn().Int64("user_id", userID).Msg("Rate limit exceeded")
			if update.Message != nil {
				b.sendMessage(chatID, "⚠️ You are sending messages too fast. Please wait a moment.")
			}
			return
		}

		if update.CallbackQuery != nil {
			b.handleCallbackQuery(updateCtx, update)
			return
		}

		if update.Message == nil {
			return
		}

		b.handleMessage(updateCtx, update)
	})
}
