package domain

import (
	"context"
	"time"

	"roomdesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Backend is everything the client needs from the booking API. All data
// behind it is backend-authoritative; implementations perform exactly one
// HTTP attempt per call.
type Backend interface {
	Login(ctx context.Context, username, password string) (*models.Session, error)
	Register(ctx context.Context, username, email, password string) error
	Profile(ctx context.Context, token string) (*models.BookingUser, error)

	ListRooms(ctx context.Context) ([]models.Room, error)
	CreateRoom(ctx context.Context, token string, in models.RoomInput) (*models.Room, error)
	UpdateRoom(ctx context.Context, token, roomID string, in models.RoomInput) (*models.Room, error)
	DeleteRoom(ctx context.Context, token, roomID string) error

	UserBookings(ctx context.Context, token string) ([]models.Booking, error)
	AllBookings(ctx context.Context, token string) ([]models.Booking, error)
	CreateBooking(ctx context.Context, token string, req models.BookingRequest) (*models.Booking, error)
	CalculateQuote(ctx context.Context, token string, req models.BookingRequest) (*models.Quote, error)
	ApproveBooking(ctx context.Context, token, bookingID string) error
	RejectBooking(ctx context.Context, token, bookingID, reason string) error
	CancelBooking(ctx context.Context, token, bookingID string) error
	CancelOwnBooking(ctx context.Context, token, bookingID string) error
	DeleteBooking(ctx context.Context, token, bookingID string) error
	RemoveBooking(ctx context.Context, token, bookingID string) error
}

// SessionStore persists one session per chat user across restarts.
type SessionStore interface {
	Get(ctx context.Context, chatID int64) (*models.Session, error)
	Put(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, chatID int64) error
}

// StateRepository holds ephemeral conversation state.
type StateRepository interface {
	GetState(ctx context.Context, chatID int64) (*models.FlowState, error)
	SetState(ctx context.Context, state *models.FlowState) error
	ClearState(ctx context.Context, chatID int64) error
	CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error)
}

// StateManager is the service layer over a StateRepository.
type StateManager interface {
	GetFlowState(ctx context.Context, chatID int64) (*models.FlowState, error)
	SetFlowState(ctx context.Context, chatID int64, step string, data map[string]interface{}) error
	UpdateFlowData(ctx context.Context, chatID int64, key string, value interface{}) error
	ClearFlowState(ctx context.Context, chatID int64) error
	CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// Notifier queues chat messages for delivery with retries.
type Notifier interface {
	Enqueue(ctx context.Context, chatID int64, text string) error
}
