package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"roomdesk/internal/config"
	"roomdesk/internal/domain"
	"roomdesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// stubBackend panics on anything not stubbed, which keeps tests honest
// about what they exercise.
type stubBackend struct {
	domain.Backend
	listRooms   func(ctx context.Context) ([]models.Room, error)
	calc        func(ctx context.Context, token string, req models.BookingRequest) (*models.Quote, error)
	create      func(ctx context.Context, token string, req models.BookingRequest) (*models.Booking, error)
	createRoom  func(ctx context.Context, token string, in models.RoomInput) (*models.Room, error)
	updateRoom  func(ctx context.Context, token, roomID string, in models.RoomInput) (*models.Room, error)
	allBookings func(ctx context.Context, token string) ([]models.Booking, error)
	approve     func(ctx context.Context, token, bookingID string) error
	reject      func(ctx context.Context, token, bookingID, reason string) error
	remove      func(ctx context.Context, token, bookingID string) error
}

func (s *stubBackend) ListRooms(ctx context.Context) ([]models.Room, error) {
	return s.listRooms(ctx)
}

func (s *stubBackend) CalculateQuote(ctx context.Context, token string, req models.BookingRequest) (*models.Quote, error) {
	return s.calc(ctx, token, req)
}

func (s *stubBackend) CreateBooking(ctx context.Context, token string, req models.BookingRequest) (*models.Booking, error) {
	return s.create(ctx, token, req)
}

func (s *stubBackend) CreateRoom(ctx context.Context, token string, in models.RoomInput) (*models.Room, error) {
	return s.createRoom(ctx, token, in)
}

func (s *stubBackend) UpdateRoom(ctx context.Context, token, roomID string, in models.RoomInput) (*models.Room, error) {
	return s.updateRoom(ctx, token, roomID, in)
}

func (s *stubBackend) AllBookings(ctx context.Context, token string) ([]models.Booking, error) {
	return s.allBookings(ctx, token)
}

func (s *stubBackend) ApproveBooking(ctx context.Context, token, bookingID string) error {
	return s.approve(ctx, token, bookingID)
}

func (s *stubBackend) RejectBooking(ctx context.Context, token, bookingID, reason string) error {
	return s.reject(ctx, token, bookingID, reason)
}

func (s *stubBackend) RemoveBooking(ctx context.Context, token, bookingID string) error {
	return s.remove(ctx, token, bookingID)
}

// stubSender records outgoing chat traffic and hands out message ids.
type stubSender struct {
	mu     sync.Mutex
	sent   []tgbotapi.Chattable
	nextID int
}

func (s *stubSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, c)
	s.nextID++
	return tgbotapi.Message{MessageID: s.nextID}, nil
}

func (s *stubSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (s *stubSender) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return nil
}

func (s *stubSender) GetSelf() tgbotapi.User {
	return tgbotapi.User{UserName: "roomdesk_test_bot"}
}

func (s *stubSender) StopReceivingUpdates() {}

// stubStates is an in-memory StateManager.
type stubStates struct {
	mu     sync.Mutex
	states map[int64]*models.FlowState
}

func newStubStates() *stubStates {
	return &stubStates{states: make(map[int64]*models.FlowState)}
}

func (s *stubStates) GetFlowState(ctx context.Context, chatID int64) (*models.FlowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[chatID], nil
}

func (s *stubStates) SetFlowState(ctx context.Context, chatID int64, step string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[chatID] = &models.FlowState{ChatID: chatID, Step: step, Data: data}
	return nil
}

func (s *stubStates) UpdateFlowData(ctx context.Context, chatID int64, key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.states[chatID]
	if state == nil {
		state = &models.FlowState{ChatID: chatID, Data: make(map[string]interface{})}
		s.states[chatID] = state
	}
	if state.Data == nil {
		state.Data = make(map[string]interface{})
	}
	state.Data[key] = value
	return nil
}

func (s *stubStates) ClearFlowState(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, chatID)
	return nil
}

func (s *stubStates) CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error) {
	return true, nil
}

// stubSessions holds a single fixed session.
type stubSessions struct {
	mu      sync.Mutex
	session *models.Session
}

func (s *stubSessions) Get(ctx context.Context, chatID int64) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, nil
}

func (s *stubSessions) Put(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	return nil
}

func (s *stubSessions) Delete(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

// newHandlerBot wires a Bot against stubs for handler-level tests.
func newHandlerBot(t *testing.T, backend domain.Backend, session *models.Session) (*Bot, *stubSender, *stubStates) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Bot.PaginationSize = 6
	cfg.Bot.BookingsPaginationSize = 5
	cfg.Bot.QuoteDebounceMs = 1

	logger := zerolog.Nop()
	sender := &stubSender{}
	states := newStubStates()

	b, err := NewBot(sender, cfg, backend, &stubSessions{session: session}, states, nil, nil, &logger)
	require.NoError(t, err)
	return b, sender, states
}
