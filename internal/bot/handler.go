package bot

import (
	"context"
	"strings"

	"roomdesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Main menu buttons.
const (
	btnRooms      = "🏨 Rooms"
	btnMyBookings = "📋 My bookings"
	btnProfile    = "👤 Profile"
	btnLogin      = "🔐 Log in"
	btnRegister   = "📝 Register"
	btnLogout     = "🚪 Log out"
	btnAdmin      = "🗂 All bookings"
	btnRoomAdmin  = "🛠 Manage rooms"
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := update.Message.Text
	l := zerolog.Ctx(ctx)

	l.Debug().
		Int64("user_id", userID).
		Str("username", update.Message.From.UserName).
		Str("text", text).
		Msg("Handling message")

	switch {
	case text == "/start" || strings.EqualFold(text, "reset"):
		b.clearFlow(ctx, chatID)
		b.handleStart(ctx, chatID, update.Message.From.FirstName)
		return

	case text == "/cancel":
		b.clearFlow(ctx, chatID)
		b.sendMessage(chatID, "Action cancelled.")
		b.sendMainMenu(ctx, chatID)
		return

	case text == "/login" || text == btnLogin:
		b.startLogin(ctx, chatID)
		return

	case text == "/register" || text == btnRegister:
		b.startRegister(ctx, chatID)
		return

	case text == "/logout" || text == btnLogout:
		b.handleLogout(ctx, chatID)
		return

	case text == "/rooms" || text == btnRooms:
		b.showRooms(ctx, chatID, 0, 0)
		return

	case text == "/mybookings" || text == btnMyBookings:
		b.showMyBookings(ctx, chatID, 0, 0, true)
		return

	case text == "/profile" || text == btnProfile:
		b.showProfile(ctx, chatID)
		return

	case text == "/admin" || text == btnAdmin:
		b.showAdminBookings(ctx, chatID, 0, 0, true)
		return

	case text == "/manage_rooms" || text == btnRoomAdmin:
		b.showAdminRooms(ctx, chatID)
		return
	}

	state, err := b.stateService.GetFlowState(ctx, chatID)
	if err != nil {
		l.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to get flow state")
	}
	if state != nil && state.Step != "" {
		if b.handleStep(ctx, chatID, text, state) {
			return
		}
	}

	b.sendMainMenu(ctx, chatID)
}

// handleStep routes a free-text message to the step the chat is in.
func (b *Bot) handleStep(ctx context.Context, chatID int64, text string, state *models.FlowState) bool {
	switch state.Step {
	case stepLoginUsername, stepLoginPassword,
		stepRegisterUsername, stepRegisterEmail, stepRegisterPassword:
		return b.handleAuthStep(ctx, chatID, text, state)

	case stepBookCheckIn, stepBookCheckOut, stepBookGuests, stepBookRequests:
		return b.handleBookingStep(ctx, chatID, text, state)

	case stepFilterFloor, stepFilterMinPrice, stepFilterMaxPrice:
		return b.handleFilterStep(ctx, chatID, text, state)

	case stepMySearch:
		return b.handleMySearchStep(ctx, chatID, text, state)

	case stepRejectReason, stepAdminSearch, stepAdminDateFrom, stepAdminDateTo:
		return b.handleAdminStep(ctx, chatID, text, state)

	case stepRoomName, stepRoomDescription, stepRoomPrice, stepRoomType,
		stepRoomCapacity, stepRoomBed, stepRoomFloor, stepRoomImages,
		stepRoomAmenities, stepRoomAvailable:
		return b.handleRoomFormStep(ctx, chatID, text, state)
	}
	return false
}

func (b *Bot) handleStart(ctx context.Context, chatID int64, firstName string) {
	greeting := "👋 Welcome to the hotel booking desk"
	if firstName != "" {
		greeting = "👋 Welcome, " + firstName
	}
	b.sendMessage(chatID, greeting+"!\nBrowse rooms, check prices and book your stay right here.")
	b.sendMainMenu(ctx, chatID)
}

func (b *Bot) sendMainMenu(ctx context.Context, chatID int64) {
	session := b.getSession(ctx, chatID)

	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnRooms),
		),
	}

	if session == nil {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnLogin),
			tgbotapi.NewKeyboardButton(btnRegister),
		))
	} else {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnMyBookings),
			tgbotapi.NewKeyboardButton(btnProfile),
		))
		if session.IsAdmin {
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(btnAdmin),
				tgbotapi.NewKeyboardButton(btnRoomAdmin),
			))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnLogout),
		))
	}

	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true

	title := "Choose an action:"
	if session != nil {
		title = "Signed in as " + session.Username + ". Choose an action:"
	}

	msg := tgbotapi.NewMessage(chatID, title)
	msg.ReplyMarkup = keyboard
	b.tgService.Send(msg)
}

// clearFlow drops conversation state and any open booking dialog.
func (b *Bot) clearFlow(ctx context.Context, chatID int64) {
	if err := b.stateService.ClearFlowState(ctx, chatID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("Failed to clear flow state")
	}
	b.dialogs.Remove(chatID)
	b.mu.Lock()
	delete(b.flowMsgs, chatID)
	b.mu.Unlock()
}
