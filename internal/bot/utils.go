package bot

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"roomdesk/internal/api"
	"roomdesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const dateInputLayout = "02.01.2006"

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) sendHTML(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) editHTML(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	var c tgbotapi.Chattable
	if markup != nil {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *markup)
		edit.ParseMode = tgbotapi.ModeHTML
		c = edit
	} else {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
		edit.ParseMode = tgbotapi.ModeHTML
		c = edit
	}
	if _, err := b.tgService.Send(c); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to edit message")
	}
}

// getSession returns the stored session or nil; errors are logged, not
// surfaced, so a broken session store degrades to "not logged in".
func (b *Bot) getSession(ctx context.Context, chatID int64) *models.Session {
	session, err := b.sessions.Get(ctx, chatID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("Failed to read session")
		return nil
	}
	return session
}

// requireSession prompts for login when the user has no session.
func (b *Bot) requireSession(ctx context.Context, chatID int64) *models.Session {
	session := b.getSession(ctx, chatID)
	if session == nil {
		b.sendMessage(chatID, "🔐 Please log in first. Use /login or the Log in button.")
		return nil
	}
	return session
}

func (b *Bot) requireAdmin(ctx context.Context, chatID int64) *models.Session {
	session := b.requireSession(ctx, chatID)
	if session == nil {
		return nil
	}
	if !session.IsAdmin {
		b.sendMessage(chatID, "⛔ This action is for administrators only.")
		return nil
	}
	return session
}

// handleBackendError sends the backend message to the user. A 401 also
// drops the stale session.
func (b *Bot) handleBackendError(ctx context.Context, chatID int64, err error) {
	if api.IsStatus(err, http.StatusUnauthorized) {
		if derr := b.sessions.Delete(ctx, chatID); derr != nil {
			zerolog.Ctx(ctx).Error().Err(derr).Int64("chat_id", chatID).Msg("Failed to drop session")
		}
		b.sendMessage(chatID, "🔐 Your session has expired. Please log in again.")
		b.sendMainMenu(ctx, chatID)
		return
	}
	b.sendMessage(chatID, "❌ "+err.Error())
}

// canCancelBooking reports whether the viewer may cancel the booking.
// Owners cancel their own pending requests; admins cancel confirmed ones.
func canCancelBooking(booking models.Booking, isAdmin bool) bool {
	if isAdmin {
		return booking.Status == models.StatusConfirmed
	}
	return booking.Status == models.StatusPending
}

// canDeleteBooking reports whether the viewer may delete the booking.
// Admins always can; owners only once it is cancelled or rejected.
func canDeleteBooking(booking models.Booking, isAdmin bool) bool {
	if isAdmin {
		return true
	}
	return booking.Status == models.StatusCancelled || booking.Status == models.StatusRejected
}

func statusEmoji(status string) string {
	switch status {
	case models.StatusConfirmed:
		return "✅"
	case models.StatusCancelled:
		return "❌"
	case models.StatusRejected:
		return "🚫"
	default:
		return "⏳"
	}
}

// formatNumber renders backend-calculated values without inventing
// precision the server did not send.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	return t.Format(dateInputLayout)
}

// parseUserDate accepts 25.12.2026 and 2026-12-25.
func parseUserDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if t, err := time.Parse(dateInputLayout, text); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", text)
}

func formatBookingCard(booking models.Booking, withUser bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s <b>%s</b> — %s\n", statusEmoji(booking.Status), booking.Room.Name, booking.Status))
	if withUser {
		sb.WriteString(fmt.Sprintf("   👤 %s (%s)\n", booking.User.Username, booking.User.Email))
	}
	sb.WriteString(fmt.Sprintf("   📅 %s → %s (%s nights)\n",
		formatDate(booking.CheckInDate), formatDate(booking.CheckOutDate), formatNumber(booking.DurationInDays)))
	sb.WriteString(fmt.Sprintf("   💰 $%s\n", formatNumber(booking.TotalCost)))
	if booking.Guests > 0 {
		sb.WriteString(fmt.Sprintf("   👥 %d guest(s)\n", booking.Guests))
	}
	if booking.SpecialRequests != "" {
		sb.WriteString(fmt.Sprintf("   💬 %s\n", booking.SpecialRequests))
	}
	if booking.Status == models.StatusRejected && booking.RejectionReason != "" {
		sb.WriteString(fmt.Sprintf("   🚫 Reason: %s\n", booking.RejectionReason))
	}
	return sb.String()
}

func formatRoomCard(room models.Room) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🛏 <b>%s</b> — $%s/night\n", room.Name, formatNumber(room.Price)))
	if room.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n", room.Description))
	}
	sb.WriteString(fmt.Sprintf("Type: %s · Bed: %s · Floor: %d · Sleeps %d\n",
		room.RoomType, room.BedType, room.FloorLevel, room.Capacity))
	if len(room.Amenities) > 0 {
		sb.WriteString("Amenities: " + strings.Join(room.Amenities, ", ") + "\n")
	}
	if !room.Available {
		sb.WriteString("⚠️ Currently unavailable\n")
	}
	return sb.String()
}

func confirmKeyboard(yesData, noData string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Yes", yesData),
			tgbotapi.NewInlineKeyboardButtonData("↩️ No", noData),
		),
	)
}
