package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"roomdesk/internal/events"
	"roomdesk/internal/flow"
	"roomdesk/internal/metrics"
	"roomdesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Stay boundaries: rooms are handed over at 14:00 and vacated by 11:00.
// The backend prices the exact timestamps, so the parsed dates must carry
// these times, not midnight.
const (
	checkInHour  = 14
	checkOutHour = 11
)

func (b *Bot) startBookingDialog(ctx context.Context, chatID int64, roomID string) {
	session := b.requireSession(ctx, chatID)
	if session == nil {
		return
	}

	room, err := b.findRoom(ctx, roomID)
	if err != nil {
		b.handleBackendError(ctx, chatID, err)
		return
	}
	if room == nil {
		b.sendMessage(chatID, "Room not found. It may have been removed.")
		return
	}
	if !room.Available {
		b.sendMessage(chatID, "This room is currently unavailable.")
		return
	}

	debounce := time.Duration(b.config.Bot.QuoteDebounceMs) * time.Millisecond
	roomName := room.Name
	quoter := flow.NewQuoter(b.backend, debounce, b.logger, func(snap flow.Snapshot) {
		b.renderFlowSnapshot(chatID, roomName, snap)
	})
	b.dialogs.Put(chatID, quoter)
	quoter.Open(roomID, session.Token)

	b.setStep(ctx, chatID, stepBookCheckIn, map[string]interface{}{
		"room_id":   roomID,
		"room_name": roomName,
	})
	b.sendMessage(chatID, fmt.Sprintf("📅 Booking <%s>. Check-in is at 14:00, check-out at 11:00.\n\nEnter the check-in date (DD.MM.YYYY):", roomName))
}

func (b *Bot) handleBookingStep(ctx context.Context, chatID int64, text string, state *models.FlowState) bool {
	quoter := b.dialogs.Get(chatID)
	if quoter == nil {
		b.clearFlow(ctx, chatID)
		b.sendMessage(chatID, "This booking dialog has expired. Pick a room to start over.")
		return true
	}

	text = strings.TrimSpace(text)

	switch state.Step {
	case stepBookCheckIn:
		checkIn, err := parseUserDate(text)
		if err != nil {
			b.sendMessage(chatID, "I could not read that date. Use DD.MM.YYYY, e.g. 25.12.2026:")
			return true
		}
		checkIn = checkIn.Add(checkInHour * time.Hour)
		state.Data["check_in"] = checkIn.Format(time.RFC3339)
		b.setStep(ctx, chatID, stepBookCheckOut, state.Data)
		b.sendMessage(chatID, "Enter the check-out date (DD.MM.YYYY):")
		return true

	case stepBookCheckOut:
		checkOut, err := parseUserDate(text)
		if err != nil {
			b.sendMessage(chatID, "I could not read that date. Use DD.MM.YYYY, e.g. 28.12.2026:")
			return true
		}
		checkOut = checkOut.Add(checkOutHour * time.Hour)
		checkIn := state.GetTime("check_in")
		if !checkOut.After(checkIn) {
			b.sendMessage(chatID, "Check-out must be after check-in. Try again:")
			return true
		}

		// Pricing starts in the background while we collect the rest.
		quoter.SetDates(ctx, checkIn, checkOut)

		state.Data["check_out"] = checkOut.Format(time.RFC3339)
		b.setStep(ctx, chatID, stepBookGuests, state.Data)
		b.sendMessage(chatID, "How many guests? (send - to skip)")
		return true

	case stepBookGuests:
		if text != "-" {
			guests, err := strconv.Atoi(text)
			if err != nil || guests < 1 {
				b.sendMessage(chatID, "Enter the number of guests as a whole number, or - to skip:")
				return true
			}
			quoter.SetGuests(guests)
		}
		b.setStep(ctx, chatID, stepBookRequests, state.Data)
		b.sendMessage(chatID, "Any special requests? (send - for none)")
		return true

	case stepBookRequests:
		if text != "-" {
			quoter.SetRequests(text)
		}
		if err := b.stateService.ClearFlowState(ctx, chatID); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("Failed to clear flow state")
		}

		// The price card already shows the confirm button once the quote
		// arrives; if it is still being calculated, just say so.
		snap := quoter.Current()
		if snap.State == flow.StateQuoting {
			b.sendMessage(chatID, "⏳ Calculating the price, the confirm button will appear in a moment...")
		} else {
			roomName := state.GetString("room_name")
			b.renderFlowSnapshot(chatID, roomName, snap)
		}
		return true
	}
	return false
}

// renderFlowSnapshot draws the price card for the dialog, editing the
// previous card in place. Runs from handler and timer goroutines alike.
func (b *Bot) renderFlowSnapshot(chatID int64, roomName string, snap flow.Snapshot) {
	var text string
	var markup *tgbotapi.InlineKeyboardMarkup

	switch snap.State {
	case flow.StateQuoting:
		text = fmt.Sprintf("🛏 <b>%s</b>\n⏳ Calculating the price...", roomName)

	case flow.StateQuoted:
		text = fmt.Sprintf("🛏 <b>%s</b>\n💰 <b>$%s</b> for %s night(s)",
			roomName, formatNumber(snap.Quote.TotalCost), formatNumber(snap.Quote.DurationInDays))
		m := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Confirm booking", "bkf_confirm"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✏️ Change dates", "bkf_dates"),
				tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "bkf_cancel"),
			),
		)
		markup = &m

	case flow.StateQuoteError:
		text = fmt.Sprintf("🛏 <b>%s</b>\n❌ %s", roomName, snap.ErrorMessage)
		m := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✏️ Change dates", "bkf_dates"),
				tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "bkf_cancel"),
			),
		)
		markup = &m

	case flow.StateSubmitting:
		text = fmt.Sprintf("🛏 <b>%s</b>\n⏳ Sending your booking...", roomName)

	case flow.StateSuccess:
		text = fmt.Sprintf("🎉 <b>Booking requested!</b>\n\n%s\nAn administrator will review it shortly.",
			formatBookingCard(*snap.Booking, false))
		b.finishBookingDialog(chatID, snap.Booking)

	case flow.StateSubmitError:
		metrics.IncBookingAction("create", "error")
		text = fmt.Sprintf("🛏 <b>%s</b>\n❌ %s", roomName, snap.ErrorMessage)
		m := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔁 Try again", "bkf_retry"),
				tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "bkf_cancel"),
			),
		)
		markup = &m

	default:
		return
	}

	b.mu.Lock()
	msgID := b.flowMsgs[chatID]
	b.mu.Unlock()

	if snap.State == flow.StateSuccess {
		// Terminal card replaces the dialog; next booking starts fresh.
		b.mu.Lock()
		delete(b.flowMsgs, chatID)
		b.mu.Unlock()
	}

	if msgID != 0 {
		b.editHTML(chatID, msgID, text, markup)
		if snap.State == flow.StateSuccess {
			b.collapseSuccessCard(chatID, msgID)
		}
		return
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	sent, err := b.tgService.Send(msg)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send price card")
		return
	}
	if snap.State != flow.StateSuccess {
		b.mu.Lock()
		b.flowMsgs[chatID] = sent.MessageID
		b.mu.Unlock()
	} else {
		b.collapseSuccessCard(chatID, sent.MessageID)
	}
}

// collapseSuccessCard shrinks the success card to a one-liner after the
// configured delay, the chat equivalent of the auto-closing dialog.
func (b *Bot) collapseSuccessCard(chatID int64, messageID int) {
	delay := time.Duration(b.config.Bot.SuccessCloseSeconds) * time.Second
	if delay <= 0 {
		return
	}
	time.AfterFunc(delay, func() {
		b.editHTML(chatID, messageID, "✅ Booking request sent. An administrator will review it shortly.", nil)
	})
}

func (b *Bot) finishBookingDialog(chatID int64, booking *models.Booking) {
	b.dialogs.Remove(chatID)
	metrics.IncBookingAction("create", "ok")

	if booking == nil {
		return
	}
	if err := b.eventBus.PublishJSON(events.EventBookingRequested, events.BookingEventPayload{
		BookingID: booking.ID,
		Username:  booking.User.Username,
		Email:     booking.User.Email,
		RoomID:    booking.Room.ID,
		RoomName:  booking.Room.Name,
		Status:    booking.Status,
		CheckIn:   booking.CheckInDate,
		CheckOut:  booking.CheckOutDate,
	}); err != nil {
		b.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("Failed to publish booking event")
	}
}

func (b *Bot) handleFlowCallback(ctx context.Context, chatID int64, data string) {
	quoter := b.dialogs.Get(chatID)
	if quoter == nil {
		b.sendMessage(chatID, "This booking dialog has expired. Pick a room to start over.")
		return
	}

	switch data {
	case "bkf_confirm":
		quoter.Submit(ctx)

	case "bkf_retry":
		quoter.Retry()
		quoter.Submit(ctx)

	case "bkf_dates":
		req := quoter.Request()
		data := map[string]interface{}{"room_id": req.RoomID}
		if room, err := b.findRoom(ctx, req.RoomID); err == nil && room != nil {
			data["room_name"] = room.Name
		}
		b.setStep(ctx, chatID, stepBookCheckIn, data)
		b.sendMessage(chatID, "Enter the new check-in date (DD.MM.YYYY):")

	case "bkf_cancel":
		b.clearFlow(ctx, chatID)
		b.sendMessage(chatID, "Booking cancelled. The room is still there if you change your mind.")
	}
}
