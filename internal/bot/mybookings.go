package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"roomdesk/internal/catalog"
	"roomdesk/internal/events"
	"roomdesk/internal/metrics"
	"roomdesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) showMyBookings(ctx context.Context, chatID int64, messageID, page int, refresh bool) {
	session := b.requireSession(ctx, chatID)
	if session == nil {
		return
	}

	b.mu.Lock()
	bookings, cached := b.myBookings[chatID]
	b.mu.Unlock()

	if refresh || !cached {
		fetched, err := b.backend.UserBookings(ctx, session.Token)
		if err != nil {
			b.handleBackendError(ctx, chatID, err)
			return
		}
		bookings = fetched
		b.mu.Lock()
		b.myBookings[chatID] = bookings
		b.mu.Unlock()
	}

	if len(bookings) == 0 {
		b.sendMessage(chatID, "You have no bookings yet. Browse the rooms to make one!")
		return
	}

	query := b.myQuery(chatID)
	view := catalog.ApplyBookingQuery(bookings, query)

	stats := catalog.CountBookings(bookings)
	title := fmt.Sprintf("📋 <b>Your bookings</b>\n⏳ %d pending · ✅ %d confirmed · ❌ %d cancelled · 🚫 %d rejected",
		stats.Pending, stats.Confirmed, stats.Cancelled, stats.Rejected)
	if desc := describeQuery(query); desc != "" {
		title += "\n" + desc
	}
	if len(view) != len(bookings) {
		title += fmt.Sprintf("\nShowing %d of %d", len(view), len(bookings))
	}

	params := PaginationParams{
		ChatID:     chatID,
		MessageID:  messageID,
		Page:       page,
		Title:      title,
		PagePrefix: "mybk_page:",
	}

	b.renderPaginatedList(params, len(view), b.config.Bot.BookingsPaginationSize, func(startIdx, endIdx int) (string, [][]tgbotapi.InlineKeyboardButton) {
		var content strings.Builder
		var keyboard [][]tgbotapi.InlineKeyboardButton

		for _, booking := range view[startIdx:endIdx] {
			content.WriteString(formatBookingCard(booking, false))
			content.WriteString("\n")

			var row []tgbotapi.InlineKeyboardButton
			if canCancelBooking(booking, false) {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData("❌ Cancel "+booking.Room.Name, "cancel_own:"+booking.ID))
			}
			if canDeleteBooking(booking, false) {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData("🗑 Delete "+booking.Room.Name, "del:"+booking.ID))
			}
			if len(row) > 0 {
				keyboard = append(keyboard, row)
			}
		}

		if stats.Cancelled > 0 {
			keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🧹 Delete all cancelled (%d)", stats.Cancelled), "del_all_cancelled"),
			})
		}

		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("🔁 Refresh", "mybk_refresh"),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Status", "mybk_status_menu"),
			tgbotapi.NewInlineKeyboardButtonData("↕️ Sort", "mybk_sort_menu"),
			tgbotapi.NewInlineKeyboardButtonData("🔎 Search", "mybk_search"),
		})

		return content.String(), keyboard
	})
}

func (b *Bot) myQuery(chatID int64) catalog.BookingQuery {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.myQueries[chatID]
}

func (b *Bot) updateMyQuery(chatID int64, update func(*catalog.BookingQuery)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	query := b.myQueries[chatID]
	update(&query)
	b.myQueries[chatID] = query
}

func (b *Bot) showMyStatusMenu(chatID int64) {
	var rows [][]tgbotapi.InlineKeyboardButton
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("All", "mybk_status:all"),
	))
	for _, status := range models.BookingStatuses {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(statusEmoji(status)+" "+status, "mybk_status:"+status),
		))
	}
	b.sendHTML(chatID, "Show only bookings with status:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) showMySortMenu(chatID int64) {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🕐 Created", "mybk_sort:"+catalog.SortByCreatedAt),
			tgbotapi.NewInlineKeyboardButtonData("📅 Check-in", "mybk_sort:"+catalog.SortByCheckIn),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Total", "mybk_sort:"+catalog.SortByTotalCost),
			tgbotapi.NewInlineKeyboardButtonData("🛏 Room", "mybk_sort:"+catalog.SortByRoomName),
		),
	)
	b.sendHTML(chatID, "Sort your bookings by (tap again to flip direction):", markup)
}

func (b *Bot) handleMyStatus(ctx context.Context, chatID int64, status string) {
	b.updateMyQuery(chatID, func(q *catalog.BookingQuery) {
		if status == "all" {
			q.Status = ""
		} else {
			q.Status = status
		}
	})
	b.showMyBookings(ctx, chatID, 0, 0, false)
}

func (b *Bot) handleMySort(ctx context.Context, chatID int64, key string) {
	b.updateMyQuery(chatID, func(q *catalog.BookingQuery) {
		if q.SortKey == key {
			q.SortDesc = !q.SortDesc
		} else {
			q.SortKey = key
			q.SortDesc = false
		}
	})
	b.showMyBookings(ctx, chatID, 0, 0, false)
}

func (b *Bot) handleMySearchStep(ctx context.Context, chatID int64, text string, state *models.FlowState) bool {
	if state.Step != stepMySearch {
		return false
	}
	b.clearFlow(ctx, chatID)
	term := strings.TrimSpace(text)
	if term == "-" {
		term = ""
	}
	b.updateMyQuery(chatID, func(q *catalog.BookingQuery) { q.Search = term })
	b.showMyBookings(ctx, chatID, 0, 0, false)
	return true
}

func (b *Bot) confirmCancelOwn(chatID int64, bookingID string) {
	b.sendHTML(chatID, "Cancel this booking request?",
		confirmKeyboard("cancel_own_yes:"+bookingID, "mybk_page:0"))
}

func (b *Bot) handleCancelOwn(ctx context.Context, chatID int64, bookingID string) {
	session := b.requireSession(ctx, chatID)
	if session == nil {
		return
	}

	if err := b.backend.CancelOwnBooking(ctx, session.Token, bookingID); err != nil {
		metrics.IncBookingAction("cancel_own", "error")
		b.handleBackendError(ctx, chatID, err)
		return
	}
	metrics.IncBookingAction("cancel_own", "ok")

	b.publishBookingEvent(events.EventBookingCancelled, bookingID, session.Username, chatID)
	b.sendMessage(chatID, "✅ Booking cancelled.")
	// A status change needs the backend's view; re-fetch.
	b.showMyBookings(ctx, chatID, 0, 0, true)
}

func (b *Bot) confirmDeleteOwn(chatID int64, bookingID string) {
	b.sendHTML(chatID, "Remove this booking from your history? This cannot be undone.",
		confirmKeyboard("del_yes:"+bookingID, "mybk_page:0"))
}

func (b *Bot) handleDeleteOwn(ctx context.Context, chatID int64, bookingID string) {
	session := b.requireSession(ctx, chatID)
	if session == nil {
		return
	}

	if err := b.backend.DeleteBooking(ctx, session.Token, bookingID); err != nil {
		metrics.IncBookingAction("delete", "error")
		b.handleBackendError(ctx, chatID, err)
		return
	}
	metrics.IncBookingAction("delete", "ok")

	// Deletes are patched locally instead of re-fetching the whole list.
	b.mu.Lock()
	b.myBookings[chatID] = catalog.RemoveBookingByID(b.myBookings[chatID], bookingID)
	b.mu.Unlock()

	b.publishBookingEvent(events.EventBookingDeleted, bookingID, session.Username, chatID)
	b.sendMessage(chatID, "🗑 Booking removed.")
	b.showMyBookings(ctx, chatID, 0, 0, false)
}

func (b *Bot) confirmDeleteAllCancelled(ctx context.Context, chatID int64) {
	b.mu.Lock()
	cancelled := catalog.CancelledBookings(b.myBookings[chatID])
	b.mu.Unlock()

	if len(cancelled) == 0 {
		b.sendMessage(chatID, "Nothing to clean up: no cancelled bookings.")
		return
	}
	b.sendHTML(chatID, fmt.Sprintf("Delete all %d cancelled booking(s)? This cannot be undone.", len(cancelled)),
		confirmKeyboard("del_all_yes", "mybk_page:0"))
}

func (b *Bot) handleDeleteAllCancelled(ctx context.Context, chatID int64) {
	session := b.requireSession(ctx, chatID)
	if session == nil {
		return
	}

	b.mu.Lock()
	cancelled := catalog.CancelledBookings(b.myBookings[chatID])
	b.mu.Unlock()

	if len(cancelled) == 0 {
		b.sendMessage(chatID, "Nothing to clean up: no cancelled bookings.")
		return
	}

	deleted := b.bulkDeleteBookings(ctx, session.Token, cancelled)

	// Keep whatever survived: successes disappear, failures stay visible.
	b.mu.Lock()
	remaining := b.myBookings[chatID]
	for _, id := range deleted {
		remaining = catalog.RemoveBookingByID(remaining, id)
	}
	b.myBookings[chatID] = remaining
	b.mu.Unlock()

	if len(deleted) == len(cancelled) {
		b.sendMessage(chatID, fmt.Sprintf("🧹 Deleted %d cancelled booking(s).", len(deleted)))
	} else {
		b.sendMessage(chatID, fmt.Sprintf("🧹 Deleted %d of %d cancelled booking(s); the rest could not be removed right now.",
			len(deleted), len(cancelled)))
	}
	b.showMyBookings(ctx, chatID, 0, 0, false)
}

// bulkDeleteBookings fires the deletes concurrently and returns the IDs
// that succeeded. Partial failure is fine; there is no rollback.
func (b *Bot) bulkDeleteBookings(ctx context.Context, token string, bookings []models.Booking) []string {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		deleted []string
	)

	for _, booking := range bookings {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := b.backend.RemoveBooking(ctx, token, id); err != nil {
				metrics.IncBookingAction("bulk_delete", "error")
				zerolog.Ctx(ctx).Warn().Err(err).Str("booking_id", id).Msg("Bulk delete failed for booking")
				return
			}
			metrics.IncBookingAction("bulk_delete", "ok")
			mu.Lock()
			deleted = append(deleted, id)
			mu.Unlock()
		}(booking.ID)
	}
	wg.Wait()

	return deleted
}

func (b *Bot) publishBookingEvent(eventType, bookingID, username string, chatID int64) {
	if err := b.eventBus.PublishJSON(eventType, events.BookingEventPayload{
		BookingID:   bookingID,
		Username:    username,
		ChangedBy:   username,
		ChangedByID: chatID,
	}); err != nil {
		b.logger.Error().Err(err).Str("booking_id", bookingID).Msg("Failed to publish booking event")
	}
}
