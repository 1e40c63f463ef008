package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"roomdesk/internal/catalog"
	"roomdesk/internal/events"
	"roomdesk/internal/metrics"
	"roomdesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) adminQuery(chatID int64) catalog.BookingQuery {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.adminQueries[chatID]
}

func (b *Bot) updateAdminQuery(chatID int64, update func(*catalog.BookingQuery)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	query := b.adminQueries[chatID]
	update(&query)
	b.adminQueries[chatID] = query
}

func (b *Bot) showAdminBookings(ctx context.Context, chatID int64, messageID, page int, refresh bool) {
	session := b.requireAdmin(ctx, chatID)
	if session == nil {
		return
	}

	b.mu.Lock()
	bookings, cached := b.adminLists[chatID]
	b.mu.Unlock()

	if refresh || !cached {
		fetched, err := b.backend.AllBookings(ctx, session.Token)
		if err != nil {
			b.handleBackendError(ctx, chatID, err)
			return
		}
		bookings = fetched
		b.mu.Lock()
		b.adminLists[chatID] = bookings
		b.mu.Unlock()
	}

	query := b.adminQuery(chatID)
	view := catalog.ApplyBookingQuery(bookings, query)
	stats := catalog.CountBookings(bookings)

	var title strings.Builder
	title.WriteString("🗂 <b>All bookings</b>\n")
	title.WriteString(fmt.Sprintf("Total %d · ⏳ %d · ✅ %d · ❌ %d · 🚫 %d",
		stats.Total, stats.Pending, stats.Confirmed, stats.Cancelled, stats.Rejected))
	if desc := describeQuery(query); desc != "" {
		title.WriteString("\n" + desc)
	}
	if len(view) != len(bookings) {
		title.WriteString(fmt.Sprintf("\nShowing %d of %d", len(view), len(bookings)))
	}

	params := PaginationParams{
		ChatID:     chatID,
		MessageID:  messageID,
		Page:       page,
		Title:      title.String(),
		PagePrefix: "adm_page:",
	}

	b.renderPaginatedList(params, len(view), b.config.Bot.BookingsPaginationSize, func(startIdx, endIdx int) (string, [][]tgbotapi.InlineKeyboardButton) {
		var content strings.Builder
		var keyboard [][]tgbotapi.InlineKeyboardButton

		for _, booking := range view[startIdx:endIdx] {
			content.WriteString(formatBookingCard(booking, true))
			content.WriteString("\n")

			var row []tgbotapi.InlineKeyboardButton
			if booking.Status == models.StatusPending {
				row = append(row,
					tgbotapi.NewInlineKeyboardButtonData("✅ Approve", "approve:"+booking.ID),
					tgbotapi.NewInlineKeyboardButtonData("🚫 Reject", "reject:"+booking.ID),
				)
			}
			if canCancelBooking(booking, true) {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "adm_cancel:"+booking.ID))
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("🗑", "adm_del:"+booking.ID))
			keyboard = append(keyboard, row)
		}

		keyboard = append(keyboard,
			[]tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData("🔁 Refresh", "adm_refresh"),
				tgbotapi.NewInlineKeyboardButtonData("🔎 Search", "adm_search"),
				tgbotapi.NewInlineKeyboardButtonData("📅 Dates", "adm_dates"),
			},
			[]tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData("⚙️ Status", "adm_status_menu"),
				tgbotapi.NewInlineKeyboardButtonData("↕️ Sort", "adm_sort_menu"),
				tgbotapi.NewInlineKeyboardButtonData("📤 Export", "adm_export"),
			},
		)
		return content.String(), keyboard
	})
}

func describeQuery(q catalog.BookingQuery) string {
	var parts []string
	if q.Status != "" {
		parts = append(parts, "status: "+q.Status)
	}
	if q.Search != "" {
		parts = append(parts, "search: "+q.Search)
	}
	if !q.CheckInFrom.IsZero() {
		parts = append(parts, "from "+formatDate(q.CheckInFrom))
	}
	if !q.CheckInTo.IsZero() {
		parts = append(parts, "to "+formatDate(q.CheckInTo))
	}
	if q.SortKey != "" {
		dir := "↑"
		if q.SortDesc {
			dir = "↓"
		}
		parts = append(parts, "sort: "+q.SortKey+dir)
	}
	if len(parts) == 0 {
		return ""
	}
	return "Filter: " + strings.Join(parts, ", ")
}

func (b *Bot) showAdminStatusMenu(chatID int64) {
	var rows [][]tgbotapi.InlineKeyboardButton
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("All", "adm_status:all"),
	))
	for _, status := range models.BookingStatuses {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(statusEmoji(status)+" "+status, "adm_status:"+status),
		))
	}
	b.sendHTML(chatID, "Filter bookings by status:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) showAdminSortMenu(chatID int64) {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🕐 Created", "adm_sort:"+catalog.SortByCreatedAt),
			tgbotapi.NewInlineKeyboardButtonData("📅 Check-in", "adm_sort:"+catalog.SortByCheckIn),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Total", "adm_sort:"+catalog.SortByTotalCost),
			tgbotapi.NewInlineKeyboardButtonData("🛏 Room", "adm_sort:"+catalog.SortByRoomName),
		),
	)
	b.sendHTML(chatID, "Sort bookings by (tap again to flip direction):", markup)
}

func (b *Bot) handleAdminSort(ctx context.Context, chatID int64, key string) {
	b.updateAdminQuery(chatID, func(q *catalog.BookingQuery) {
		if q.SortKey == key {
			q.SortDesc = !q.SortDesc
		} else {
			q.SortKey = key
			q.SortDesc = false
		}
	})
	b.showAdminBookings(ctx, chatID, 0, 0, false)
}

func (b *Bot) handleAdminStatus(ctx context.Context, chatID int64, status string) {
	b.updateAdminQuery(chatID, func(q *catalog.BookingQuery) {
		if status == "all" {
			q.Status = ""
		} else {
			q.Status = status
		}
	})
	b.showAdminBookings(ctx, chatID, 0, 0, false)
}

func (b *Bot) handleApprove(ctx context.Context, chatID int64, bookingID string) {
	session := b.requireAdmin(ctx, chatID)
	if session == nil {
		return
	}

	if err := b.backend.ApproveBooking(ctx, session.Token, bookingID); err != nil {
		metrics.IncBookingAction("approve", "error")
		b.handleBackendError(ctx, chatID, err)
		return
	}
	metrics.IncBookingAction("approve", "ok")

	b.publishBookingEvent(events.EventBookingApproved, bookingID, session.Username, chatID)
	b.sendMessage(chatID, "✅ Booking approved.")
	b.showAdminBookings(ctx, chatID, 0, 0, true)
}

func (b *Bot) startReject(ctx context.Context, chatID int64, bookingID string) {
	if b.requireAdmin(ctx, chatID) == nil {
		return
	}
	b.setStep(ctx, chatID, stepRejectReason, map[string]interface{}{"booking_id": bookingID})
	b.sendMessage(chatID, "Enter the rejection reason (send - for none):")
}

func (b *Bot) confirmAdminCancel(chatID int64, bookingID string) {
	b.sendHTML(chatID, "Cancel this confirmed booking?",
		confirmKeyboard("adm_cancel_yes:"+bookingID, "adm_page:0"))
}

func (b *Bot) handleAdminCancel(ctx context.Context, chatID int64, bookingID string) {
	session := b.requireAdmin(ctx, chatID)
	if session == nil {
		return
	}

	if err := b.backend.CancelBooking(ctx, session.Token, bookingID); err != nil {
		metrics.IncBookingAction("cancel", "error")
		b.handleBackendError(ctx, chatID, err)
		return
	}
	metrics.IncBookingAction("cancel", "ok")

	b.publishBookingEvent(events.EventBookingCancelled, bookingID, session.Username, chatID)
	b.sendMessage(chatID, "❌ Booking cancelled.")
	b.showAdminBookings(ctx, chatID, 0, 0, true)
}

func (b *Bot) confirmAdminDelete(chatID int64, bookingID string) {
	b.sendHTML(chatID, "Delete this booking permanently?",
		confirmKeyboard("adm_del_yes:"+bookingID, "adm_page:0"))
}

func (b *Bot) handleAdminDelete(ctx context.Context, chatID int64, bookingID string) {
	session := b.requireAdmin(ctx, chatID)
	if session == nil {
		return
	}

	if err := b.backend.DeleteBooking(ctx, session.Token, bookingID); err != nil {
		metrics.IncBookingAction("delete", "error")
		b.handleBackendError(ctx, chatID, err)
		return
	}
	metrics.IncBookingAction("delete", "ok")

	b.mu.Lock()
	b.adminLists[chatID] = catalog.RemoveBookingByID(b.adminLists[chatID], bookingID)
	b.mu.Unlock()

	b.publishBookingEvent(events.EventBookingDeleted, bookingID, session.Username, chatID)
	b.sendMessage(chatID, "🗑 Booking deleted.")
	b.showAdminBookings(ctx, chatID, 0, 0, false)
}

func (b *Bot) handleAdminExport(ctx context.Context, chatID int64) {
	session := b.requireAdmin(ctx, chatID)
	if session == nil {
		return
	}

	b.mu.Lock()
	bookings := b.adminLists[chatID]
	b.mu.Unlock()

	view := catalog.ApplyBookingQuery(bookings, b.adminQuery(chatID))
	if len(view) == 0 {
		b.sendMessage(chatID, "Nothing to export.")
		return
	}

	path, err := b.exporter.WriteBookings(view)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Bookings export failed")
		b.sendMessage(chatID, "❌ Export failed: "+err.Error())
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("📤 %d booking(s)", len(view))
	if _, err := b.tgService.Send(doc); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to send export file")
	}
}

func (b *Bot) handleAdminStep(ctx context.Context, chatID int64, text string, state *models.FlowState) bool {
	text = strings.TrimSpace(text)

	switch state.Step {
	case stepRejectReason:
		bookingID := state.GetString("booking_id")
		b.clearFlow(ctx, chatID)

		session := b.requireAdmin(ctx, chatID)
		if session == nil {
			return true
		}

		reason := text
		if reason == "-" {
			reason = ""
		}
		if err := b.backend.RejectBooking(ctx, session.Token, bookingID, reason); err != nil {
			metrics.IncBookingAction("reject", "error")
			b.handleBackendError(ctx, chatID, err)
			return true
		}
		metrics.IncBookingAction("reject", "ok")

		b.publishBookingEvent(events.EventBookingRejected, bookingID, session.Username, chatID)
		b.sendMessage(chatID, "🚫 Booking rejected.")
		b.showAdminBookings(ctx, chatID, 0, 0, true)
		return true

	case stepAdminSearch:
		b.clearFlow(ctx, chatID)
		term := text
		if term == "-" {
			term = ""
		}
		b.updateAdminQuery(chatID, func(q *catalog.BookingQuery) { q.Search = term })
		b.showAdminBookings(ctx, chatID, 0, 0, false)
		return true

	case stepAdminDateFrom:
		if text == "-" {
			b.updateAdminQuery(chatID, func(q *catalog.BookingQuery) { q.CheckInFrom = time.Time{} })
		} else {
			from, err := parseUserDate(text)
			if err != nil {
				b.sendMessage(chatID, "Use DD.MM.YYYY, or - to clear the lower bound:")
				return true
			}
			b.updateAdminQuery(chatID, func(q *catalog.BookingQuery) { q.CheckInFrom = from })
		}
		b.setStep(ctx, chatID, stepAdminDateTo, nil)
		b.sendMessage(chatID, "Enter the latest check-in date (DD.MM.YYYY, or - for no upper bound):")
		return true

	case stepAdminDateTo:
		if text == "-" {
			b.updateAdminQuery(chatID, func(q *catalog.BookingQuery) { q.CheckInTo = time.Time{} })
		} else {
			to, err := parseUserDate(text)
			if err != nil {
				b.sendMessage(chatID, "Use DD.MM.YYYY, or - for no upper bound:")
				return true
			}
			b.updateAdminQuery(chatID, func(q *catalog.BookingQuery) { q.CheckInTo = to })
		}
		b.clearFlow(ctx, chatID)
		b.showAdminBookings(ctx, chatID, 0, 0, false)
		return true
	}
	return false
}
