package bot

import (
	"context"
	"strconv"
	"strings"

	"roomdesk/internal/catalog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	callback := update.CallbackQuery
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID
	data := callback.Data
	l := zerolog.Ctx(ctx)

	l.Debug().
		Int64("user_id", callback.From.ID).
		Str("data", data).
		Msg("Handling callback")

	// Убираем "часики" на кнопке.
	if _, err := b.tgService.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		l.Warn().Err(err).Msg("Failed to answer callback query")
	}

	switch {
	// Room catalog.
	case strings.HasPrefix(data, "rooms_page:"):
		b.showRooms(ctx, chatID, messageID, parsePage(data, "rooms_page:"))
	case strings.HasPrefix(data, "room:"):
		b.showRoomDetails(ctx, chatID, strings.TrimPrefix(data, "room:"))
	case strings.HasPrefix(data, "book:"):
		b.startBookingDialog(ctx, chatID, strings.TrimPrefix(data, "book:"))

	// Room filters.
	case data == "filters":
		b.showFilterMenu(ctx, chatID)
	case strings.HasPrefix(data, "filter_type:"):
		rt := strings.TrimPrefix(data, "filter_type:")
		b.updateRoomFilter(chatID, func(f *catalog.RoomFilter) {
			if f.RoomType == rt {
				f.RoomType = ""
			} else {
				f.RoomType = rt
			}
		})
		b.showFilterMenu(ctx, chatID)
	case strings.HasPrefix(data, "filter_bed:"):
		bt := strings.TrimPrefix(data, "filter_bed:")
		b.updateRoomFilter(chatID, func(f *catalog.RoomFilter) {
			if f.BedType == bt {
				f.BedType = ""
			} else {
				f.BedType = bt
			}
		})
		b.showFilterMenu(ctx, chatID)
	case data == "filter_floor":
		b.setStep(ctx, chatID, stepFilterFloor, nil)
		b.sendMessage(chatID, "Which floor? Enter a number:")
	case data == "filter_min":
		b.setStep(ctx, chatID, stepFilterMinPrice, nil)
		b.sendMessage(chatID, "Minimum price per night:")
	case data == "filter_max":
		b.setStep(ctx, chatID, stepFilterMaxPrice, nil)
		b.sendMessage(chatID, "Maximum price per night:")
	case data == "filter_clear":
		b.updateRoomFilter(chatID, func(f *catalog.RoomFilter) { *f = catalog.RoomFilter{} })
		b.showRooms(ctx, chatID, messageID, 0)

	// Booking dialog.
	case data == "bkf_confirm" || data == "bkf_retry" || data == "bkf_dates" || data == "bkf_cancel":
		b.handleFlowCallback(ctx, chatID, data)

	// Own bookings.
	case strings.HasPrefix(data, "mybk_page:"):
		b.showMyBookings(ctx, chatID, messageID, parsePage(data, "mybk_page:"), false)
	case strings.HasPrefix(data, "cancel_own_yes:"):
		b.handleCancelOwn(ctx, chatID, strings.TrimPrefix(data, "cancel_own_yes:"))
	case strings.HasPrefix(data, "cancel_own:"):
		b.confirmCancelOwn(chatID, strings.TrimPrefix(data, "cancel_own:"))
	case strings.HasPrefix(data, "del_yes:"):
		b.handleDeleteOwn(ctx, chatID, strings.TrimPrefix(data, "del_yes:"))
	case strings.HasPrefix(data, "del:"):
		b.confirmDeleteOwn(chatID, strings.TrimPrefix(data, "del:"))
	case data == "del_all_cancelled":
		b.confirmDeleteAllCancelled(ctx, chatID)
	case data == "del_all_yes":
		b.handleDeleteAllCancelled(ctx, chatID)
	case data == "mybk_refresh":
		b.showMyBookings(ctx, chatID, 0, 0, true)
	case data == "mybk_status_menu":
		b.showMyStatusMenu(chatID)
	case strings.HasPrefix(data, "mybk_status:"):
		b.handleMyStatus(ctx, chatID, strings.TrimPrefix(data, "mybk_status:"))
	case data == "mybk_sort_menu":
		b.showMySortMenu(chatID)
	case strings.HasPrefix(data, "mybk_sort:"):
		b.handleMySort(ctx, chatID, strings.TrimPrefix(data, "mybk_sort:"))
	case data == "mybk_search":
		b.setStep(ctx, chatID, stepMySearch, nil)
		b.sendMessage(chatID, "Search your bookings by room or request text (send - to clear):")

	// Admin booking list.
	case strings.HasPrefix(data, "adm_page:"):
		b.showAdminBookings(ctx, chatID, messageID, parsePage(data, "adm_page:"), false)
	case data == "adm_refresh":
		b.showAdminBookings(ctx, chatID, 0, 0, true)
	case strings.HasPrefix(data, "approve:"):
		b.handleApprove(ctx, chatID, strings.TrimPrefix(data, "approve:"))
	case strings.HasPrefix(data, "reject:"):
		b.startReject(ctx, chatID, strings.TrimPrefix(data, "reject:"))
	case strings.HasPrefix(data, "adm_cancel_yes:"):
		b.handleAdminCancel(ctx, chatID, strings.TrimPrefix(data, "adm_cancel_yes:"))
	case strings.HasPrefix(data, "adm_cancel:"):
		b.confirmAdminCancel(chatID, strings.TrimPrefix(data, "adm_cancel:"))
	case strings.HasPrefix(data, "adm_del_yes:"):
		b.handleAdminDelete(ctx, chatID, strings.TrimPrefix(data, "adm_del_yes:"))
	case strings.HasPrefix(data, "adm_del:"):
		b.confirmAdminDelete(chatID, strings.TrimPrefix(data, "adm_del:"))
	case data == "adm_search":
		b.setStep(ctx, chatID, stepAdminSearch, nil)
		b.sendMessage(chatID, "Search by room, guest or request text (send - to clear):")
	case data == "adm_dates":
		b.setStep(ctx, chatID, stepAdminDateFrom, nil)
		b.sendMessage(chatID, "Check-in from (DD.MM.YYYY, or - for no lower bound):")
	case data == "adm_status_menu":
		b.showAdminStatusMenu(chatID)
	case strings.HasPrefix(data, "adm_status:"):
		b.handleAdminStatus(ctx, chatID, strings.TrimPrefix(data, "adm_status:"))
	case data == "adm_sort_menu":
		b.showAdminSortMenu(chatID)
	case strings.HasPrefix(data, "adm_sort:"):
		b.handleAdminSort(ctx, chatID, strings.TrimPrefix(data, "adm_sort:"))
	case data == "adm_export":
		b.handleAdminExport(ctx, chatID)

	// Room management.
	case data == "rooms_admin":
		b.showAdminRooms(ctx, chatID)
	case data == "room_new":
		b.startRoomForm(ctx, chatID, "")
	case strings.HasPrefix(data, "room_edit:"):
		b.startRoomForm(ctx, chatID, strings.TrimPrefix(data, "room_edit:"))
	case strings.HasPrefix(data, "room_del_yes:"):
		b.handleRoomDelete(ctx, chatID, strings.TrimPrefix(data, "room_del_yes:"))
	case strings.HasPrefix(data, "room_del:"):
		b.confirmRoomDelete(chatID, strings.TrimPrefix(data, "room_del:"))
	case data == "rooms_export":
		b.handleRoomsExport(ctx, chatID)

	default:
		l.Warn().Str("data", data).Msg("Unknown callback data")
	}
}

func parsePage(data, prefix string) int {
	page, err := strconv.Atoi(strings.TrimPrefix(data, prefix))
	if err != nil || page < 0 {
		return 0
	}
	return page
}
