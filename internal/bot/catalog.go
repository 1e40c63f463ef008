package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"roomdesk/internal/catalog"
	"roomdesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) roomFilter(chatID int64) catalog.RoomFilter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.roomFilters[chatID]
}

func (b *Bot) updateRoomFilter(chatID int64, update func(*catalog.RoomFilter)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	filter := b.roomFilters[chatID]
	update(&filter)
	b.roomFilters[chatID] = filter
}

func (b *Bot) showRooms(ctx context.Context, chatID int64, messageID, page int) {
	rooms, err := b.backend.ListRooms(ctx)
	if err != nil {
		b.handleBackendError(ctx, chatID, err)
		return
	}

	filter := b.roomFilter(chatID)
	filtered := catalog.FilterRooms(rooms, filter)

	title := "🏨 <b>Our rooms</b>"
	if !filter.IsZero() {
		title += fmt.Sprintf(" (%d of %d match your filters)", len(filtered), len(rooms))
	}

	if len(filtered) == 0 {
		markup := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔎 Filters", "filters"),
				tgbotapi.NewInlineKeyboardButtonData("♻️ Clear filters", "filter_clear"),
			),
		)
		text := title + "\n\nNo rooms match the selected filters."
		if messageID != 0 {
			b.editHTML(chatID, messageID, text, &markup)
		} else {
			b.sendHTML(chatID, text, markup)
		}
		return
	}

	params := PaginationParams{
		ChatID:     chatID,
		MessageID:  messageID,
		Page:       page,
		Title:      title,
		PagePrefix: "rooms_page:",
	}

	b.renderPaginatedList(params, len(filtered), b.config.Bot.PaginationSize, func(startIdx, endIdx int) (string, [][]tgbotapi.InlineKeyboardButton) {
		var content strings.Builder
		var keyboard [][]tgbotapi.InlineKeyboardButton

		for _, room := range filtered[startIdx:endIdx] {
			content.WriteString(formatRoomCard(room))
			content.WriteString("\n")

			keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData("🛏 "+room.Name, "room:"+room.ID),
			})
		}

		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("🔎 Filters", "filters"),
		})
		return content.String(), keyboard
	})
}

func (b *Bot) showRoomDetails(ctx context.Context, chatID int64, roomID string) {
	room, err := b.findRoom(ctx, roomID)
	if err != nil {
		b.handleBackendError(ctx, chatID, err)
		return
	}
	if room == nil {
		b.sendMessage(chatID, "Room not found. It may have been removed.")
		return
	}

	text := formatRoomCard(*room)
	if len(room.Images) > 0 {
		text += fmt.Sprintf("🖼 %d photo(s): %s\n", len(room.Images), room.Images[0])
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if room.Available {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Book this room", "book:"+room.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Back to rooms", "rooms_page:0"),
	))

	b.sendHTML(chatID, text, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) findRoom(ctx context.Context, roomID string) (*models.Room, error) {
	rooms, err := b.backend.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		if rooms[i].ID == roomID {
			return &rooms[i], nil
		}
	}
	return nil, nil
}

func (b *Bot) showFilterMenu(ctx context.Context, chatID int64) {
	rooms, err := b.backend.ListRooms(ctx)
	if err != nil {
		b.handleBackendError(ctx, chatID, err)
		return
	}

	filter := b.roomFilter(chatID)

	var rows [][]tgbotapi.InlineKeyboardButton
	var typeButtons []tgbotapi.InlineKeyboardButton
	for _, rt := range catalog.RoomTypes(rooms) {
		label := rt
		if filter.RoomType == rt {
			label = "• " + rt
		}
		typeButtons = append(typeButtons, tgbotapi.NewInlineKeyboardButtonData(label, "filter_type:"+rt))
	}
	if len(typeButtons) > 0 {
		rows = append(rows, typeButtons)
	}

	var bedButtons []tgbotapi.InlineKeyboardButton
	for _, bt := range catalog.BedTypes(rooms) {
		label := bt
		if filter.BedType == bt {
			label = "• " + bt
		}
		bedButtons = append(bedButtons, tgbotapi.NewInlineKeyboardButtonData(label, "filter_bed:"+bt))
	}
	if len(bedButtons) > 0 {
		rows = append(rows, bedButtons)
	}

	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏢 Floor", "filter_floor"),
			tgbotapi.NewInlineKeyboardButtonData("💲 Min price", "filter_min"),
			tgbotapi.NewInlineKeyboardButtonData("💲 Max price", "filter_max"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("♻️ Clear all", "filter_clear"),
			tgbotapi.NewInlineKeyboardButtonData("✅ Show rooms", "rooms_page:0"),
		),
	)

	b.sendHTML(chatID, "🔎 <b>Filters</b>\n\n"+describeFilter(filter), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func describeFilter(f catalog.RoomFilter) string {
	if f.IsZero() {
		return "No filters set. Everything is shown."
	}
	var parts []string
	if f.RoomType != "" {
		parts = append(parts, "type: "+f.RoomType)
	}
	if f.BedType != "" {
		parts = append(parts, "bed: "+f.BedType)
	}
	if f.FloorLevel != 0 {
		parts = append(parts, fmt.Sprintf("floor: %d", f.FloorLevel))
	}
	if f.MinPrice != 0 {
		parts = append(parts, "from $"+formatNumber(f.MinPrice))
	}
	if f.MaxPrice != 0 {
		parts = append(parts, "up to $"+formatNumber(f.MaxPrice))
	}
	return "Active: " + strings.Join(parts, ", ")
}

func (b *Bot) handleFilterStep(ctx context.Context, chatID int64, text string, state *models.FlowState) bool {
	text = strings.TrimSpace(text)

	switch state.Step {
	case stepFilterFloor:
		floor, err := strconv.Atoi(text)
		if err != nil || floor < 0 {
			b.sendMessage(chatID, "Enter the floor as a whole number, e.g. 2:")
			return true
		}
		b.updateRoomFilter(chatID, func(f *catalog.RoomFilter) { f.FloorLevel = floor })

	case stepFilterMinPrice:
		price, err := strconv.ParseFloat(text, 64)
		if err != nil || price < 0 {
			b.sendMessage(chatID, "Enter the minimum price per night, e.g. 50:")
			return true
		}
		b.updateRoomFilter(chatID, func(f *catalog.RoomFilter) { f.MinPrice = price })

	case stepFilterMaxPrice:
		price, err := strconv.ParseFloat(text, 64)
		if err != nil || price < 0 {
			b.sendMessage(chatID, "Enter the maximum price per night, e.g. 200:")
			return true
		}
		b.updateRoomFilter(chatID, func(f *catalog.RoomFilter) { f.MaxPrice = price })

	default:
		return false
	}

	if err := b.stateService.ClearFlowState(ctx, chatID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("Failed to clear flow state")
	}
	b.showRooms(ctx, chatID, 0, 0)
	return true
}
