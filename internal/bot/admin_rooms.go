package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"roomdesk/internal/events"
	"roomdesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) showAdminRooms(ctx context.Context, chatID int64) {
	session := b.requireAdmin(ctx, chatID)
	if session == nil {
		return
	}

	rooms, err := b.backend.ListRooms(ctx)
	if err != nil {
		b.handleBackendError(ctx, chatID, err)
		return
	}

	var content strings.Builder
	content.WriteString(fmt.Sprintf("🛠 <b>Rooms</b> (%d)\n\n", len(rooms)))

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, room := range rooms {
		content.WriteString(formatRoomCard(room))
		content.WriteString("\n")
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ "+room.Name, "room_edit:"+room.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", "room_del:"+room.ID),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Add room", "room_new"),
		tgbotapi.NewInlineKeyboardButtonData("📤 Export", "rooms_export"),
	))

	b.sendHTML(chatID, content.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) startRoomForm(ctx context.Context, chatID int64, roomID string) {
	if b.requireAdmin(ctx, chatID) == nil {
		return
	}

	data := map[string]interface{}{"available": true}
	prompt := "➕ New room. Enter the room name:"

	if roomID != "" {
		room, err := b.findRoom(ctx, roomID)
		if err != nil {
			b.handleBackendError(ctx, chatID, err)
			return
		}
		if room == nil {
			b.sendMessage(chatID, "Room not found. It may have been removed.")
			return
		}
		data["edit_id"] = roomID
		data["name"] = room.Name
		data["description"] = room.Description
		data["price"] = room.Price
		data["room_type"] = room.RoomType
		data["capacity"] = room.Capacity
		data["bed_type"] = room.BedType
		data["floor"] = room.FloorLevel
		data["images"] = strings.Join(room.Images, ", ")
		data["amenities"] = strings.Join(room.Amenities, ", ")
		data["available"] = room.Available
		prompt = fmt.Sprintf("✏️ Editing <%s>. Send - at any step to keep the current value.\n\nRoom name [%s]:", room.Name, room.Name)
	}

	b.setStep(ctx, chatID, stepRoomName, data)
	b.sendMessage(chatID, prompt)
}

// handleRoomFormStep walks the guided room form one field per message.
// Sending - keeps the stored value (empty for a new room).
func (b *Bot) handleRoomFormStep(ctx context.Context, chatID int64, text string, state *models.FlowState) bool {
	text = strings.TrimSpace(text)
	if state.Data == nil {
		state.Data = make(map[string]interface{})
	}
	keep := text == "-"

	advance := func(next, prompt string) {
		b.setStep(ctx, chatID, next, state.Data)
		b.sendMessage(chatID, prompt)
	}

	switch state.Step {
	case stepRoomName:
		if !keep {
			if text == "" {
				b.sendMessage(chatID, "Name cannot be empty. Try again:")
				return true
			}
			state.Data["name"] = text
		}
		if state.GetString("name") == "" {
			b.sendMessage(chatID, "Name is required. Enter the room name:")
			return true
		}
		advance(stepRoomDescription, "Description:")

	case stepRoomDescription:
		if !keep {
			state.Data["description"] = text
		}
		advance(stepRoomPrice, "Price per night, e.g. 120:")

	case stepRoomPrice:
		if !keep {
			price, err := strconv.ParseFloat(text, 64)
			if err != nil || price <= 0 {
				b.sendMessage(chatID, "Enter the price as a positive number:")
				return true
			}
			state.Data["price"] = price
		}
		if state.GetFloat("price") <= 0 {
			b.sendMessage(chatID, "Price is required. Enter the price per night:")
			return true
		}
		advance(stepRoomType, "Room type (standard, deluxe, suite, ...):")

	case stepRoomType:
		if !keep {
			state.Data["room_type"] = text
		}
		advance(stepRoomCapacity, "Capacity (number of guests):")

	case stepRoomCapacity:
		if !keep {
			capacity, err := strconv.Atoi(text)
			if err != nil || capacity < 1 {
				b.sendMessage(chatID, "Enter the capacity as a whole number:")
				return true
			}
			state.Data["capacity"] = capacity
		}
		advance(stepRoomBed, "Bed type (single, queen, king, ...):")

	case stepRoomBed:
		if !keep {
			state.Data["bed_type"] = text
		}
		advance(stepRoomFloor, "Floor level:")

	case stepRoomFloor:
		if !keep {
			floor, err := strconv.Atoi(text)
			if err != nil {
				b.sendMessage(chatID, "Enter the floor as a whole number:")
				return true
			}
			state.Data["floor"] = floor
		}
		advance(stepRoomImages, "Image URLs, comma-separated (or -):")

	case stepRoomImages:
		if !keep {
			state.Data["images"] = text
		}
		advance(stepRoomAmenities, "Amenities, comma-separated (or -):")

	case stepRoomAmenities:
		if !keep {
			state.Data["amenities"] = text
		}
		advance(stepRoomAvailable, "Available for booking? (yes/no):")

	case stepRoomAvailable:
		if !keep {
			switch strings.ToLower(text) {
			case "yes", "y":
				state.Data["available"] = true
			case "no", "n":
				state.Data["available"] = false
			default:
				b.sendMessage(chatID, "Answer yes or no (or - to keep the current value):")
				return true
			}
		}
		b.submitRoomForm(ctx, chatID, state)

	default:
		return false
	}
	return true
}

func (b *Bot) submitRoomForm(ctx context.Context, chatID int64, state *models.FlowState) {
	editID := state.GetString("edit_id")
	input := models.RoomInput{
		Name:        state.GetString("name"),
		Description: state.GetString("description"),
		Price:       state.GetFloat("price"),
		RoomType:    state.GetString("room_type"),
		Capacity:    state.GetInt("capacity"),
		BedType:     state.GetString("bed_type"),
		FloorLevel:  state.GetInt("floor"),
		Images:      splitList(state.GetString("images")),
		Amenities:   splitList(state.GetString("amenities")),
		Available:   state.GetBool("available"),
	}
	b.clearFlow(ctx, chatID)

	session := b.requireAdmin(ctx, chatID)
	if session == nil {
		return
	}

	var (
		room *models.Room
		err  error
	)
	if editID != "" {
		room, err = b.backend.UpdateRoom(ctx, session.Token, editID, input)
	} else {
		room, err = b.backend.CreateRoom(ctx, session.Token, input)
	}
	if err != nil {
		b.handleBackendError(ctx, chatID, err)
		return
	}

	eventType := events.EventRoomCreated
	verb := "created"
	if editID != "" {
		eventType = events.EventRoomUpdated
		verb = "updated"
	}
	if perr := b.eventBus.PublishJSON(eventType, events.RoomEventPayload{
		RoomID:    room.ID,
		RoomName:  room.Name,
		ChangedBy: session.Username,
	}); perr != nil {
		zerolog.Ctx(ctx).Error().Err(perr).Str("room_id", room.ID).Msg("Failed to publish room event")
	}

	b.sendMessage(chatID, fmt.Sprintf("✅ Room <%s> %s.", room.Name, verb))
	b.showAdminRooms(ctx, chatID)
}

func (b *Bot) confirmRoomDelete(chatID int64, roomID string) {
	b.sendHTML(chatID, "Delete this room? Existing bookings keep their own copy of the data.",
		confirmKeyboard("room_del_yes:"+roomID, "rooms_admin"))
}

func (b *Bot) handleRoomDelete(ctx context.Context, chatID int64, roomID string) {
	session := b.requireAdmin(ctx, chatID)
	if session == nil {
		return
	}

	if err := b.backend.DeleteRoom(ctx, session.Token, roomID); err != nil {
		b.handleBackendError(ctx, chatID, err)
		return
	}

	if perr := b.eventBus.PublishJSON(events.EventRoomDeleted, events.RoomEventPayload{
		RoomID:    roomID,
		ChangedBy: session.Username,
	}); perr != nil {
		zerolog.Ctx(ctx).Error().Err(perr).Str("room_id", roomID).Msg("Failed to publish room event")
	}

	b.sendMessage(chatID, "🗑 Room deleted.")
	b.showAdminRooms(ctx, chatID)
}

func (b *Bot) handleRoomsExport(ctx context.Context, chatID int64) {
	if b.requireAdmin(ctx, chatID) == nil {
		return
	}

	rooms, err := b.backend.ListRooms(ctx)
	if err != nil {
		b.handleBackendError(ctx, chatID, err)
		return
	}
	if len(rooms) == 0 {
		b.sendMessage(chatID, "Nothing to export.")
		return
	}

	path, err := b.exporter.WriteRooms(rooms)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Rooms export failed")
		b.sendMessage(chatID, "❌ Export failed: "+err.Error())
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("📤 %d room(s)", len(rooms))
	if _, err := b.tgService.Send(doc); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to send export file")
	}
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
