package catalog

import (
	"roomdesk/internal/models"
)

// RoomFilter narrows the room list. Zero values mean "not set": empty
// strings for the categorical fields, 0 for floor and both price bounds.
// All set criteria must match at once.
type RoomFilter struct {
	RoomType   string
	BedType    string
	FloorLevel int
	MinPrice   float64
	MaxPrice   float64
}

// IsZero reports whether no criterion is set.
func (f RoomFilter) IsZero() bool {
	return f.RoomType == "" && f.BedType == "" && f.FloorLevel == 0 &&
		f.MinPrice == 0 && f.MaxPrice == 0
}

// Matches applies every set criterion. Price bounds are inclusive.
func (f RoomFilter) Matches(room models.Room) bool {
	if f.RoomType != "" && room.RoomType != f.RoomType {
		return false
	}
	if f.BedType != "" && room.BedType != f.BedType {
		return false
	}
	if f.FloorLevel != 0 && room.FloorLevel != f.FloorLevel {
		return false
	}
	if f.MinPrice != 0 && room.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice != 0 && room.Price > f.MaxPrice {
		return false
	}
	return true
}

// FilterRooms returns the rooms that satisfy the filter, preserving the
// order the backend returned them in.
func FilterRooms(rooms []models.Room, filter RoomFilter) []models.Room {
	if filter.IsZero() {
		return rooms
	}
	filtered := make([]models.Room, 0, len(rooms))
	for _, room := range rooms {
		if filter.Matches(room) {
			filtered = append(filtered, room)
		}
	}
	return filtered
}

// RoomTypes collects the distinct room types present in the list, in
// first-seen order, for building filter keyboards.
func RoomTypes(rooms []models.Room) []string {
	return distinct(rooms, func(r models.Room) string { return r.RoomType })
}

// BedTypes collects the distinct bed types present in the list.
func BedTypes(rooms []models.Room) []string {
	return distinct(rooms, func(r models.Room) string { return r.BedType })
}

func distinct(rooms []models.Room, key func(models.Room) string) []string {
	seen := make(map[string]bool, len(rooms))
	var out []string
	for _, room := range rooms {
		k := key(room)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
