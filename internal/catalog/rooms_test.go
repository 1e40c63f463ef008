package catalog

import (
	"testing"

	"roomdesk/internal/models"

	"github.com/stretchr/testify/assert"
)

func sampleRooms() []models.Room {
	return []models.Room{
		{ID: "r1", Name: "Garden View", RoomType: "standard", BedType: "queen", FloorLevel: 1, Price: 80},
		{ID: "r2", Name: "Sea View", RoomType: "deluxe", BedType: "king", FloorLevel: 3, Price: 150},
		{ID: "r3", Name: "Penthouse", RoomType: "suite", BedType: "king", FloorLevel: 5, Price: 400},
		{ID: "r4", Name: "Courtyard", RoomType: "standard", BedType: "twin", FloorLevel: 1, Price: 60},
	}
}

func TestFilterRooms(t *testing.T) {
	rooms := sampleRooms()

	tests := []struct {
		name   string
		filter RoomFilter
		want   []string
	}{
		{"NoFilter", RoomFilter{}, []string{"r1", "r2", "r3", "r4"}},
		{"RoomType", RoomFilter{RoomType: "standard"}, []string{"r1", "r4"}},
		{"BedType", RoomFilter{BedType: "king"}, []string{"r2", "r3"}},
		{"Floor", RoomFilter{FloorLevel: 1}, []string{"r1", "r4"}},
		{"MinPriceInclusive", RoomFilter{MinPrice: 150}, []string{"r2", "r3"}},
		{"MaxPriceInclusive", RoomFilter{MaxPrice: 80}, []string{"r1", "r4"}},
		{"PriceBand", RoomFilter{MinPrice: 70, MaxPrice: 200}, []string{"r1", "r2"}},
		{"Combined", RoomFilter{RoomType: "standard", FloorLevel: 1, MaxPrice: 70}, []string{"r4"}},
		{"NoMatch", RoomFilter{RoomType: "deluxe", BedType: "twin"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterRooms(rooms, tt.filter)
			var ids []string
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFilterRoomsPreservesOrder(t *testing.T) {
	rooms := sampleRooms()
	got := FilterRooms(rooms, RoomFilter{FloorLevel: 1})
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, "r4", got[1].ID)
}

func TestDistinctValues(t *testing.T) {
	rooms := sampleRooms()
	assert.Equal(t, []string{"standard", "deluxe", "suite"}, RoomTypes(rooms))
	assert.Equal(t, []string{"queen", "king", "twin"}, BedTypes(rooms))
}
