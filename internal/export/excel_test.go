package export

import (
	"io"
	"testing"
	"time"

	"roomdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteBookings(t *testing.T) {
	logger := zerolog.New(io.Discard)
	e := New(t.TempDir(), &logger)

	checkIn := time.Date(2026, time.May, 10, 14, 0, 0, 0, time.UTC)
	bookings := []models.Booking{
		{
			ID:              "bk-1",
			Room:            models.Room{Name: "Sea View"},
			User:            models.BookingUser{Username: "alice", Email: "alice@example.com"},
			CheckInDate:     checkIn,
			CheckOutDate:    checkIn.AddDate(0, 0, 3),
			DurationInDays:  3,
			TotalCost:       450,
			Status:          models.StatusConfirmed,
			Guests:          2,
			SpecialRequests: "late arrival",
			CreatedAt:       checkIn.AddDate(0, 0, -7),
		},
		{
			ID:              "bk-2",
			Room:            models.Room{Name: "Penthouse"},
			User:            models.BookingUser{Username: "bob", Email: "bob@example.com"},
			Status:          models.StatusRejected,
			RejectionReason: "dates unavailable",
		},
	}

	path, err := e.WriteBookings(bookings)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue("Bookings", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Sea View", got)

	got, _ = f.GetCellValue("Bookings", "I2")
	assert.Equal(t, models.StatusConfirmed, got)

	got, _ = f.GetCellValue("Bookings", "J3")
	assert.Equal(t, "dates unavailable", got)

	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	assert.Len(t, rows, 3) // header + two bookings
}

func TestWriteRooms(t *testing.T) {
	logger := zerolog.New(io.Discard)
	e := New(t.TempDir(), &logger)

	rooms := []models.Room{
		{ID: "r1", Name: "Garden View", RoomType: "standard", BedType: "queen", FloorLevel: 1, Capacity: 2, Price: 80, Available: true},
	}

	path, err := e.WriteRooms(rooms)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, _ := f.GetCellValue("Rooms", "B2")
	assert.Equal(t, "Garden View", got)
	got, _ = f.GetCellValue("Rooms", "H2")
	assert.Equal(t, "Yes", got)
}
