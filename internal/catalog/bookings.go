package catalog

import (
	"sort"
	"strings"
	"time"

	"roomdesk/internal/models"
)

// Sort keys for the admin booking table.
const (
	SortByCreatedAt = "createdAt"
	SortByCheckIn   = "checkInDate"
	SortByTotalCost = "totalCost"
	SortByRoomName  = "roomName"
)

// BookingQuery narrows and orders the admin booking list. Zero values mean
// "not set". Search matches case-insensitive substrings over room name,
// user name, email and special requests.
type BookingQuery struct {
	Status      string
	Search      string
	CheckInFrom time.Time
	CheckInTo   time.Time
	SortKey     string
	SortDesc    bool
}

// Matches applies every set criterion of the query except ordering.
func (q BookingQuery) Matches(b models.Booking) bool {
	if q.Status != "" && b.Status != q.Status {
		return false
	}
	if !q.CheckInFrom.IsZero() && b.CheckInDate.Before(q.CheckInFrom) {
		return false
	}
	if !q.CheckInTo.IsZero() && b.CheckInDate.After(q.CheckInTo) {
		return false
	}
	if q.Search != "" && !matchesSearch(b, q.Search) {
		return false
	}
	return true
}

func matchesSearch(b models.Booking, term string) bool {
	term = strings.ToLower(term)
	for _, field := range []string{b.Room.Name, b.User.Username, b.User.Email, b.SpecialRequests} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// ApplyBookingQuery filters and sorts a copy of the list. The input slice
// is left untouched; equal keys keep their relative order.
func ApplyBookingQuery(bookings []models.Booking, q BookingQuery) []models.Booking {
	result := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if q.Matches(b) {
			result = append(result, b)
		}
	}

	if q.SortKey == "" {
		return result
	}

	sort.SliceStable(result, func(i, j int) bool {
		if q.SortDesc {
			return bookingLess(result[j], result[i], q.SortKey)
		}
		return bookingLess(result[i], result[j], q.SortKey)
	})
	return result
}

func bookingLess(a, b models.Booking, key string) bool {
	switch key {
	case SortByCheckIn:
		return a.CheckInDate.Before(b.CheckInDate)
	case SortByTotalCost:
		return a.TotalCost < b.TotalCost
	case SortByRoomName:
		return strings.ToLower(a.Room.Name) < strings.ToLower(b.Room.Name)
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

// Stats is the per-status breakdown shown above the admin list.
type Stats struct {
	Total     int
	Pending   int
	Confirmed int
	Cancelled int
	Rejected  int
}

func CountBookings(bookings []models.Booking) Stats {
	stats := Stats{Total: len(bookings)}
	for _, b := range bookings {
		switch b.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusConfirmed:
			stats.Confirmed++
		case models.StatusCancelled:
			stats.Cancelled++
		case models.StatusRejected:
			stats.Rejected++
		}
	}
	return stats
}

// RemoveBookingByID returns the list without the given booking. Used to
// patch the local view after a delete instead of re-fetching.
func RemoveBookingByID(bookings []models.Booking, id string) []models.Booking {
	out := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}

// CancelledBookings returns the subset eligible for bulk cleanup.
func CancelledBookings(bookings []models.Booking) []models.Booking {
	out := make([]models.Booking, 0)
	for _, b := range bookings {
		if b.Status == models.StatusCancelled {
			out = append(out, b)
		}
	}
	return out
}
