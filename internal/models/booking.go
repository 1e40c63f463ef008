package models

import "time"

// BookingUser is the user snapshot the backend embeds into a booking.
type BookingUser struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Booking ties a user to a room and a date range. durationInDays and
// totalCost are computed by the backend and rendered verbatim; status
// transitions are backend-authoritative.
type Booking struct {
	ID              string      `json:"_id"`
	Room            Room        `json:"room"`
	User            BookingUser `json:"user"`
	CheckInDate     time.Time   `json:"checkInDate"`
	CheckOutDate    time.Time   `json:"checkOutDate"`
	DurationInDays  float64     `json:"durationInDays"`
	TotalCost       float64     `json:"totalCost"`
	Status          string      `json:"status"`
	RejectionReason string      `json:"rejectionReason,omitempty"`
	Guests          int         `json:"guests"`
	SpecialRequests string      `json:"specialRequests"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// Quote is the server-computed preview of a booking's duration and cost.
type Quote struct {
	DurationInDays float64 `json:"durationInDays"`
	TotalCost      float64 `json:"totalCost"`
}

// BookingRequest is the payload for booking creation and quote calls.
type BookingRequest struct {
	RoomID          string    `json:"roomId"`
	CheckInDate     time.Time `json:"checkInDate"`
	CheckOutDate    time.Time `json:"checkOutDate"`
	Guests          int       `json:"guests,omitempty"`
	SpecialRequests string    `json:"specialRequests,omitempty"`
}
