package models

import "time"

// Session is the client-held proof of authentication against the booking
// backend plus display attributes. One per chat user, persisted durably so
// a restart does not log anyone out. The token stays valid until the
// backend rejects it; there is no client-side expiry.
type Session struct {
	ChatID    int64     `json:"chat_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
