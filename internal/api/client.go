package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"roomdesk/internal/config"
	"roomdesk/internal/metrics"
	"roomdesk/internal/models"

	"golang.org/x/time/rate"
)

// Client is the single gateway to the booking backend. One base URL, JSON
// envelope, bearer token when the caller has one, exactly one attempt per
// call. Failures surface as *Error carrying the server message.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New constructs a client from backend config. The limiter paces outgoing
// calls so list refreshes and bulk deletes cannot stampede the backend.
func New(cfg config.BackendConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateRPS), cfg.RateBurst),
	}
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		IsAdmin  bool   `json:"isAdmin"`
	} `json:"user"`
}

// Login exchanges credentials for a bearer token plus display attributes.
func (c *Client) Login(ctx context.Context, username, password string) (*models.Session, error) {
	body := map[string]string{"username": username, "password": password}
	var resp loginResponse
	if err := c.call(ctx, http.MethodPost, "users/login", "", body, &resp); err != nil {
		return nil, err
	}

	now := time.Now()
	return &models.Session{
		Username:  resp.User.Username,
		Email:     resp.User.Email,
		IsAdmin:   resp.User.IsAdmin,
		Token:     resp.Token,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.call(ctx, http.MethodPost, "users/register", "", body, nil)
}

func (c *Client) Profile(ctx context.Context, token string) (*models.BookingUser, error) {
	var profile models.BookingUser
	if err := c.call(ctx, http.MethodGet, "users/profile", token, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListRooms is public; no token required.
func (c *Client) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := c.call(ctx, http.MethodGet, "rooms", "", nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *Client) CreateRoom(ctx context.Context, token string, in models.RoomInput) (*models.Room, error) {
	in.CompactEntries()
	var room models.Room
	if err := c.call(ctx, http.MethodPost, "rooms", token, in, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *Client) UpdateRoom(ctx context.Context, token, roomID string, in models.RoomInput) (*models.Room, error) {
	in.CompactEntries()
	var room models.Room
	if err := c.call(ctx, http.MethodPut, "rooms/"+url.PathEscape(roomID), token, in, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *Client) DeleteRoom(ctx context.Context, token, roomID string) error {
	return c.call(ctx, http.MethodDelete, "rooms/"+url.PathEscape(roomID), token, nil, nil)
}

func (c *Client) UserBookings(ctx context.Context, token string) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := c.call(ctx, http.MethodGet, "bookings/user", token, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// AllBookings requires an admin token.
func (c *Client) AllBookings(ctx context.Context, token string) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := c.call(ctx, http.MethodGet, "bookings/all", token, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) CreateBooking(ctx context.Context, token string, req models.BookingRequest) (*models.Booking, error) {
	var booking models.Booking
	if err := c.call(ctx, http.MethodPost, "bookings", token, req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// CalculateQuote asks the backend to price a prospective booking. The
// returned duration and cost are authoritative; callers must not recompute
// them client-side.
func (c *Client) CalculateQuote(ctx context.Context, token string, req models.BookingRequest) (*models.Quote, error) {
	var quote models.Quote
	if err := c.call(ctx, http.MethodPost, "bookings/calculate", token, req, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (c *Client) ApproveBooking(ctx context.Context, token, bookingID string) error {
	return c.call(ctx, http.MethodPut, "bookings/approve/"+url.PathEscape(bookingID), token, nil, nil)
}

func (c *Client) RejectBooking(ctx context.Context, token, bookingID, reason string) error {
	body := map[string]string{"rejectionReason": reason}
	return c.call(ctx, http.MethodPut, "bookings/reject/"+url.PathEscape(bookingID), token, body, nil)
}

// CancelBooking is the privileged (admin) cancel of a confirmed booking.
func (c *Client) CancelBooking(ctx context.Context, token, bookingID string) error {
	return c.call(ctx, http.MethodPut, "bookings/cancel/"+url.PathEscape(bookingID), token, nil, nil)
}

// CancelOwnBooking is the self-service cancel of a pending booking.
// The backend exposes both route shapes; the client keeps the split the
// original frontend used.
func (c *Client) CancelOwnBooking(ctx context.Context, token, bookingID string) error {
	return c.call(ctx, http.MethodPut, "bookings/"+url.PathEscape(bookingID)+"/cancel", token, nil, nil)
}

func (c *Client) DeleteBooking(ctx context.Context, token, bookingID string) error {
	return c.call(ctx, http.MethodDelete, "bookings/delete/"+url.PathEscape(bookingID), token, nil, nil)
}

// RemoveBooking is the short-form delete route used by bulk cleanup.
func (c *Client) RemoveBooking(ctx context.Context, token, bookingID string) error {
	return c.call(ctx, http.MethodDelete, "bookings/"+url.PathEscape(bookingID), token, nil, nil)
}

func (c *Client) call(ctx context.Context, method, endpoint, token string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/"+endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveBackendCall(endpoint, method, "transport_error", time.Since(start))
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.ObserveBackendCall(endpoint, method, fmt.Sprintf("%d", resp.StatusCode), time.Since(start))

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var envelope struct {
		Message string `json:"message"`
	}
	message := fallbackMessage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Message != "" {
		message = envelope.Message
	}
	return &Error{Status: resp.StatusCode, Message: message}
}
