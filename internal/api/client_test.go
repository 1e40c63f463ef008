package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roomdesk/internal/config"
	"roomdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return New(config.BackendConfig{
		BaseURL:        url,
		TimeoutSeconds: 5,
		RateRPS:        1000,
		RateBurst:      100,
	})
}

func TestLogin(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/users/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "jwt-token",
			"user": map[string]interface{}{
				"username": "alice",
				"email":    "alice@example.com",
				"isAdmin":  true,
			},
		})
	}))
	defer server.Close()

	session, err := newTestClient(server.URL).Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "secret", gotBody["password"])
	assert.Equal(t, "jwt-token", session.Token)
	assert.Equal(t, "alice", session.Username)
	assert.True(t, session.IsAdmin)
}

func TestBearerTokenHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]models.Booking{})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).UserBookings(context.Background(), "tok-123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestListRoomsNoToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]models.Room{{ID: "r1", Name: "Sea View", Price: 150}})
	}))
	defer server.Close()

	rooms, err := newTestClient(server.URL).ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "r1", rooms[0].ID)
	assert.Equal(t, 150.0, rooms[0].Price)
}

func TestServerErrorMessageSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "Room is not available for the selected dates"})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CalculateQuote(context.Background(), "tok", models.BookingRequest{RoomID: "r1"})
	require.Error(t, err)
	assert.Equal(t, "Room is not available for the selected dates", err.Error())
	assert.True(t, IsStatus(err, http.StatusBadRequest))
}

func TestFallbackErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	err := newTestClient(server.URL).DeleteBooking(context.Background(), "tok", "b1")
	require.Error(t, err)
	assert.Equal(t, "Something went wrong", err.Error())
}

func TestQuoteValuesVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/bookings/calculate", r.URL.Path)
		// Fractional values must be passed through untouched.
		json.NewEncoder(w).Encode(map[string]float64{
			"durationInDays": 2.5,
			"totalCost":      387.5,
		})
	}))
	defer server.Close()

	quote, err := newTestClient(server.URL).CalculateQuote(context.Background(), "tok", models.BookingRequest{RoomID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, 2.5, quote.DurationInDays)
	assert.Equal(t, 387.5, quote.TotalCost)
}

func TestBookingRoutes(t *testing.T) {
	type call struct{ method, path string }
	var calls []call
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path})
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	ctx := context.Background()

	require.NoError(t, c.ApproveBooking(ctx, "tok", "b1"))
	require.NoError(t, c.RejectBooking(ctx, "tok", "b1", "no rooms"))
	require.NoError(t, c.CancelBooking(ctx, "tok", "b1"))
	require.NoError(t, c.CancelOwnBooking(ctx, "tok", "b1"))
	require.NoError(t, c.DeleteBooking(ctx, "tok", "b1"))
	require.NoError(t, c.RemoveBooking(ctx, "tok", "b1"))

	assert.Equal(t, []call{
		{http.MethodPut, "/api/bookings/approve/b1"},
		{http.MethodPut, "/api/bookings/reject/b1"},
		{http.MethodPut, "/api/bookings/cancel/b1"},
		{http.MethodPut, "/api/bookings/b1/cancel"},
		{http.MethodDelete, "/api/bookings/delete/b1"},
		{http.MethodDelete, "/api/bookings/b1"},
	}, calls)
}

func TestRejectBookingSendsReason(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	require.NoError(t, newTestClient(server.URL).RejectBooking(context.Background(), "tok", "b1", "overbooked"))
	assert.Equal(t, "overbooked", gotBody["rejectionReason"])
}

func TestCreateRoomCompactsEmptyEntries(t *testing.T) {
	var gotBody models.RoomInput
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(models.Room{ID: "r9"})
	}))
	defer server.Close()

	input := models.RoomInput{
		Name:      "New Room",
		Images:    []string{"http://a.jpg", "", "  ", "http://b.jpg"},
		Amenities: []string{"wifi", ""},
	}
	room, err := newTestClient(server.URL).CreateRoom(context.Background(), "tok", input)
	require.NoError(t, err)
	assert.Equal(t, "r9", room.ID)
	assert.Equal(t, []string{"http://a.jpg", "http://b.jpg"}, gotBody.Images)
	assert.Equal(t, []string{"wifi"}, gotBody.Amenities)
}

func TestRequestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.ListRooms(ctx)
	assert.Error(t, err)
}
