package bot

import (
	"context"
	"testing"
	"time"

	"roomdesk/internal/flow"
	"roomdesk/internal/metrics"
	"roomdesk/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guestSession(chatID int64) *models.Session {
	return &models.Session{ChatID: chatID, Username: "guest", Token: "tok"}
}

func TestBookingDatesCarryStayTimes(t *testing.T) {
	quoted := make(chan models.BookingRequest, 1)
	backend := &stubBackend{
		listRooms: func(context.Context) ([]models.Room, error) {
			return []models.Room{{ID: "r1", Name: "Sea View", Price: 100, Available: true}}, nil
		},
		calc: func(_ context.Context, token string, req models.BookingRequest) (*models.Quote, error) {
			assert.Equal(t, "tok", token)
			quoted <- req
			return &models.Quote{TotalCost: 300, DurationInDays: 3}, nil
		},
	}
	b, _, states := newHandlerBot(t, backend, guestSession(7))
	ctx := context.Background()

	b.startBookingDialog(ctx, 7, "r1")

	state, err := states.GetFlowState(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, state)
	require.Equal(t, stepBookCheckIn, state.Step)
	require.True(t, b.handleBookingStep(ctx, 7, "25.12.2026", state))

	state, err = states.GetFlowState(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, stepBookCheckOut, state.Step)
	require.True(t, b.handleBookingStep(ctx, 7, "28.12.2026", state))

	// The pricing request fires after the debounce; the dialog promises
	// 14:00 check-in and 11:00 check-out and the backend must see exactly
	// those timestamps, not midnight.
	select {
	case req := <-quoted:
		assert.True(t, req.CheckInDate.Equal(time.Date(2026, 12, 25, 14, 0, 0, 0, time.UTC)),
			"check-in sent as %s", req.CheckInDate)
		assert.True(t, req.CheckOutDate.Equal(time.Date(2026, 12, 28, 11, 0, 0, 0, time.UTC)),
			"check-out sent as %s", req.CheckOutDate)
	case <-time.After(2 * time.Second):
		t.Fatal("quote request never reached the backend")
	}
}

func TestBookingRejectsCheckOutBeforeCheckIn(t *testing.T) {
	backend := &stubBackend{
		listRooms: func(context.Context) ([]models.Room, error) {
			return []models.Room{{ID: "r1", Name: "Sea View", Price: 100, Available: true}}, nil
		},
	}
	b, _, states := newHandlerBot(t, backend, guestSession(7))
	ctx := context.Background()

	b.startBookingDialog(ctx, 7, "r1")

	state, err := states.GetFlowState(ctx, 7)
	require.NoError(t, err)
	require.True(t, b.handleBookingStep(ctx, 7, "28.12.2026", state))

	state, err = states.GetFlowState(ctx, 7)
	require.NoError(t, err)
	require.True(t, b.handleBookingStep(ctx, 7, "25.12.2026", state))

	// Still waiting for a valid check-out date.
	state, err = states.GetFlowState(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, stepBookCheckOut, state.Step)
}

func TestSubmitErrorCountsFailedCreate(t *testing.T) {
	metrics.Register()
	before := bookingActionCount(t, "create", "error")

	b, _, _ := newHandlerBot(t, &stubBackend{}, guestSession(7))
	b.renderFlowSnapshot(7, "Sea View", flow.Snapshot{
		State:        flow.StateSubmitError,
		ErrorMessage: "room already booked",
	})

	assert.Equal(t, before+1, bookingActionCount(t, "create", "error"))
}

// bookingActionCount reads one cell of the booking actions counter from
// the default registry.
func bookingActionCount(t *testing.T, action, outcome string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "roomdesk_booking_actions_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			labels := make(map[string]string)
			for _, pair := range m.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["action"] == action && labels["outcome"] == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}
