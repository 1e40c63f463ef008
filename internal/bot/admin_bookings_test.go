package bot

import (
	"context"
	"sync/atomic"
	"testing"

	"roomdesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleApproveRefetchesBookings(t *testing.T) {
	var approved []string
	var fetches int32
	backend := &stubBackend{
		approve: func(_ context.Context, token, bookingID string) error {
			assert.Equal(t, "tok", token)
			approved = append(approved, bookingID)
			return nil
		},
		allBookings: func(context.Context, string) ([]models.Booking, error) {
			atomic.AddInt32(&fetches, 1)
			return []models.Booking{{ID: "b1", Status: models.StatusConfirmed}}, nil
		},
	}
	b, _, _ := newHandlerBot(t, backend, adminSession(9))

	b.handleApprove(context.Background(), 9, "b1")

	assert.Equal(t, []string{"b1"}, approved)
	// The list shown after approval comes from the server, not the cache.
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))
}

func TestRejectDashMeansNoReason(t *testing.T) {
	type rejection struct{ bookingID, reason string }
	var rejected []rejection
	var fetches int32
	backend := &stubBackend{
		reject: func(_ context.Context, _, bookingID, reason string) error {
			rejected = append(rejected, rejection{bookingID, reason})
			return nil
		},
		allBookings: func(context.Context, string) ([]models.Booking, error) {
			atomic.AddInt32(&fetches, 1)
			return nil, nil
		},
	}
	b, _, states := newHandlerBot(t, backend, adminSession(9))
	ctx := context.Background()

	b.startReject(ctx, 9, "b2")

	state, err := states.GetFlowState(ctx, 9)
	require.NoError(t, err)
	require.Equal(t, stepRejectReason, state.Step)
	require.True(t, b.handleAdminStep(ctx, 9, "-", state))

	require.Equal(t, []rejection{{"b2", ""}}, rejected)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))

	state, err = states.GetFlowState(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestCancelAbandonsRejectPrompt(t *testing.T) {
	var rejects int32
	backend := &stubBackend{
		reject: func(context.Context, string, string, string) error {
			atomic.AddInt32(&rejects, 1)
			return nil
		},
	}
	b, _, states := newHandlerBot(t, backend, adminSession(9))
	ctx := context.Background()

	b.startReject(ctx, 9, "b3")

	b.handleMessage(ctx, tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "/cancel",
		From: &tgbotapi.User{ID: 9},
		Chat: &tgbotapi.Chat{ID: 9},
	}})

	// Backing out must leave the booking untouched and the flow clean.
	assert.Zero(t, atomic.LoadInt32(&rejects))
	state, err := states.GetFlowState(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, state)
}
