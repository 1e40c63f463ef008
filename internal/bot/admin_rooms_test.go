package bot

import (
	"context"
	"testing"

	"roomdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminSession(chatID int64) *models.Session {
	return &models.Session{ChatID: chatID, Username: "boss", IsAdmin: true, Token: "tok"}
}

// driveFormStep feeds one message through the room form, refetching the
// flow state the way a real message round-trip does.
func driveFormStep(t *testing.T, b *Bot, states *stubStates, chatID int64, text string) {
	t.Helper()
	state, err := states.GetFlowState(context.Background(), chatID)
	require.NoError(t, err)
	require.NotNil(t, state)
	require.True(t, b.handleRoomFormStep(context.Background(), chatID, text, state))
}

func TestRoomFormCreateMarksUnavailable(t *testing.T) {
	var created *models.RoomInput
	backend := &stubBackend{
		listRooms: func(context.Context) ([]models.Room, error) { return nil, nil },
		createRoom: func(_ context.Context, token string, in models.RoomInput) (*models.Room, error) {
			assert.Equal(t, "tok", token)
			created = &in
			return &models.Room{ID: "new", Name: in.Name}, nil
		},
	}
	b, _, states := newHandlerBot(t, backend, adminSession(7))
	ctx := context.Background()

	b.startRoomForm(ctx, 7, "")
	for _, text := range []string{"Ocean Loft", "-", "150", "suite", "3", "king", "2", "-", "wifi, minibar"} {
		driveFormStep(t, b, states, 7, text)
	}

	// An answer that is neither yes nor no keeps the form on this step.
	driveFormStep(t, b, states, 7, "maybe")
	require.Nil(t, created)

	driveFormStep(t, b, states, 7, "no")
	require.NotNil(t, created)
	assert.Equal(t, "Ocean Loft", created.Name)
	assert.Equal(t, 150.0, created.Price)
	assert.False(t, created.Available)
}

func TestRoomFormCreateDefaultsToAvailable(t *testing.T) {
	var created *models.RoomInput
	backend := &stubBackend{
		listRooms: func(context.Context) ([]models.Room, error) { return nil, nil },
		createRoom: func(_ context.Context, _ string, in models.RoomInput) (*models.Room, error) {
			created = &in
			return &models.Room{ID: "new", Name: in.Name}, nil
		},
	}
	b, _, states := newHandlerBot(t, backend, adminSession(7))
	ctx := context.Background()

	b.startRoomForm(ctx, 7, "")
	for _, text := range []string{"Attic Single", "-", "60", "-", "-", "-", "-", "-", "-", "-"} {
		driveFormStep(t, b, states, 7, text)
	}

	require.NotNil(t, created)
	assert.True(t, created.Available)
}

func TestRoomFormEditKeepsUnavailable(t *testing.T) {
	room := models.Room{
		ID: "r1", Name: "Garden Twin", Description: "quiet side",
		Price: 95, RoomType: "standard", Capacity: 2, BedType: "twin",
		FloorLevel: 3, Images: []string{"a.jpg"}, Amenities: []string{"wifi"},
		Available: false,
	}

	var updated *models.RoomInput
	backend := &stubBackend{
		listRooms: func(context.Context) ([]models.Room, error) { return []models.Room{room}, nil },
		updateRoom: func(_ context.Context, _, roomID string, in models.RoomInput) (*models.Room, error) {
			assert.Equal(t, "r1", roomID)
			updated = &in
			return &models.Room{ID: "r1", Name: in.Name}, nil
		},
	}
	b, _, states := newHandlerBot(t, backend, adminSession(7))
	ctx := context.Background()

	b.startRoomForm(ctx, 7, "r1")
	for i := 0; i < 10; i++ {
		driveFormStep(t, b, states, 7, "-")
	}

	// Keeping every field must not quietly flip the room back on.
	require.NotNil(t, updated)
	assert.False(t, updated.Available)
	assert.Equal(t, "Garden Twin", updated.Name)
	assert.Equal(t, 95.0, updated.Price)
	assert.Equal(t, []string{"a.jpg"}, updated.Images)
	assert.Equal(t, []string{"wifi"}, updated.Amenities)
}

func TestRoomFormEditReEnables(t *testing.T) {
	room := models.Room{ID: "r1", Name: "Garden Twin", Price: 95, Available: false}

	var updated *models.RoomInput
	backend := &stubBackend{
		listRooms: func(context.Context) ([]models.Room, error) { return []models.Room{room}, nil },
		updateRoom: func(_ context.Context, _, _ string, in models.RoomInput) (*models.Room, error) {
			updated = &in
			return &models.Room{ID: "r1", Name: in.Name}, nil
		},
	}
	b, _, states := newHandlerBot(t, backend, adminSession(7))
	ctx := context.Background()

	b.startRoomForm(ctx, 7, "r1")
	for i := 0; i < 9; i++ {
		driveFormStep(t, b, states, 7, "-")
	}
	driveFormStep(t, b, states, 7, "yes")

	require.NotNil(t, updated)
	assert.True(t, updated.Available)
}
