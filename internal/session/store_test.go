package session

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"roomdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := zerolog.New(io.Discard)
	store, err := NewStore(filepath.Join(t.TempDir(), "sessions.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSessionStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		got, err := store.Get(ctx, 42)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("PutAndGet", func(t *testing.T) {
		session := &models.Session{
			ChatID:   42,
			Username: "alice",
			Email:    "alice@example.com",
			IsAdmin:  false,
			Token:    "tok-1",
		}
		require.NoError(t, store.Put(ctx, session))

		got, err := store.Get(ctx, 42)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, "alice@example.com", got.Email)
		assert.Equal(t, "tok-1", got.Token)
		assert.False(t, got.IsAdmin)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("PutOverwritesToken", func(t *testing.T) {
		session := &models.Session{ChatID: 42, Username: "alice", Token: "tok-2", IsAdmin: true}
		require.NoError(t, store.Put(ctx, session))

		got, err := store.Get(ctx, 42)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "tok-2", got.Token)
		assert.True(t, got.IsAdmin)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, 42))

		got, err := store.Get(ctx, 42)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("PutWithoutChatID", func(t *testing.T) {
		err := store.Put(ctx, &models.Session{Username: "nobody", Token: "x"})
		assert.Error(t, err)
	})

	t.Run("SurvivesReopen", func(t *testing.T) {
		logger := zerolog.New(io.Discard)
		path := filepath.Join(t.TempDir(), "sessions.db")

		first, err := NewStore(path, &logger)
		require.NoError(t, err)
		require.NoError(t, first.Put(ctx, &models.Session{ChatID: 7, Username: "bob", Token: "tok"}))
		require.NoError(t, first.Close())

		second, err := NewStore(path, &logger)
		require.NoError(t, err)
		defer second.Close()

		got, err := second.Get(ctx, 7)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "bob", got.Username)
	})
}
