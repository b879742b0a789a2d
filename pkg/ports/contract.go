package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractRecord(id string) *domain.Record {
	state := domain.NewState()
	state.Position = domain.Point{X: 12.5, Y: -3}
	state.Heading = 270
	state.StrokeColor = domain.RGB(255, 0, 0)
	state.FillColor = domain.Named("#00ff00")
	state.PenWidth = 3

	font := domain.DefaultFont()
	return &domain.Record{
		ID:     id,
		Canvas: domain.Canvas{Width: 640, Height: 480, Fixed: true},
		State:  state,
		NextID: 3,
		Commands: []domain.Command{
			{ID: 1, Type: domain.CommandReset, Snapshot: domain.NewState().Snapshot()},
			{ID: 2, Type: domain.CommandLine, Distance: 12.5, Snapshot: domain.NewState().Snapshot()},
			{ID: 3, Type: domain.CommandWrite, Text: "hi", Align: "left", Font: &font, Snapshot: state.Snapshot()},
		},
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		rec := contractRecord(sessionID)

		err := store.Save(ctx, rec)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, rec.ID, loaded.ID)
		assert.Equal(t, rec.Canvas, loaded.Canvas)
		assert.Equal(t, rec.State, loaded.State)
		assert.Equal(t, rec.NextID, loaded.NextID)
		assert.Equal(t, rec.Commands, loaded.Commands)
		assert.True(t, rec.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Save Replaces", func(t *testing.T) {
		rec := contractRecord(sessionID)
		rec.Commands = rec.Commands[:1]
		rec.NextID = 1
		require.NoError(t, store.Save(ctx, rec))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Len(t, loaded.Commands, 1)
		assert.Equal(t, uint64(1), loaded.NextID)
	})

	t.Run("Loaded Record Is Detached", func(t *testing.T) {
		rec := contractRecord(sessionID)
		require.NoError(t, store.Save(ctx, rec))
		rec.Commands[0].Type = domain.CommandDot

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.CommandReset, loaded.Commands[0].Type)

		loaded.Commands = append(loaded.Commands, domain.Command{ID: 4})
		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Len(t, again.Commands, 3)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, contractRecord(sessionID)))

		err := store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "deleting twice is fine")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, contractRecord(id1)))
		require.NoError(t, store.Save(ctx, contractRecord(id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
