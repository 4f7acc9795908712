package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/burn-studio/backend/internal/model/workout"
	"github.com/zhouzirui/burn-studio/backend/internal/service/session"
)

func TestStoreGetSession(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()

	sess, err := store.CreateSession(ctx)
	require.NoError(t, err)

	got, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
}

func TestStoreGetSessionNotFound(t *testing.T) {
	_, err := session.NewStore().GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestStoreResultIsReplaced(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()
	sess, err := store.CreateSession(ctx)
	require.NoError(t, err)

	_, ok, err := store.LastResult(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveResult(ctx, sess.ID, workout.PredictionResult{Calories: 120, CoachNote: "keep going"}))
	require.NoError(t, store.SaveResult(ctx, sess.ID, workout.PredictionResult{Calories: 80}))

	got, ok, err := store.LastResult(ctx, sess.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 80.0, got.Calories)
	assert.Empty(t, got.CoachNote)
}

func TestStoreSessionsAreIndependent(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()
	a, _ := store.CreateSession(ctx)
	b, _ := store.CreateSession(ctx)

	require.NoError(t, store.SaveResult(ctx, a.ID, workout.PredictionResult{Calories: 300}))

	_, ok, err := store.LastResult(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreSaveResultUnknownSession(t *testing.T) {
	err := session.NewStore().SaveResult(context.Background(), "missing", workout.PredictionResult{})
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}
