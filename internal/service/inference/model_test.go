package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/burn-studio/backend/internal/model/workout"
)

type constPredictor float64

func (c constPredictor) Predict(context.Context, workout.FeatureVector) (float64, error) {
	return float64(c), nil
}

func TestModelLoadsOnce(t *testing.T) {
	calls := 0
	m := NewModel(func(context.Context) (Predictor, error) {
		calls++
		return constPredictor(42), nil
	})

	ctx := context.Background()
	require.NoError(t, m.Load(ctx))
	p, err := m.Predictor(ctx)
	require.NoError(t, err)

	got, err := p.Predict(ctx, workout.FeatureVector{})
	require.NoError(t, err)
	assert.Equal(t, 42.0, got)
	assert.Equal(t, 1, calls)
}

func TestModelCachesLoadFailure(t *testing.T) {
	calls := 0
	cause := errors.New("file missing")
	m := NewModel(func(context.Context) (Predictor, error) {
		calls++
		return nil, cause
	})

	ctx := context.Background()
	err := m.Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.ErrorIs(t, err, cause)

	_, err = m.Predictor(ctx)
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Equal(t, 1, calls)
}

func TestModelWithoutLoader(t *testing.T) {
	_, err := NewModel(nil).Predictor(context.Background())
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestModelRejectsNilPredictor(t *testing.T) {
	m := NewModel(func(context.Context) (Predictor, error) { return nil, nil })
	assert.ErrorIs(t, m.Load(context.Background()), ErrModelUnavailable)
}
