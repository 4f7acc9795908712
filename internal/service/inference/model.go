package inference

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zhouzirui/burn-studio/backend/internal/model/workout"
)

// ErrModelUnavailable marks a model that could not be loaded. It stays in
// effect until the process restarts.
var ErrModelUnavailable = errors.New("calorie model unavailable")

// Predictor evaluates the regression model for one feature vector.
type Predictor interface {
	Predict(ctx context.Context, features workout.FeatureVector) (float64, error)
}

// Loader builds a Predictor from its artifact.
type Loader func(ctx context.Context) (Predictor, error)

// Model loads its predictor once and caches either the predictor or the
// load failure.
type Model struct {
	load Loader

	once      sync.Once
	predictor Predictor
	err       error
}

// NewModel wraps a loader. Nothing is loaded until Load or Predictor runs.
func NewModel(load Loader) *Model {
	return &Model{load: load}
}

// Load runs the loader on first call and returns the cached outcome after.
func (m *Model) Load(ctx context.Context) error {
	m.once.Do(func() {
		if m.load == nil {
			m.err = fmt.Errorf("%w: no loader configured", ErrModelUnavailable)
			return
		}
		p, err := m.load(ctx)
		switch {
		case err != nil:
			m.err = fmt.Errorf("%w: %w", ErrModelUnavailable, err)
		case p == nil:
			m.err = fmt.Errorf("%w: loader returned no predictor", ErrModelUnavailable)
		default:
			m.predictor = p
		}
	})
	return m.err
}

// Predictor returns the loaded predictor or an ErrModelUnavailable error.
func (m *Model) Predictor(ctx context.Context) (Predictor, error) {
	if err := m.Load(ctx); err != nil {
		return nil, err
	}
	return m.predictor, nil
}
