// Package inferencetest provides predictor stubs for tests of packages that
// depend on a calorie model.
package inferencetest

import (
	"context"

	"github.com/zhouzirui/burn-studio/backend/internal/model/workout"
	"github.com/zhouzirui/burn-studio/backend/internal/service/inference"
)

// Func adapts a plain function to inference.Predictor.
type Func func(ctx context.Context, features workout.FeatureVector) (float64, error)

// Predict calls f.
func (f Func) Predict(ctx context.Context, features workout.FeatureVector) (float64, error) {
	return f(ctx, features)
}

// Constant predicts v for every input.
func Constant(v float64) Func {
	return func(context.Context, workout.FeatureVector) (float64, error) { return v, nil }
}

// Ready returns a model whose loader hands out p.
func Ready(p inference.Predictor) *inference.Model {
	return inference.NewModel(func(context.Context) (inference.Predictor, error) {
		return p, nil
	})
}
