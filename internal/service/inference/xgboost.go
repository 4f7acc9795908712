package inference

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitryikh/leaves"

	"github.com/zhouzirui/burn-studio/backend/internal/model/workout"
)

// XGBoostPredictor evaluates a gradient-boosted tree ensemble exported by
// XGBoost in its binary format.
type XGBoostPredictor struct {
	ensemble *leaves.Ensemble
}

// LoadXGBoost returns a Loader for the model file at path.
func LoadXGBoost(path string) Loader {
	return func(_ context.Context) (Predictor, error) {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("model file %q: %w", path, err)
		}

		ensemble, err := leaves.XGEnsembleFromFile(path, false)
		if err != nil {
			return nil, fmt.Errorf("failed to parse xgboost model %q: %w", path, err)
		}

		if n := ensemble.NFeatures(); n != workout.NumFeatures {
			return nil, fmt.Errorf("model expects %d features, form provides %d", n, workout.NumFeatures)
		}

		return &XGBoostPredictor{ensemble: ensemble}, nil
	}
}

// Predict runs every tree of the ensemble.
func (p *XGBoostPredictor) Predict(_ context.Context, features workout.FeatureVector) (float64, error) {
	return p.ensemble.PredictSingle(features.Slice(), 0), nil
}
