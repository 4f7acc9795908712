package workout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/zhouzirui/burn-studio/backend/internal/analysis/coaching"
	"github.com/zhouzirui/burn-studio/backend/internal/metrics"
	"github.com/zhouzirui/burn-studio/backend/internal/model/workout"
	"github.com/zhouzirui/burn-studio/backend/internal/service/inference"
)

// ErrModelUnavailable is returned for every submission while the calorie
// model is not loaded.
var ErrModelUnavailable = inference.ErrModelUnavailable

// PredictionError reports a failed model evaluation. The session keeps its
// previous result.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Err)
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

// ModelSource hands out the loaded predictor.
type ModelSource interface {
	Predictor(ctx context.Context) (inference.Predictor, error)
}

// ResultStore holds the last result of each session.
type ResultStore interface {
	GetSession(ctx context.Context, sessionID string) (workout.Session, error)
	SaveResult(ctx context.Context, sessionID string, result workout.PredictionResult) error
	LastResult(ctx context.Context, sessionID string) (workout.PredictionResult, bool, error)
}

// NoteWriter adds optional commentary to a result.
type NoteWriter interface {
	Note(ctx context.Context, input workout.SessionInput, result workout.PredictionResult) (string, error)
}

// Service is the form controller: it turns a submission into a prediction
// result and keeps it for re-display.
type Service struct {
	model  ModelSource
	store  ResultStore
	notes  NoteWriter
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the controller. notes may be nil.
func NewService(model ModelSource, store ResultStore, notes NoteWriter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		model:  model,
		store:  store,
		notes:  notes,
		logger: logger.Named("workout"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate runs the model for one submission without touching session state.
func (s *Service) Evaluate(ctx context.Context, input workout.SessionInput) (workout.PredictionResult, error) {
	predictor, err := s.model.Predictor(ctx)
	if err != nil {
		metrics.IncPrediction(metrics.OutcomeModelUnavailable)
		if !errors.Is(err, ErrModelUnavailable) {
			err = fmt.Errorf("%w: %w", ErrModelUnavailable, err)
		}
		return workout.PredictionResult{}, err
	}

	clamped := input.Clamped()
	features, err := clamped.Features()
	if err != nil {
		metrics.IncPrediction(metrics.OutcomeInvalidInput)
		return workout.PredictionResult{}, &PredictionError{Err: err}
	}

	calories, err := predictor.Predict(ctx, features)
	if err != nil {
		metrics.IncPrediction(metrics.OutcomePredictionError)
		s.logger.Warn("model prediction failed", zap.Error(err), zap.Float64s("features", features.Slice()))
		return workout.PredictionResult{}, &PredictionError{Err: err}
	}
	if math.IsNaN(calories) || math.IsInf(calories, 0) {
		metrics.IncPrediction(metrics.OutcomePredictionError)
		return workout.PredictionResult{}, &PredictionError{Err: fmt.Errorf("model returned non-finite value %v", calories)}
	}
	if calories < 0 {
		s.logger.Warn("negative prediction clamped to zero", zap.Float64("calories", calories))
		calories = 0
	}

	decision := coaching.Evaluate(calories)
	result := workout.PredictionResult{
		Calories:        calories,
		DurationMin:     clamped.DurationMin,
		HeartRateBpm:    clamped.HeartRateBpm,
		FeedbackMessage: decision.Message,
		Tier:            decision.Tier,
		CreatedAt:       s.now(),
	}

	if s.notes != nil {
		note, err := s.notes.Note(ctx, clamped, result)
		if err != nil {
			s.logger.Warn("coach note skipped", zap.Error(err))
		} else {
			result.CoachNote = note
		}
	}

	metrics.IncPrediction(metrics.OutcomeSuccess)
	metrics.ObserveResult(string(result.Tier), result.Calories)
	return result, nil
}

// Submit evaluates the input and, on success, replaces the session's held
// result. Failed submissions leave the held result untouched.
func (s *Service) Submit(ctx context.Context, sessionID string, input workout.SessionInput) (workout.PredictionResult, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return workout.PredictionResult{}, err
	}

	result, err := s.Evaluate(ctx, input)
	if err != nil {
		return workout.PredictionResult{}, err
	}

	if err := s.store.SaveResult(ctx, sessionID, result); err != nil {
		return workout.PredictionResult{}, fmt.Errorf("failed to save result: %w", err)
	}

	s.logger.Info("session analysed",
		zap.String("session", sessionID),
		zap.Float64("calories", result.Calories),
		zap.String("tier", string(result.Tier)),
	)
	return result, nil
}

// LastResult returns the held result of the session, if any.
func (s *Service) LastResult(ctx context.Context, sessionID string) (workout.PredictionResult, bool, error) {
	return s.store.LastResult(ctx, sessionID)
}
