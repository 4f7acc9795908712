package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zhouzirui/burn-studio/backend/internal/model/workout"
)

// Prediction outcomes.
const (
	OutcomeSuccess          = "success"
	OutcomeInvalidInput     = "invalid_input"
	OutcomePredictionError  = "prediction_error"
	OutcomeModelUnavailable = "model_unavailable"
)

var (
	once sync.Once

	predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "burn",
			Name:      "predictions_total",
			Help:      "Count of form submissions by outcome.",
		},
		[]string{"outcome"},
	)

	feedbackTier = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "burn",
			Name:      "feedback_tier_total",
			Help:      "Count of successful predictions by coaching tier.",
		},
		[]string{"tier"},
	)

	predictedCalories = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "burn",
			Name:      "predicted_calories",
			Help:      "Distribution of predicted calorie burn.",
			Buckets:   []float64{50, 100, 200, 300, 400, 500, 750, 1000},
		},
	)

	modelLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "burn",
			Name:      "model_loaded",
			Help:      "1 when the calorie model loaded successfully, 0 otherwise.",
		},
	)
)

// Register registers metrics (idempotent). Every tier and outcome series is
// created up front so it reads 0 before the first submission.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(predictions, feedbackTier, predictedCalories, modelLoaded)
		for _, tier := range workout.Tiers() {
			feedbackTier.WithLabelValues(string(tier))
		}
		for _, outcome := range []string{OutcomeSuccess, OutcomeInvalidInput, OutcomePredictionError, OutcomeModelUnavailable} {
			predictions.WithLabelValues(outcome)
		}
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func IncPrediction(outcome string) {
	predictions.WithLabelValues(outcome).Inc()
}

func ObserveResult(tier string, calories float64) {
	feedbackTier.WithLabelValues(tier).Inc()
	predictedCalories.Observe(calories)
}

func SetModelLoaded(loaded bool) {
	if loaded {
		modelLoaded.Set(1)
		return
	}
	modelLoaded.Set(0)
}
