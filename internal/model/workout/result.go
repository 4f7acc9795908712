package workout

import (
	"fmt"
	"time"
)

// PredictionResult is what the results panel shows after a submission.
type PredictionResult struct {
	Calories        float64   `json:"calories"`
	DurationMin     int       `json:"durationMin"`
	HeartRateBpm    int       `json:"heartRateBpm"`
	FeedbackMessage string    `json:"feedbackMessage"`
	Tier            Tier      `json:"tier"`
	CoachNote       string    `json:"coachNote,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CaloriesLabel formats the hero metric.
func (r PredictionResult) CaloriesLabel() string {
	return fmt.Sprintf("%.0f kcal", r.Calories)
}

// DurationLabel formats the duration metric.
func (r PredictionResult) DurationLabel() string {
	return fmt.Sprintf("%d min", r.DurationMin)
}

// HeartRateLabel formats the heart-rate metric.
func (r PredictionResult) HeartRateLabel() string {
	return fmt.Sprintf("%d bpm", r.HeartRateBpm)
}
