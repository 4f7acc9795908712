package coaching

import (
	"fmt"
	"math"

	"github.com/zhouzirui/burn-studio/backend/internal/model/workout"
)

// Tier thresholds, in whole kilocalories. Each bound is the first value of
// the next tier.
const (
	SolidWorkFloor       = 100
	PerformanceZoneFloor = 300
	PeakOutputFloor      = 500
)

// Decision is the coaching verdict for one prediction.
type Decision struct {
	Tier     workout.Tier
	Calories float64
	Message  string
}

// Truncate drops the fractional part of a prediction, matching how the
// feedback message reads the calorie value. It stays in float64 so values
// beyond the int range keep their magnitude.
func Truncate(calories float64) float64 {
	return math.Trunc(calories)
}

// Classify maps a whole calorie value onto its tier.
func Classify(calories float64) workout.Tier {
	switch {
	case calories < SolidWorkFloor:
		return workout.TierWarmUp
	case calories < PerformanceZoneFloor:
		return workout.TierSolidWork
	case calories < PeakOutputFloor:
		return workout.TierPerformanceZone
	default:
		return workout.TierPeakOutput
	}
}

// Evaluate builds the verdict for a raw prediction.
func Evaluate(calories float64) Decision {
	whole := Truncate(calories)
	tier := Classify(whole)
	return Decision{
		Tier:     tier,
		Calories: whole,
		Message:  message(tier, whole),
	}
}

// Title is the short heading of a tier.
func Title(tier workout.Tier) string {
	switch tier {
	case workout.TierWarmUp:
		return "Warm-up complete"
	case workout.TierSolidWork:
		return "Solid work"
	case workout.TierPerformanceZone:
		return "Performance Zone"
	case workout.TierPeakOutput:
		return "Peak Output"
	default:
		return ""
	}
}

func message(tier workout.Tier, calories float64) string {
	switch tier {
	case workout.TierWarmUp:
		return fmt.Sprintf("%s: %.0f kcal. A solid start to the session.", Title(tier), calories)
	case workout.TierSolidWork:
		return fmt.Sprintf("%s: %.0f kcal. You're building a strong foundation. That's a productive session.", Title(tier), calories)
	case workout.TierPerformanceZone:
		return fmt.Sprintf("%s: %.0f kcal. 🔥 You're pushing your limits and making significant progress.", Title(tier), calories)
	default:
		return fmt.Sprintf("%s: %.0f kcal. 🚀 An elite-level session. Focus on recovery.", Title(workout.TierPeakOutput), calories)
	}
}
