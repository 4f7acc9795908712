package workout

// Tier is a coaching tier derived from the predicted calories.
type Tier string

const (
	TierWarmUp          Tier = "warm_up"
	TierSolidWork       Tier = "solid_work"
	TierPerformanceZone Tier = "performance_zone"
	TierPeakOutput      Tier = "peak_output"
)

// Tiers lists every tier from lowest to highest.
func Tiers() []Tier {
	return []Tier{TierWarmUp, TierSolidWork, TierPerformanceZone, TierPeakOutput}
}
