// Package health scores a deployed target against a weighted probe battery.
package health

// Tier is the health classification of a deployed target.
type Tier int

const (
	// Unhealthy covers unreachable targets and scores below DegradedThreshold.
	Unhealthy Tier = iota
	// Degraded covers scores from DegradedThreshold up to HealthyThreshold.
	Degraded
	// Healthy covers scores at or above HealthyThreshold.
	Healthy
)

// Tier thresholds, applied to the percentage score.
const (
	HealthyThreshold  = 90
	DegradedThreshold = 60
)

// String returns the operator-facing name of the tier.
func (t Tier) String() string {
	switch t {
	case Healthy:
		return "healthy"
	case Degraded:
		return "degraded"
	case Unhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// TierFor maps a percentage score onto a Tier.
func TierFor(score int) Tier {
	switch {
	case score >= HealthyThreshold:
		return Healthy
	case score >= DegradedThreshold:
		return Degraded
	default:
		return Unhealthy
	}
}

// Score returns round(100 * passed / maxWeight), or 0 when nothing applies.
func Score(passed int, maxWeight int) int {
	if maxWeight <= 0 || passed <= 0 {
		return 0
	}
	return (100*passed + maxWeight/2) / maxWeight
}
