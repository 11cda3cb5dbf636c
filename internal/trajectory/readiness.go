package trajectory

import (
	"math"
	"time"
)

// Readiness weighting. Product-tuned constants; progress dominates because
// it is the most direct success signal, recency and streak are secondary
// momentum signals that surface disengagement.
const (
	progressWeight = 0.7
	recencyWeight  = 0.2
	streakWeight   = 0.1

	recencyStepDays = 3  // one 10-point step lost per this many inactive days
	recencySteps    = 10 // full recency score is recencySteps * 10
	streakCapWeeks  = 8
)

// ComputeReadiness blends milestone progress, activity recency, and weekly
// streak into a single 0-100 index.
func ComputeReadiness(percent int, lastActivity *time.Time, streakWeeks int) int {
	return ComputeReadinessAt(percent, lastActivity, streakWeeks, time.Now())
}

// ComputeReadinessAt is ComputeReadiness with an explicit clock.
func ComputeReadinessAt(percent int, lastActivity *time.Time, streakWeeks int, now time.Time) int {
	progress := float64(clampInt(percent, 0, 100))

	recency := 0.0
	if lastActivity != nil {
		daysSince := math.Max(0, now.Sub(*lastActivity).Hours()/24)
		steps := math.Min(float64(recencySteps), math.Floor(daysSince/recencyStepDays))
		recency = math.Max(0, float64(recencySteps)-steps) * 10
	}

	streak := float64(clampInt(streakWeeks, 0, streakCapWeeks)) * (100.0 / streakCapWeeks)

	return int(math.Round(progress*progressWeight + recency*recencyWeight + streak*streakWeight))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
