package trajectory

import (
	"time"

	"outreach-tracker/internal/goalplan"
)

const (
	atRiskHorizonDays   = 30 // target date within this window counts as "due soon"
	atRiskProgressFloor = 25 // below this percent a due-soon goal is at risk
	inactivityDays      = 30
	readyProgressFloor  = 75
)

// GoalSnapshot is the denormalized view of one goal plan that the detector,
// scorer, and alert job consume.
type GoalSnapshot struct {
	GoalID          string          `json:"goalId"`
	PersonID        string          `json:"personId"`
	PersonName      string          `json:"personName"`
	CoachEmail      string          `json:"coachEmail"`
	OutreachName    string          `json:"outreachName"`
	TargetRoleName  string          `json:"targetRoleName"`
	Status          goalplan.Status `json:"status"`
	TargetDate      *time.Time      `json:"targetDate"`
	PercentComplete int             `json:"percentComplete"`
	StreakWeeks     int             `json:"streakWeeks"`
	LastActivity    *time.Time      `json:"lastActivity"`
}

// AtRiskEntry is one flagged goal with the conditions that triggered it.
type AtRiskEntry struct {
	Goal     GoalSnapshot `json:"goal"`
	DueSoon  bool         `json:"dueSoon"`
	Inactive bool         `json:"inactive"`
}

// DetectAtRisk flags every active goal that is either due within 30 days
// while under 25% complete, or whose person has been inactive for 30 days
// (including "never active"). Evaluated independently of the readiness score.
func DetectAtRisk(goals []GoalSnapshot, now time.Time) []AtRiskEntry {
	soon := now.Add(atRiskHorizonDays * 24 * time.Hour)
	var entries []AtRiskEntry
	for _, g := range goals {
		if !g.Status.Active() {
			continue
		}
		dueSoon := g.TargetDate != nil && !g.TargetDate.After(soon) &&
			g.PercentComplete < atRiskProgressFloor
		inactive := g.LastActivity == nil ||
			now.Sub(*g.LastActivity) > inactivityDays*24*time.Hour
		if dueSoon || inactive {
			entries = append(entries, AtRiskEntry{Goal: g, DueSoon: dueSoon, Inactive: inactive})
		}
	}
	return entries
}

// IsReady is the complementary positive signal: an in-progress goal at 75%
// or better.
func IsReady(g GoalSnapshot) bool {
	return g.Status == goalplan.StatusInProgress && g.PercentComplete >= readyProgressFloor
}
