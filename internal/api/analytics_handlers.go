package api

import (
	"net/http"
	"sort"
	"time"

	"outreach-tracker/internal/db"
	"outreach-tracker/internal/goalplan"
	"outreach-tracker/internal/trajectory"

	"github.com/gin-gonic/gin"
)

type readinessEntry struct {
	PersonID   string `json:"personId"`
	PersonName string `json:"personName"`
	GoalID     string `json:"goalId"`
	Score      int    `json:"score"`
}

// GET /analytics summarises the active pipeline: counts per target
// role, completion buckets, readiness scores, at-risk totals and
// coach loads.
func AnalyticsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now().UTC()
		snapshots, err := trajectory.LoadGoalSnapshots(db.DB, goalplan.ActiveStatuses, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to load pipeline"}})
			return
		}

		pipeline := map[string]int{}
		buckets := map[string]int{"0-24": 0, "25-49": 0, "50-74": 0, "75-100": 0}
		readyCount := 0
		scores := make([]readinessEntry, 0, len(snapshots))
		total := 0
		for _, s := range snapshots {
			pipeline[s.TargetRoleName]++
			switch {
			case s.PercentComplete < 25:
				buckets["0-24"]++
			case s.PercentComplete < 50:
				buckets["25-49"]++
			case s.PercentComplete < 75:
				buckets["50-74"]++
			default:
				buckets["75-100"]++
			}
			if trajectory.IsReady(s) {
				readyCount++
			}
			score := trajectory.ComputeReadinessAt(s.PercentComplete, s.LastActivity, s.StreakWeeks, now)
			scores = append(scores, readinessEntry{
				PersonID:   s.PersonID,
				PersonName: s.PersonName,
				GoalID:     s.GoalID,
				Score:      score,
			})
			total += score
		}

		avg := 0
		if len(scores) > 0 {
			avg = total / len(scores)
		}
		sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
		top := scores
		if len(top) > 3 {
			top = top[:3]
		}

		atRisk := trajectory.DetectAtRisk(snapshots, now)

		loads, err := trajectory.LoadCoachLoads(db.DB)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to load coach loads"}})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"pipeline":          pipeline,
			"completionBuckets": buckets,
			"readyCount":        readyCount,
			"readinessAvg":      avg,
			"readinessTop":      top,
			"atRiskCount":       len(atRisk),
			"coachLoads":        loads,
		})
	}
}
