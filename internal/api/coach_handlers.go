package api

import (
	"net/http"
	"time"

	"outreach-tracker/internal/audit"
	"outreach-tracker/internal/db"
	"outreach-tracker/internal/goalplan"
	"outreach-tracker/internal/person"
	"outreach-tracker/internal/trajectory"

	"github.com/gin-gonic/gin"
)

// GET /coach/redistribute
func SuggestRedistributionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		loads, err := trajectory.LoadCoachLoads(db.DB)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to load coach loads"}})
			return
		}
		limits, err := trajectory.LoadCoachLimits(db.DB)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to load coach limits"}})
			return
		}
		moves := trajectory.SuggestRedistribution(loads, limits)
		c.JSON(http.StatusOK, gin.H{"loads": loads, "suggestions": moves})
	}
}

type ApplyRedistributionRequest struct {
	Moves []trajectory.Suggestion `json:"moves"`
}

// POST /coach/redistribute/apply
func ApplyRedistributionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ApplyRedistributionRequest
		if err := c.ShouldBindJSON(&req); err != nil || len(req.Moves) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "moves required"}})
			return
		}
		moved, err := trajectory.ApplyRedistribution(db.DB, req.Moves)
		if err != nil {
			engineError(c, err)
			return
		}
		username, _ := c.Get("username")
		audit.Record(db.DB, "coach.redistribute", audit.Entry{
			UserEmail: asString(username),
			Entity:    "coach",
		})
		c.JSON(http.StatusOK, gin.H{"ok": true, "moved": moved})
	}
}

type coachSummary struct {
	Coach       string `json:"coach"`
	Limit       int    `json:"limit"`
	ActiveCount int    `json:"activeCount"`
	AtRiskCount int    `json:"atRiskCount"`
}

// GET /coach/summary
func CoachSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		loads, err := trajectory.LoadCoachLoads(db.DB)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to load coach loads"}})
			return
		}
		limits, err := trajectory.LoadCoachLimits(db.DB)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to load coach limits"}})
			return
		}
		now := time.Now().UTC()
		snapshots, err := trajectory.LoadGoalSnapshots(db.DB, goalplan.ActiveStatuses, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to load pipeline"}})
			return
		}
		atRiskByCoach := map[string]int{}
		for _, e := range trajectory.DetectAtRisk(snapshots, now) {
			coach := e.Goal.CoachEmail
			if coach == "" {
				coach = trajectory.UnassignedCoach
			}
			atRiskByCoach[coach]++
		}
		summaries := make([]coachSummary, 0, len(loads))
		for _, l := range loads {
			limit, ok := limits[l.Coach]
			if !ok {
				limit = trajectory.DefaultCoachLimit
			}
			summaries = append(summaries, coachSummary{
				Coach:       l.Coach,
				Limit:       limit,
				ActiveCount: len(l.PersonIDs),
				AtRiskCount: atRiskByCoach[l.Coach],
			})
		}
		c.JSON(http.StatusOK, summaries)
	}
}

type SetCoachLimitRequest struct {
	CoachEmail string `json:"coachEmail"`
	Limit      int    `json:"limit"`
}

// PUT /coach/limits
func SetCoachLimitHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SetCoachLimitRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.CoachEmail == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "coachEmail required"}})
			return
		}
		var cl person.CoachLimit
		err := db.DB.Where("coach_email = ?", req.CoachEmail).First(&cl).Error
		if err != nil {
			cl = person.CoachLimit{CoachEmail: req.CoachEmail, Limit: req.Limit}
			err = db.DB.Create(&cl).Error
		} else {
			err = db.DB.Model(&cl).Update("wip_limit", req.Limit).Error
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to save coach limit"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
