package api

import (
	"net/http"

	"outreach-tracker/internal/db"
	"outreach-tracker/internal/trajectory"

	"github.com/gin-gonic/gin"
)

type SetMilestoneRequest struct {
	Completed *bool `json:"completed"`
}

// PATCH /milestones/:id
func SetMilestoneHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SetMilestoneRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		completed := true
		if req.Completed != nil {
			completed = *req.Completed
		}
		ms, err := trajectory.SetMilestoneCompletion(db.DB, c.Param("id"), completed)
		if err != nil {
			engineError(c, err)
			return
		}
		c.JSON(http.StatusOK, ms)
	}
}

// POST /milestones/complete-next?personId=
func CompleteNextHandler(roles trajectory.RoleConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		personID := c.Query("personId")
		if personID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "personId required"}})
			return
		}
		advanced, err := trajectory.CompleteNextMilestone(db.DB, roles, personID)
		if err != nil {
			engineError(c, err)
			return
		}
		if !advanced {
			c.JSON(http.StatusOK, gin.H{"ok": true, "advanced": false, "message": "all milestones already completed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "advanced": true})
	}
}

type BatchProgressRequest struct {
	Updates []struct {
		PersonID string `json:"personId"`
		Pct      int    `json:"pct"`
	} `json:"updates"`
}

// POST /milestones/batch
func BatchProgressHandler(roles trajectory.RoleConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BatchProgressRequest
		if err := c.ShouldBindJSON(&req); err != nil || len(req.Updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "updates required"}})
			return
		}
		count := 0
		for _, u := range req.Updates {
			applied, err := trajectory.BatchUpdateProgress(db.DB, roles, u.PersonID, u.Pct)
			if err != nil {
				engineError(c, err)
				return
			}
			if applied {
				count++
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "updated": count})
	}
}
