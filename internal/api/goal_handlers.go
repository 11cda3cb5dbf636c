package api

import (
	"net/http"
	"time"

	"outreach-tracker/internal/db"
	"outreach-tracker/internal/goalplan"
	"outreach-tracker/internal/trajectory"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateGoalRequest struct {
	PersonID     string `json:"personId"`
	TargetRoleID string `json:"targetRoleId"`
	TargetDate   string `json:"targetDate,omitempty"`
	Rationale    string `json:"rationale,omitempty"`
}

// parseDate accepts both date-only and RFC3339 timestamps.
func parseDate(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, true
		}
	}
	return nil, false
}

// POST /goals
func CreateGoalHandler(roles trajectory.RoleConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateGoalRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.PersonID == "" || req.TargetRoleID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "personId and targetRoleId required"}})
			return
		}
		targetDate, ok := parseDate(req.TargetDate)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid targetDate"}})
			return
		}
		goalID, err := trajectory.CreateGoalPlan(db.DB, roles, req.PersonID, req.TargetRoleID, targetDate, req.Rationale)
		if err != nil {
			engineError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ok": true, "goalId": goalID})
	}
}

type UpdateGoalRequest struct {
	Data *struct {
		TargetRoleID string  `json:"targetRoleId,omitempty"`
		TargetDate   *string `json:"targetDate,omitempty"`
		Status       string  `json:"status,omitempty"`
	} `json:"data,omitempty"`
	MigrateToVersionID string `json:"migrateToVersionId,omitempty"`
}

// PATCH /goals/:id — field updates, or a template migration when
// migrateToVersionId is set.
func UpdateGoalHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		goalID := c.Param("id")
		var req UpdateGoalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}

		if req.MigrateToVersionID != "" {
			migrated, err := trajectory.MigrateGoalTemplate(db.DB, goalID, req.MigrateToVersionID)
			if err != nil {
				engineError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"ok": true, "migrated": migrated})
			return
		}

		updates := map[string]interface{}{}
		if req.Data != nil {
			if req.Data.TargetRoleID != "" {
				updates["target_role_id"] = req.Data.TargetRoleID
			}
			if req.Data.TargetDate != nil {
				t, ok := parseDate(*req.Data.TargetDate)
				if !ok {
					c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid targetDate"}})
					return
				}
				updates["target_date"] = t
			}
			if req.Data.Status != "" {
				switch goalplan.Status(req.Data.Status) {
				case goalplan.StatusPlanned, goalplan.StatusInProgress, goalplan.StatusAchieved, goalplan.StatusDeferred:
					updates["status"] = req.Data.Status
				default:
					c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid status"}})
					return
				}
			}
		}
		if len(updates) == 0 {
			c.JSON(http.StatusOK, gin.H{"ok": true})
			return
		}

		res := db.DB.Model(&goalplan.GoalPlan{}).Where("id = ?", goalID).Updates(updates)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Update error"}})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Goal not found"}})
			return
		}
		var goal goalplan.GoalPlan
		if err := db.DB.First(&goal, "id = ?", goalID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Fetch error"}})
			return
		}
		c.JSON(http.StatusOK, goal)
	}
}

// GET /goals/:id
func GetGoalHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var goal goalplan.GoalPlan
		err := db.DB.Preload("Milestones", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position, created_at")
		}).First(&goal, "id = ?", c.Param("id")).Error
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Goal not found"}})
			return
		}
		c.JSON(http.StatusOK, goal)
	}
}
