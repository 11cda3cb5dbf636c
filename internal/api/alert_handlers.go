package api

import (
	"net/http"

	"outreach-tracker/internal/alert"
	"outreach-tracker/internal/db"
	"outreach-tracker/internal/trajectory"

	"github.com/gin-gonic/gin"
)

// POST /alerts/run?simulate=1
func RunAlertsHandler(transport alert.Transport) gin.HandlerFunc {
	return func(c *gin.Context) {
		simulate := c.Query("simulate") == "1" || c.Query("simulate") == "true"
		result, err := trajectory.RunAlertsJob(db.DB, transport, simulate)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Alert run failed"}})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// GET /alerts/log
func ListAlertLogHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var logs []alert.AlertLog
		if err := db.DB.Order("created_at DESC, id DESC").Limit(100).Find(&logs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to list alerts"}})
			return
		}
		c.JSON(http.StatusOK, logs)
	}
}
