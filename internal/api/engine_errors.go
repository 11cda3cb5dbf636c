package api

import (
	"errors"
	"net/http"

	"outreach-tracker/internal/trajectory"

	"github.com/gin-gonic/gin"
)

// engineError maps the engine's sentinel errors onto HTTP status codes.
func engineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trajectory.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": err.Error()}})
	case errors.Is(err, trajectory.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Internal error"}})
	}
}
