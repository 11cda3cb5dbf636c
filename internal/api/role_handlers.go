package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"outreach-tracker/internal/audit"
	"outreach-tracker/internal/db"
	"outreach-tracker/internal/role"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// GET /roles
func ListRolesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var roles []role.Role
		if err := db.DB.Order("tier, name").Find(&roles).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to list roles"}})
			return
		}
		c.JSON(http.StatusOK, roles)
	}
}

type CreateRoleRequest struct {
	Name     string `json:"name"`
	Tier     int    `json:"tier"`
	ColorHex string `json:"colorHex"`
}

// POST /roles
func CreateRoleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "name required"}})
			return
		}
		r := role.Role{Name: strings.TrimSpace(req.Name), Tier: req.Tier, ColorHex: req.ColorHex}
		if err := db.DB.Create(&r).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to create role"}})
			return
		}
		c.JSON(http.StatusCreated, r)
	}
}

type CreateTemplateVersionRequest struct {
	RoleID     string   `json:"roleId"`
	Milestones []string `json:"milestones"`
}

// POST /templates/version creates the next template version for a role.
func CreateTemplateVersionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTemplateVersionRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.RoleID == "" || len(req.Milestones) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "roleId and milestones required"}})
			return
		}
		var r role.Role
		if err := db.DB.First(&r, "id = ?", req.RoleID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Role not found"}})
			return
		}
		var latest role.TemplateVersion
		version := 1
		if err := db.DB.Where("role_id = ?", req.RoleID).Order("version DESC").First(&latest).Error; err == nil {
			version = latest.Version + 1
		}
		raw, err := json.Marshal(req.Milestones)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid milestones"}})
			return
		}
		username, _ := c.Get("username")
		tv := role.TemplateVersion{
			RoleID:         req.RoleID,
			Version:        version,
			MilestonesJSON: datatypes.JSON(raw),
			CreatedBy:      asString(username),
		}
		if err := db.DB.Create(&tv).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to create template version"}})
			return
		}
		audit.Record(db.DB, "template.version", audit.Entry{
			UserEmail: asString(username),
			Entity:    "templateVersion",
			EntityID:  tv.ID,
		})
		c.JSON(http.StatusCreated, tv)
	}
}

// GET /templates/version/list?roleId=
func ListTemplateVersionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.DB.Order("role_id, version DESC")
		if roleID := c.Query("roleId"); roleID != "" {
			q = q.Where("role_id = ?", roleID)
		}
		var versions []role.TemplateVersion
		if err := q.Find(&versions).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to list template versions"}})
			return
		}
		c.JSON(http.StatusOK, versions)
	}
}
