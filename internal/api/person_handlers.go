package api

import (
	"net/http"
	"strings"

	"outreach-tracker/internal/audit"
	"outreach-tracker/internal/db"
	"outreach-tracker/internal/person"

	"github.com/gin-gonic/gin"
)

type CreatePersonRequest struct {
	FullName      string `json:"fullName"`
	CoachEmail    string `json:"coachEmail"`
	OutreachName  string `json:"outreachName"`
	CurrentRoleID string `json:"currentRoleId"`
}

// POST /people
func CreatePersonHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreatePersonRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.FullName) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "fullName required"}})
			return
		}
		p := person.Person{
			FullName:   strings.TrimSpace(req.FullName),
			CoachEmail: strings.TrimSpace(req.CoachEmail),
		}
		if req.CurrentRoleID != "" {
			rid := req.CurrentRoleID
			p.CurrentRoleID = &rid
		}
		if name := strings.TrimSpace(req.OutreachName); name != "" {
			var o person.Outreach
			if err := db.DB.Where("name = ?", name).First(&o).Error; err != nil {
				o = person.Outreach{Name: name}
				if err := db.DB.Create(&o).Error; err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to create outreach group"}})
					return
				}
			}
			p.OutreachID = &o.ID
		}
		if err := db.DB.Create(&p).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to create person"}})
			return
		}
		username, _ := c.Get("username")
		audit.Record(db.DB, "person.create", audit.Entry{
			UserEmail: asString(username),
			Entity:    "person",
			EntityID:  p.ID,
		})
		c.JSON(http.StatusCreated, p)
	}
}

// GET /people
func ListPeopleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.DB.Preload("Outreach").Order("created_at, id")
		if coach := c.Query("coach"); coach != "" {
			q = q.Where("coach_email = ?", coach)
		}
		var people []person.Person
		if err := q.Find(&people).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to list people"}})
			return
		}
		c.JSON(http.StatusOK, people)
	}
}

// GET /people/:id
func GetPersonHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p person.Person
		if err := db.DB.Preload("Outreach").First(&p, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Person not found"}})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

type UpdatePersonRequest struct {
	FullName      *string `json:"fullName"`
	CoachEmail    *string `json:"coachEmail"`
	CurrentRoleID *string `json:"currentRoleId"`
}

// PATCH /people/:id
func UpdatePersonHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdatePersonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		updates := map[string]interface{}{}
		if req.FullName != nil {
			updates["full_name"] = strings.TrimSpace(*req.FullName)
		}
		if req.CoachEmail != nil {
			updates["coach_email"] = strings.TrimSpace(*req.CoachEmail)
		}
		if req.CurrentRoleID != nil {
			if *req.CurrentRoleID == "" {
				updates["current_role_id"] = nil
			} else {
				updates["current_role_id"] = *req.CurrentRoleID
			}
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "No fields to update"}})
			return
		}
		res := db.DB.Model(&person.Person{}).Where("id = ?", c.Param("id")).Updates(updates)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to update person"}})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Person not found"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// DELETE /people/:id soft-deletes; the person's goals drop out of
// analytics and alert runs but stay in the database.
func DeletePersonHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		res := db.DB.Where("id = ?", c.Param("id")).Delete(&person.Person{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to delete person"}})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Person not found"}})
			return
		}
		username, _ := c.Get("username")
		audit.Record(db.DB, "person.delete", audit.Entry{
			UserEmail: asString(username),
			Entity:    "person",
			EntityID:  c.Param("id"),
		})
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
