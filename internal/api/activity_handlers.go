package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"outreach-tracker/internal/activity"
	"outreach-tracker/internal/db"

	"github.com/gin-gonic/gin"
)

type ActivityBatchRequest struct {
	Entries []struct {
		PersonID string `json:"personId"`
		Type     string `json:"type"`
		Date     string `json:"date"`
	} `json:"entries"`
}

// POST /activities/batch records a batch of attendance entries. Accepts
// either a JSON body or text/csv rows of personId,type,date.
func ActivityBatchHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var logs []activity.ActivityLog
		var err error
		if strings.HasPrefix(c.ContentType(), "text/csv") {
			logs, err = parseActivityCSV(c.Request.Body)
		} else {
			logs, err = parseActivityJSON(c)
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
			return
		}
		if len(logs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "entries required"}})
			return
		}
		if err := db.DB.Create(&logs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to record activity"}})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ok": true, "recorded": len(logs)})
	}
}

func parseActivityJSON(c *gin.Context) ([]activity.ActivityLog, error) {
	var req ActivityBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}
	logs := make([]activity.ActivityLog, 0, len(req.Entries))
	for _, e := range req.Entries {
		log, err := buildActivityLog(e.PersonID, e.Type, e.Date)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, nil
}

// parseActivityCSV reads personId,type,date rows. A header row starting with
// "personId" is skipped; type and date may be empty.
func parseActivityCSV(r io.Reader) ([]activity.ActivityLog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	var logs []activity.ActivityLog
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid CSV: %w", err)
		}
		if len(record) == 0 || strings.EqualFold(strings.TrimSpace(record[0]), "personId") {
			continue
		}
		typ, date := "", ""
		if len(record) > 1 {
			typ = strings.TrimSpace(record[1])
		}
		if len(record) > 2 {
			date = strings.TrimSpace(record[2])
		}
		log, err := buildActivityLog(strings.TrimSpace(record[0]), typ, date)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, nil
}

func buildActivityLog(personID, typ, dateStr string) (activity.ActivityLog, error) {
	if personID == "" {
		return activity.ActivityLog{}, errors.New("personId required on every entry")
	}
	date := time.Now().UTC()
	if dateStr != "" {
		d, ok := parseDate(dateStr)
		if !ok || d == nil {
			return activity.ActivityLog{}, errors.New("invalid date: " + dateStr)
		}
		date = *d
	}
	if typ == "" {
		typ = "attendance"
	}
	return activity.ActivityLog{PersonID: personID, Type: typ, Date: date}, nil
}

// GET /activities?personId=
func ListActivityHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.DB.Order("date DESC")
		if personID := c.Query("personId"); personID != "" {
			q = q.Where("person_id = ?", personID)
		}
		var logs []activity.ActivityLog
		if err := q.Limit(200).Find(&logs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to list activity"}})
			return
		}
		c.JSON(http.StatusOK, logs)
	}
}
