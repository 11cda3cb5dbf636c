package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"outreach-tracker/internal/activity"
	"outreach-tracker/internal/goalplan"
	"outreach-tracker/internal/trajectory"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// seedPipeline creates two in-flight goal plans: one healthy, one due soon
// with no progress.
func seedPipeline(t *testing.T, dbConn *gorm.DB) {
	t.Helper()
	cfg := domainRoleConfig()
	target := roleByName(t, dbConn, "BS Leader")

	healthy := seedAPIPerson(t, dbConn, "Gina Hale")
	goalID, err := trajectory.CreateGoalPlan(dbConn, cfg, healthy.ID, target.ID, nil, "")
	if err != nil {
		t.Fatalf("failed to seed goal: %v", err)
	}
	var ms goalplan.Milestone
	if err := dbConn.First(&ms, "goal_plan_id = ?", goalID).Error; err != nil {
		t.Fatalf("no milestone: %v", err)
	}
	if _, err := trajectory.SetMilestoneCompletion(dbConn, ms.ID, true); err != nil {
		t.Fatalf("failed to complete milestone: %v", err)
	}
	if err := dbConn.Create(&activity.ActivityLog{PersonID: healthy.ID, Type: "attendance", Date: time.Now()}).Error; err != nil {
		t.Fatalf("failed to seed activity: %v", err)
	}

	atRisk := seedAPIPerson(t, dbConn, "Hank Obi")
	due := time.Now().AddDate(0, 0, 10)
	if _, err := trajectory.CreateGoalPlan(dbConn, cfg, atRisk.ID, target.ID, &due, ""); err != nil {
		t.Fatalf("failed to seed at-risk goal: %v", err)
	}
}

func TestAnalyticsHandler_SummarisesPipeline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dbConn := setupDomainDB(t)
	seedPipeline(t, dbConn)

	r := gin.New()
	r.GET("/analytics", AnalyticsHandler())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/analytics", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Pipeline          map[string]int   `json:"pipeline"`
		CompletionBuckets map[string]int   `json:"completionBuckets"`
		ReadyCount        int              `json:"readyCount"`
		ReadinessTop      []readinessEntry `json:"readinessTop"`
		AtRiskCount       int              `json:"atRiskCount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode analytics: %v", err)
	}
	if resp.Pipeline["BS Leader"] != 2 {
		t.Errorf("expected 2 goals targeting BS Leader, got %v", resp.Pipeline)
	}
	if resp.CompletionBuckets["0-24"] != 1 || resp.CompletionBuckets["50-74"] != 1 {
		t.Errorf("unexpected completion buckets: %v", resp.CompletionBuckets)
	}
	if resp.AtRiskCount != 1 {
		t.Errorf("expected 1 at-risk goal, got %d", resp.AtRiskCount)
	}
	if len(resp.ReadinessTop) != 2 {
		t.Errorf("expected 2 readiness entries, got %d", len(resp.ReadinessTop))
	}
	if len(resp.ReadinessTop) == 2 && resp.ReadinessTop[0].Score < resp.ReadinessTop[1].Score {
		t.Errorf("readiness entries not sorted descending: %v", resp.ReadinessTop)
	}
}
