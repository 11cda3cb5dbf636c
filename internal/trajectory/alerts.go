package trajectory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"outreach-tracker/internal/alert"
	"outreach-tracker/internal/goalplan"
)

// GeneralScope is the alert bucket for people with no outreach group.
const GeneralScope = "General"

// AlertJobResult reports the outcome of one alert batch run.
type AlertJobResult struct {
	Status string `json:"status"` // noop, simulated, stored, sent
	Count  int    `json:"count"`
}

// RunAlertsJob evaluates every active goal plan with the at-risk detector,
// groups flagged entries by outreach name, and emits one payload per group.
// Simulate persists the payloads as "preview" log entries. Live sends one
// message per group; with no transport configured, or when delivery fails,
// the payload is persisted as "atrisk" instead, so the job is always safe to
// invoke. Repeated runs re-evaluate current state; no deduplication against
// prior runs is attempted.
func RunAlertsJob(db *gorm.DB, transport alert.Transport, simulate bool) (AlertJobResult, error) {
	now := time.Now()
	snaps, err := LoadGoalSnapshots(db, goalplan.ActiveStatuses, now)
	if err != nil {
		return AlertJobResult{}, err
	}
	entries := DetectAtRisk(snaps, now)
	if len(entries) == 0 {
		return AlertJobResult{Status: "noop", Count: 0}, nil
	}

	groups := make(map[string][]AtRiskEntry)
	for _, e := range entries {
		key := e.Goal.OutreachName
		if key == "" {
			key = GeneralScope
		}
		groups[key] = append(groups[key], e)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if simulate {
		for _, key := range keys {
			row := alert.AlertLog{Type: alert.TypePreview, Scope: key, Payload: renderAlertHTML(key, groups[key])}
			if err := db.Create(&row).Error; err != nil {
				return AlertJobResult{}, err
			}
		}
		logger.LogAlertRun("simulated", len(keys))
		return AlertJobResult{Status: "simulated", Count: len(keys)}, nil
	}

	if transport == nil {
		for _, key := range keys {
			row := alert.AlertLog{Type: alert.TypeAtRisk, Scope: key, Payload: renderAlertHTML(key, groups[key])}
			if err := db.Create(&row).Error; err != nil {
				return AlertJobResult{}, err
			}
		}
		logger.LogAlertRun("stored", len(keys))
		return AlertJobResult{Status: "stored", Count: len(keys)}, nil
	}

	status := "sent"
	for _, key := range keys {
		html := renderAlertHTML(key, groups[key])
		row := alert.AlertLog{Type: alert.TypeAtRisk, Scope: key}
		if err := transport.Send(fmt.Sprintf("Tracker Alerts: %s", key), html); err != nil {
			// Transport failures are recovered locally: keep the payload.
			logger.LogError("alert.send", err)
			row.Payload = html
			status = "stored"
		}
		if err := db.Create(&row).Error; err != nil {
			return AlertJobResult{}, err
		}
	}
	logger.LogAlertRun(status, len(keys))
	return AlertJobResult{Status: status, Count: len(keys)}, nil
}

func renderAlertHTML(scope string, entries []AtRiskEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div style="font-family:system-ui"><h3>At-Risk (%s)</h3><ul>`, scope)
	for _, e := range entries {
		due := ""
		if e.Goal.TargetDate != nil {
			due = e.Goal.TargetDate.UTC().Format("2006-01-02")
		}
		fmt.Fprintf(&b, "<li>%s - %d%% (due %s)</li>", e.Goal.PersonName, e.Goal.PercentComplete, due)
	}
	b.WriteString("</ul></div>")
	return b.String()
}
