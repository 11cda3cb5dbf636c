package trajectory

import (
	"log"

	"outreach-tracker/internal/goalplan"
)

// EngineLogger provides structured logging for the trajectory engine. It
// wraps the standard log package to keep output consistent and parseable.
type EngineLogger struct{}

func NewEngineLogger() *EngineLogger {
	return &EngineLogger{}
}

var logger = NewEngineLogger()

func (l *EngineLogger) log(level, category, format string, args ...interface{}) {
	prefix := "[Trajectory][" + level + "][" + category + "] "
	log.Printf(prefix+format, args...)
}

// LogStateTransition logs a goal plan status change.
func (l *EngineLogger) LogStateTransition(goalID string, from, to goalplan.Status, reason string) {
	l.log("INFO", "STATE", "Goal %s transitioned: %s -> %s | Reason: %s", goalID, from, to, reason)
}

// LogAutoAdvance logs the automatic creation of the next goal in the ladder.
func (l *EngineLogger) LogAutoAdvance(personID, fromRole, toRole, newGoalID string) {
	l.log("INFO", "ADVANCE", "Person %s advanced: %s -> %s | New goal: %s", personID, fromRole, toRole, newGoalID)
}

// LogAlertRun logs the outcome of one alert batch run.
func (l *EngineLogger) LogAlertRun(status string, count int) {
	l.log("INFO", "ALERTS", "Alert run finished | Status: %s | Groups: %d", status, count)
}

// LogError logs engine failures with operational context.
func (l *EngineLogger) LogError(operation string, err error) {
	l.log("ERROR", "SYSTEM", "Operation '%s' failed | Error: %v", operation, err)
}
