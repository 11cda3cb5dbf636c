package trajectory

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"outreach-tracker/internal/audit"
	"outreach-tracker/internal/goalplan"
	"outreach-tracker/internal/role"
)

// autoAdvanceTargetDays is how far out the auto-created next goal is due.
const autoAdvanceTargetDays = 60

// AchieveAndAdvance is the achievement transition: when every milestone of
// the plan is complete it marks the plan ACHIEVED (idempotent), then
// consults the next-role mapping keyed by the current target role's name.
// If the next role resolves, a fresh PLANNED goal is created for the same
// person targeting it, due 60 days out, reusing the normal creation path.
// Plans with incomplete (or zero) milestones are left untouched.
func AchieveAndAdvance(db *gorm.DB, cfg RoleConfig, goalID string) error {
	var goal goalplan.GoalPlan
	err := db.Preload("Milestones").First(&goal, "id = ?", goalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: goal %s", ErrNotFound, goalID)
		}
		return err
	}

	total := len(goal.Milestones)
	if total == 0 || goalplan.CompletedCount(goal.Milestones) < total {
		return nil
	}

	var target role.Role
	if err := db.First(&target, "id = ?", goal.TargetRoleID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		// Target role missing: still achieve, but no chain to follow.
	}

	if goal.Status != goalplan.StatusAchieved {
		if err := db.Model(&goalplan.GoalPlan{}).
			Where("id = ?", goal.ID).
			Update("status", goalplan.StatusAchieved).Error; err != nil {
			return err
		}
		logger.LogStateTransition(goal.ID, goal.Status, goalplan.StatusAchieved, "all milestones complete")
		audit.Record(db, "goal.achieved", audit.Entry{Entity: "goal", EntityID: goal.ID})
	}

	nextName, ok := cfg.NextRoleFor(target.Name)
	if !ok {
		return nil
	}
	var next role.Role
	if err := db.First(&next, "name = ?", nextName).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	due := time.Now().AddDate(0, 0, autoAdvanceTargetDays)
	newID, err := CreateGoalPlan(db, cfg, goal.PersonID, next.ID, &due, "")
	if err != nil {
		return err
	}
	logger.LogAutoAdvance(goal.PersonID, target.Name, nextName, newID)
	audit.Record(db, "goal.autoNext", audit.Entry{
		Entity:   "goal",
		EntityID: newID,
		Meta:     map[string]interface{}{"from": target.Name, "to": nextName},
	})
	return nil
}
