package trajectory

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"outreach-tracker/internal/audit"
	"outreach-tracker/internal/goalplan"
	"outreach-tracker/internal/role"
)

// MigrateGoalTemplate swaps a goal plan's milestone set for the given
// template version's entries. New milestones whose names case-insensitively
// match an existing one inherit its completed flag, so progress survives
// template revisions. The replace is delete-all-then-recreate inside a
// single transaction; a reader never observes the plan with zero milestones.
// Returns the number of milestones after migration.
func MigrateGoalTemplate(db *gorm.DB, goalID, templateVersionID string) (int, error) {
	if goalID == "" || templateVersionID == "" {
		return 0, fmt.Errorf("%w: goalId and templateVersionId required", ErrInvalidInput)
	}

	var tv role.TemplateVersion
	if err := db.First(&tv, "id = ?", templateVersionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: template version %s", ErrNotFound, templateVersionID)
		}
		return 0, err
	}
	var goal goalplan.GoalPlan
	if err := db.Preload("Milestones").First(&goal, "id = ?", goalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: goal %s", ErrNotFound, goalID)
		}
		return 0, err
	}

	names, err := tv.MilestoneNames()
	if err != nil {
		return 0, fmt.Errorf("%w: malformed template milestones: %v", ErrInvalidInput, err)
	}

	next := make([]goalplan.Milestone, 0, len(names))
	for i, name := range names {
		m := goalplan.Milestone{GoalPlanID: goal.ID, Name: name, Position: i}
		for _, existing := range goal.Milestones {
			if strings.EqualFold(existing.Name, name) {
				m.Completed = existing.Completed
				break
			}
		}
		next = append(next, m)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("goal_plan_id = ?", goal.ID).Delete(&goalplan.Milestone{}).Error; err != nil {
			return err
		}
		for i := range next {
			if err := tx.Create(&next[i]).Error; err != nil {
				return err
			}
		}
		return tx.Model(&goalplan.GoalPlan{}).
			Where("id = ?", goal.ID).
			Update("template_version_id", tv.ID).Error
	})
	if err != nil {
		return 0, err
	}

	audit.Record(db, "goal.migrateVersion", audit.Entry{
		Entity:   "goal",
		EntityID: goal.ID,
		Meta:     map[string]interface{}{"templateVersionId": tv.ID},
	})
	return len(next), nil
}
