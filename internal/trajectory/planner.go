package trajectory

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"outreach-tracker/internal/audit"
	"outreach-tracker/internal/goalplan"
	"outreach-tracker/internal/person"
	"outreach-tracker/internal/role"
)

// CreateGoalPlan starts a new pursuit for a person. Any prior PLANNED or
// IN_PROGRESS plan is moved to DEFERRED first, then the new plan is created
// in PLANNED status with its checklist copied from the target role's
// template. The transaction opens by writing the person row; the row lock
// that write takes is held until commit, so concurrent creates for the same
// person serialize even when no active plan exists yet, and the
// single-active-plan invariant holds.
func CreateGoalPlan(db *gorm.DB, cfg RoleConfig, personID, targetRoleID string, targetDate *time.Time, rationale string) (string, error) {
	if personID == "" || targetRoleID == "" {
		return "", fmt.Errorf("%w: personId and targetRoleId required", ErrInvalidInput)
	}

	var target role.Role
	if err := db.First(&target, "id = ?", targetRoleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: role %s", ErrNotFound, targetRoleID)
		}
		return "", err
	}

	var goalID string
	err := db.Transaction(func(tx *gorm.DB) error {
		// Lock the person row for the rest of the transaction. Doubles as
		// the existence check: zero rows means missing or removed.
		lock := tx.Model(&person.Person{}).
			Where("id = ?", personID).
			Update("updated_at", time.Now())
		if lock.Error != nil {
			return lock.Error
		}
		if lock.RowsAffected == 0 {
			return fmt.Errorf("%w: person %s", ErrNotFound, personID)
		}
		if err := tx.Model(&goalplan.GoalPlan{}).
			Where("person_id = ? AND status IN ?", personID, goalplan.ActiveStatuses).
			Update("status", goalplan.StatusDeferred).Error; err != nil {
			return err
		}
		g := goalplan.GoalPlan{
			PersonID:     personID,
			TargetRoleID: targetRoleID,
			Status:       goalplan.StatusPlanned,
			TargetDate:   targetDate,
			Rationale:    rationale,
		}
		if err := tx.Create(&g).Error; err != nil {
			return err
		}
		for i, name := range cfg.MilestonesFor(target.Name) {
			m := goalplan.Milestone{GoalPlanID: g.ID, Name: name, Position: i}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
		}
		goalID = g.ID
		return nil
	})
	if err != nil {
		return "", err
	}

	audit.Record(db, "goal.create", audit.Entry{
		Entity:   "person",
		EntityID: personID,
		Meta:     map[string]interface{}{"goalId": goalID, "targetRole": target.Name},
	})
	logger.LogStateTransition(goalID, "", goalplan.StatusPlanned, "goal created")
	return goalID, nil
}

// SetMilestoneCompletion sets one milestone's completed flag. If every
// milestone under the owning plan is now complete, the plan transitions to
// ACHIEVED (idempotent). The just-written value participates in the check;
// the stored row is never trusted over it.
func SetMilestoneCompletion(db *gorm.DB, milestoneID string, completed bool) (*goalplan.Milestone, error) {
	var ms goalplan.Milestone
	if err := db.First(&ms, "id = ?", milestoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: milestone %s", ErrNotFound, milestoneID)
		}
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&goalplan.Milestone{}).
			Where("id = ?", ms.ID).
			Update("completed", completed).Error; err != nil {
			return err
		}
		ms.Completed = completed

		var siblings []goalplan.Milestone
		if err := tx.Where("goal_plan_id = ?", ms.GoalPlanID).Find(&siblings).Error; err != nil {
			return err
		}
		allDone := len(siblings) > 0
		for _, m := range siblings {
			done := m.Completed
			if m.ID == ms.ID {
				done = completed
			}
			if !done {
				allDone = false
				break
			}
		}
		if !allDone {
			return nil
		}
		res := tx.Model(&goalplan.GoalPlan{}).
			Where("id = ? AND status <> ?", ms.GoalPlanID, goalplan.StatusAchieved).
			Update("status", goalplan.StatusAchieved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			logger.LogStateTransition(ms.GoalPlanID, "", goalplan.StatusAchieved, "all milestones complete")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	audit.Record(db, "milestone.toggle", audit.Entry{
		Entity:   "milestone",
		EntityID: ms.ID,
		Meta:     map[string]interface{}{"completed": completed},
	})
	return &ms, nil
}

// CompleteNextMilestone completes the first incomplete milestone of the
// person's active goal, in stored order. Returns false without error when
// every milestone is already complete. Completing the last milestone runs
// the achievement-and-advance check.
func CompleteNextMilestone(db *gorm.DB, cfg RoleConfig, personID string) (bool, error) {
	if personID == "" {
		return false, fmt.Errorf("%w: personId required", ErrInvalidInput)
	}
	goal, err := findActiveGoal(db, personID)
	if err != nil {
		return false, err
	}

	var next *goalplan.Milestone
	for i := range goal.Milestones {
		if !goal.Milestones[i].Completed {
			next = &goal.Milestones[i]
			break
		}
	}
	if next == nil {
		return false, nil
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&goalplan.Milestone{}).
			Where("id = ?", next.ID).
			Update("completed", true).Error; err != nil {
			return err
		}
		if goal.Status == goalplan.StatusPlanned {
			if err := tx.Model(&goalplan.GoalPlan{}).
				Where("id = ?", goal.ID).
				Update("status", goalplan.StatusInProgress).Error; err != nil {
				return err
			}
			logger.LogStateTransition(goal.ID, goalplan.StatusPlanned, goalplan.StatusInProgress, "first milestone completed")
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	audit.Record(db, "milestone.completeNext", audit.Entry{
		Entity:   "person",
		EntityID: personID,
		Meta:     map[string]interface{}{"milestoneId": next.ID},
	})
	if err := AchieveAndAdvance(db, cfg, goal.ID); err != nil {
		return false, err
	}
	return true, nil
}

// BatchUpdateProgress slides the person's active goal to roughly the target
// percentage without naming milestone identities. Already-completed
// milestones keep their flag preferentially (stable partition), then the
// first round(pct/100*total) entries are marked complete and the rest
// incomplete. A goal with an empty checklist still transitions
// PLANNED -> IN_PROGRESS on a nonzero percent and counts as applied.
// Returns false when the person has no active goal.
func BatchUpdateProgress(db *gorm.DB, cfg RoleConfig, personID string, pct int) (bool, error) {
	if personID == "" {
		return false, fmt.Errorf("%w: personId required", ErrInvalidInput)
	}
	if pct < 0 || pct > 100 {
		return false, fmt.Errorf("%w: percent must be 0-100, got %d", ErrInvalidInput, pct)
	}

	goal, err := findActiveGoal(db, personID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	total := len(goal.Milestones)

	// Stable partition: completed first, each side in stored order.
	ordered := make([]goalplan.Milestone, 0, total)
	for _, m := range goal.Milestones {
		if m.Completed {
			ordered = append(ordered, m)
		}
	}
	for _, m := range goal.Milestones {
		if !m.Completed {
			ordered = append(ordered, m)
		}
	}

	targetCount := int(math.Round(float64(pct) / 100 * float64(total)))
	err = db.Transaction(func(tx *gorm.DB) error {
		for i, m := range ordered {
			want := i < targetCount
			if m.Completed == want {
				continue
			}
			if err := tx.Model(&goalplan.Milestone{}).
				Where("id = ?", m.ID).
				Update("completed", want).Error; err != nil {
				return err
			}
		}
		if pct > 0 && goal.Status == goalplan.StatusPlanned {
			if err := tx.Model(&goalplan.GoalPlan{}).
				Where("id = ?", goal.ID).
				Update("status", goalplan.StatusInProgress).Error; err != nil {
				return err
			}
			logger.LogStateTransition(goal.ID, goalplan.StatusPlanned, goalplan.StatusInProgress, "batch progress update")
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if err := AchieveAndAdvance(db, cfg, goal.ID); err != nil {
		return false, err
	}
	return true, nil
}

// findActiveGoal loads the person's most recent PLANNED/IN_PROGRESS goal
// with its milestones in stored order.
func findActiveGoal(db *gorm.DB, personID string) (*goalplan.GoalPlan, error) {
	var goal goalplan.GoalPlan
	err := db.Preload("Milestones", func(db *gorm.DB) *gorm.DB {
		return db.Order("position, created_at")
	}).
		Where("person_id = ? AND status IN ?", personID, goalplan.ActiveStatuses).
		Order("created_at DESC").
		First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no active goal for person %s", ErrNotFound, personID)
		}
		return nil, err
	}
	return &goal, nil
}
