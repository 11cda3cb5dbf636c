package trajectory

import (
	"time"

	"gorm.io/gorm"

	"outreach-tracker/internal/activity"
	"outreach-tracker/internal/goalplan"
	"outreach-tracker/internal/person"
	"outreach-tracker/internal/role"
)

// LoadGoalSnapshots denormalizes goal plans with the given statuses into the
// view the detector, scorer, and alert job share: person and outreach names,
// percent complete, last activity, and weekly streak. Goals whose person has
// been removed are dropped.
func LoadGoalSnapshots(db *gorm.DB, statuses []goalplan.Status, now time.Time) ([]GoalSnapshot, error) {
	var goals []goalplan.GoalPlan
	err := db.Preload("Milestones").
		Where("status IN ?", statuses).
		Order("created_at, id").
		Find(&goals).Error
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return nil, nil
	}

	personIDs := make([]string, 0, len(goals))
	seen := make(map[string]bool)
	for _, g := range goals {
		if !seen[g.PersonID] {
			seen[g.PersonID] = true
			personIDs = append(personIDs, g.PersonID)
		}
	}

	var people []person.Person
	if err := db.Preload("Outreach").Where("id IN ?", personIDs).Find(&people).Error; err != nil {
		return nil, err
	}
	peopleByID := make(map[string]person.Person, len(people))
	for _, p := range people {
		peopleByID[p.ID] = p
	}

	var roles []role.Role
	if err := db.Find(&roles).Error; err != nil {
		return nil, err
	}
	roleNames := make(map[string]string, len(roles))
	for _, r := range roles {
		roleNames[r.ID] = r.Name
	}

	lastActivity, records, err := loadActivity(db, personIDs, now)
	if err != nil {
		return nil, err
	}
	streaks := ComputeWeeklyStreaksAt(records, DefaultLookbackWeeks, now)

	snaps := make([]GoalSnapshot, 0, len(goals))
	for _, g := range goals {
		p, ok := peopleByID[g.PersonID]
		if !ok {
			continue // removed person
		}
		snap := GoalSnapshot{
			GoalID:          g.ID,
			PersonID:        p.ID,
			PersonName:      p.FullName,
			CoachEmail:      p.CoachEmail,
			TargetRoleName:  roleNames[g.TargetRoleID],
			Status:          g.Status,
			TargetDate:      g.TargetDate,
			PercentComplete: goalplan.PercentComplete(g.Milestones),
			StreakWeeks:     streaks[p.ID],
		}
		if p.Outreach != nil {
			snap.OutreachName = p.Outreach.Name
		}
		if last, ok := lastActivity[p.ID]; ok {
			t := last
			snap.LastActivity = &t
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// loadActivity returns the most recent activity timestamp per person plus
// the records inside the streak lookback window.
func loadActivity(db *gorm.DB, personIDs []string, now time.Time) (map[string]time.Time, []ActivityRecord, error) {
	var logs []activity.ActivityLog
	err := db.Select("person_id", "date").
		Where("person_id IN ?", personIDs).
		Find(&logs).Error
	if err != nil {
		return nil, nil, err
	}

	window := now.Add(-time.Duration(DefaultLookbackWeeks) * week)
	last := make(map[string]time.Time)
	var records []ActivityRecord
	for _, l := range logs {
		if prev, ok := last[l.PersonID]; !ok || l.Date.After(prev) {
			last[l.PersonID] = l.Date
		}
		if !l.Date.Before(window) {
			records = append(records, ActivityRecord{PersonID: l.PersonID, Date: l.Date})
		}
	}
	return last, records, nil
}
