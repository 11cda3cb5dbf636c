package trajectory

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"outreach-tracker/internal/activity"
	"outreach-tracker/internal/alert"
	"outreach-tracker/internal/audit"
	"outreach-tracker/internal/goalplan"
	"outreach-tracker/internal/person"
	"outreach-tracker/internal/role"
)

var dbSeq int64

func setupEngineDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique shared-cache name so every pooled connection sees the same
	// in-memory database, isolated per test.
	dsn := fmt.Sprintf("file:engine%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	err = conn.AutoMigrate(
		&person.Person{}, &person.Outreach{}, &person.CoachLimit{},
		&role.Role{}, &role.TemplateVersion{},
		&goalplan.GoalPlan{}, &goalplan.Milestone{},
		&activity.ActivityLog{}, &alert.AlertLog{}, &audit.AuditLog{},
	)
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return conn
}

func seedPerson(t *testing.T, db *gorm.DB, name string) person.Person {
	t.Helper()
	p := person.Person{FullName: name}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to seed person: %v", err)
	}
	return p
}

func seedRole(t *testing.T, db *gorm.DB, name string, tier int) role.Role {
	t.Helper()
	r := role.Role{Name: name, Tier: tier}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("failed to seed role: %v", err)
	}
	return r
}

func ladderConfig() RoleConfig {
	return NewStaticRoleConfig(
		map[string][]string{
			"BS Leader": {"Lead a study", "Host a gathering", "Complete training"},
			"HF Leader": {"Shadow a leader", "Run a session"},
		},
		map[string]string{"BS Leader": "HF Leader"},
	)
}

func activeGoals(t *testing.T, db *gorm.DB, personID string) []goalplan.GoalPlan {
	t.Helper()
	var goals []goalplan.GoalPlan
	err := db.Where("person_id = ? AND status IN ?", personID, goalplan.ActiveStatuses).
		Find(&goals).Error
	if err != nil {
		t.Fatalf("failed to query goals: %v", err)
	}
	return goals
}

func TestCreateGoalPlan_MaterializesTemplate(t *testing.T) {
	db := setupEngineDB(t)
	p := seedPerson(t, db, "Ada")
	r := seedRole(t, db, "BS Leader", 2)

	goalID, err := CreateGoalPlan(db, ladderConfig(), p.ID, r.ID, nil, "ready for more")
	if err != nil {
		t.Fatalf("CreateGoalPlan failed: %v", err)
	}

	var goal goalplan.GoalPlan
	if err := db.Preload("Milestones").First(&goal, "id = ?", goalID).Error; err != nil {
		t.Fatalf("fetch goal: %v", err)
	}
	if goal.Status != goalplan.StatusPlanned {
		t.Errorf("expected PLANNED, got %s", goal.Status)
	}
	if len(goal.Milestones) != 3 {
		t.Fatalf("expected 3 milestones from template, got %d", len(goal.Milestones))
	}
	for _, m := range goal.Milestones {
		if m.Completed {
			t.Errorf("milestone %q must start incomplete", m.Name)
		}
	}
}

func TestCreateGoalPlan_DefersPriorActivePlans(t *testing.T) {
	db := setupEngineDB(t)
	p := seedPerson(t, db, "Ada")
	r := seedRole(t, db, "BS Leader", 2)
	cfg := ladderConfig()

	first, err := CreateGoalPlan(db, cfg, p.ID, r.ID, nil, "")
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := CreateGoalPlan(db, cfg, p.ID, r.ID, nil, ""); err != nil {
		t.Fatalf("second create: %v", err)
	}
	if _, err := CreateGoalPlan(db, cfg, p.ID, r.ID, nil, ""); err != nil {
		t.Fatalf("third create: %v", err)
	}

	if got := activeGoals(t, db, p.ID); len(got) != 1 {
		t.Errorf("expected exactly one active goal after repeated creates, got %d", len(got))
	}
	var old goalplan.GoalPlan
	if err := db.First(&old, "id = ?", first).Error; err != nil {
		t.Fatalf("fetch first goal: %v", err)
	}
	if old.Status != goalplan.StatusDeferred {
		t.Errorf("expected first plan DEFERRED, got %s", old.Status)
	}
}

func TestCreateGoalPlan_RemovedPersonRejected(t *testing.T) {
	db := setupEngineDB(t)
	p := seedPerson(t, db, "Ada")
	r := seedRole(t, db, "BS Leader", 2)
	cfg := ladderConfig()

	if err := db.Delete(&p).Error; err != nil {
		t.Fatalf("remove person: %v", err)
	}
	if _, err := CreateGoalPlan(db, cfg, p.ID, r.ID, nil, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for removed person, got %v", err)
	}
	var count int64
	db.Model(&goalplan.GoalPlan{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no goals for removed person, got %d", count)
	}
}

func TestCreateGoalPlan_WritesPersonRowInTransaction(t *testing.T) {
	db := setupEngineDB(t)
	p := seedPerson(t, db, "Ada")
	r := seedRole(t, db, "BS Leader", 2)
	cfg := ladderConfig()
	before := p.UpdatedAt

	time.Sleep(10 * time.Millisecond)
	if _, err := CreateGoalPlan(db, cfg, p.ID, r.ID, nil, ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	// The create transaction opens with a write on the person row; that
	// write is the per-person serialization point for concurrent creates.
	var reloaded person.Person
	if err := db.First(&reloaded, "id = ?", p.ID).Error; err != nil {
		t.Fatalf("reload person: %v", err)
	}
	if !reloaded.UpdatedAt.After(before) {
		t.Errorf("expected person row written during create, updated_at still %v", reloaded.UpdatedAt)
	}
}

func TestCreateGoalPlan_Validation(t *testing.T) {
	db := setupEngineDB(t)
	p := seedPerson(t, db, "Ada")
	r := seedRole(t, db, "BS Leader", 2)
	cfg := ladderConfig()

	if _, err := CreateGoalPlan(db, cfg, "", r.ID, nil, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for missing person, got %v", err)
	}
	if _, err := CreateGoalPlan(db, cfg, p.ID, "no-such-role", nil, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing role, got %v", err)
	}
	if _, err := CreateGoalPlan(db, cfg, "no-such-person", r.ID, nil, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing person, got %v", err)
	}
	// Failed creates must not leave partial writes
	var count int64
	db.Model(&goalplan.GoalPlan{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no goals after failed creates, got %d", count)
	}
}

func TestSetMilestoneCompletion_AchievesOnLastToggle(t *testing.T) {
	db := setupEngineDB(t)
	p := seedPerson(t, db, "Ada")
	r := seedRole(t, db, "HF Leader", 3)
	cfg := ladderConfig()

	goalID, err := CreateGoalPlan(db, cfg, p.ID, r.ID, nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var milestones []goalplan.Milestone
	if err := db.Where("goal_plan_id = ?", goalID).Order("position").Find(&milestones).Error; err != nil {
		t.Fatalf("fetch milestones: %v", err)
	}
	if len(milestones) != 2 {
		t.Fatalf("expected 2 milestones, got %d", len(milestones))
	}

	if _, err := SetMilestoneCompletion(db, milestones[0].ID, true); err != nil {
		t.Fatalf("toggle first: %v", err)
	}
	var goal goalplan.GoalPlan
	db.First(&goal, "id = ?", goalID)
	if goal.Status == goalplan.StatusAchieved {
		t.Fatalf("goal achieved too early")
	}

	if _, err := SetMilestoneCompletion(db, milestones[1].ID, true); err != nil {
		t.Fatalf("toggle second: %v", err)
	}
	db.First(&goal, "id = ?", goalID)
	if goal.Status != goalplan.StatusAchieved {
		t.Errorf("expected ACHIEVED after last milestone, got %s", goal.Status)
	}

	// Idempotent: toggling again keeps ACHIEVED and does not error
	if _, err := SetMilestoneCompletion(db, milestones[1].ID, true); err != nil {
		t.Fatalf("re-toggle: %v", err)
	}
}

func TestSetMilestoneCompletion_NotFound(t *testing.T) {
	db := setupEngineDB(t)
	if _, err := SetMilestoneCompletion(db, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCompleteNextMilestone_EndToEndAdvance(t *testing.T) {
	db := setupEngineDB(t)
	p := seedPerson(t, db, "Ada")
	bs := seedRole(t, db, "BS Leader", 2)
	seedRole(t, db, "HF Leader", 3)
	cfg := ladderConfig()

	goalID, err := CreateGoalPlan(db, cfg, p.ID, bs.ID, nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// First completion moves PLANNED -> IN_PROGRESS
	advanced, err := CompleteNextMilestone(db, cfg, p.ID)
	if err != nil || !advanced {
		t.Fatalf("first complete-next: advanced=%v err=%v", advanced, err)
	}
	var goal goalplan.GoalPlan
	db.First(&goal, "id = ?", goalID)
	if goal.Status != goalplan.StatusInProgress {
		t.Errorf("expected IN_PROGRESS after first completion, got %s", goal.Status)
	}

	for i := 0; i < 2; i++ {
		if _, err := CompleteNextMilestone(db, cfg, p.ID); err != nil {
			t.Fatalf("complete-next %d: %v", i+2, err)
		}
	}

	db.First(&goal, "id = ?", goalID)
	if goal.Status != goalplan.StatusAchieved {
		t.Errorf("expected ACHIEVED after third completion, got %s", goal.Status)
	}

	// Auto-advance must have opened a PLANNED goal for the next rung
	next := activeGoals(t, db, p.ID)
	if len(next) != 1 {
		t.Fatalf("expected one new active goal, got %d", len(next))
	}
	if next[0].Status != goalplan.StatusPlanned {
		t.Errorf("expected new goal PLANNED, got %s", next[0].Status)
	}
	if next[0].TargetDate == nil {
		t.Fatalf("expected auto-advance target date")
	}
	days := time.Until(*next[0].TargetDate).Hours() / 24
	if days < 59 || days > 61 {
		t.Errorf("expected target date ~60 days out, got %.1f days", days)
	}
	var nextRole role.Role
	db.First(&nextRole, "id = ?", next[0].TargetRoleID)
	if nextRole.Name != "HF Leader" {
		t.Errorf("expected next goal to target HF Leader, got %s", nextRole.Name)
	}
}

func TestCompleteNextMilestone_NoopWhenAllComplete(t *testing.T) {
	db := setupEngineDB(t)
	p := seedPerson(t, db, "Ada")
	r := seedRole(t, db, "HF Leader", 3)
	// No next mapping for HF Leader, so no auto-advance goal appears.
	cfg := ladderConfig()

	if _, err := CreateGoalPlan(db, cfg, p.ID, r.ID, nil, ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := CompleteNextMilestone(db, cfg, p.ID); err != nil {
			t.Fatalf("complete-next: %v", err)
		}
	}
	// Goal achieved; no active plan remains, so the next call reports NotFound
	_, err := CompleteNextMilestone(db, cfg, p.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound with no active goal, got %v", err)
	}
}

func TestBatchUpdateProgress_RoundsAndPartitions(t *testing.T) {
	db := setupEngineDB(t)
	p := seedPerson(t, db, "Ada")
	r := seedRole(t, db, "Planner", 1)
	cfg := NewStaticRoleConfig(map[string][]string{
		"Planner": {"m1", "m2", "m3", "m4"},
	}, nil)

	goalID, err := CreateGoalPlan(db, cfg, p.ID, r.ID, nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Pre-complete the third milestone; partition should keep it complete.
	var milestones []goalplan.Milestone
	db.Where("goal_plan_id = ?", goalID).Order("position").Find(&milestones)
	if _, err := SetMilestoneCompletion(db, milestones[2].ID, true); err != nil {
		t.Fatalf("pre-complete: %v", err)
	}

	applied, err := BatchUpdateProgress(db, cfg, p.ID, 50)
	if err != nil || !applied {
		t.Fatalf("batch update: applied=%v err=%v", applied, err)
	}

	db.Where("goal_plan_id = ?", goalID).Order("position").Find(&milestones)
	done := 0
	for _, m := range milestones {
		if m.Completed {
			done++
		}
	}
	if done != 2 {
		t.Errorf("expected exactly 2 complete milestones at 50%%, got %d", done)
	}
	if !milestones[2].Completed {
		t.Errorf("already-complete milestone should remain complete")
	}

	var goal goalplan.GoalPlan
	db.First(&goal, "id = ?", goalID)
	if goal.Status != goalplan.StatusInProgress {
		t.Errorf("expected IN_PROGRESS after nonzero batch update, got %s", goal.Status)
	}
}

func TestBatchUpdateProgress_HundredPercentAchieves(t *testing.T) {
	db := setupEngineDB(t)
	p := seedPerson(t, db, "Ada")
	r := seedRole(t, db, "HF Leader", 3)
	cfg := ladderConfig()

	goalID, err := CreateGoalPlan(db, cfg, p.ID, r.ID, nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := BatchUpdateProgress(db, cfg, p.ID, 100); err != nil {
		t.Fatalf("batch update: %v", err)
	}
	var goal goalplan.GoalPlan
	db.First(&goal, "id = ?", goalID)
	if goal.Status != goalplan.StatusAchieved {
		t.Errorf("expected ACHIEVED at 100%%, got %s", goal.Status)
	}
}

func TestBatchUpdateProgress_EmptyChecklistStillStarts(t *testing.T) {
	db := setupEngineDB(t)
	p := seedPerson(t, db, "Ada")
	r := seedRole(t, db, "Scout", 1)
	cfg := NewStaticRoleConfig(nil, nil) // no template for the role

	goalID, err := CreateGoalPlan(db, cfg, p.ID, r.ID, nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	applied, err := BatchUpdateProgress(db, cfg, p.ID, 40)
	if err != nil || !applied {
		t.Fatalf("expected empty-checklist update to apply, applied=%v err=%v", applied, err)
	}
	var goal goalplan.GoalPlan
	db.First(&goal, "id = ?", goalID)
	if goal.Status != goalplan.StatusInProgress {
		t.Errorf("expected IN_PROGRESS after nonzero percent, got %s", goal.Status)
	}
}

func TestBatchUpdateProgress_Validation(t *testing.T) {
	db := setupEngineDB(t)
	p := seedPerson(t, db, "Ada")
	cfg := ladderConfig()

	if _, err := BatchUpdateProgress(db, cfg, p.ID, 101); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for pct>100, got %v", err)
	}
	if _, err := BatchUpdateProgress(db, cfg, p.ID, -1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for pct<0, got %v", err)
	}
	// No active goal: reported as not applied, not an error
	applied, err := BatchUpdateProgress(db, cfg, p.ID, 50)
	if err != nil || applied {
		t.Errorf("expected applied=false without active goal, got applied=%v err=%v", applied, err)
	}
}
