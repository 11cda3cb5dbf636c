package goalplan

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPlanned    Status = "PLANNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusAchieved   Status = "ACHIEVED"
	StatusDeferred   Status = "DEFERRED"
)

// ActiveStatuses are the statuses that count as a person's current pursuit.
// At most one plan per person may hold one of them.
var ActiveStatuses = []Status{StatusPlanned, StatusInProgress}

func (s Status) Active() bool {
	return s == StatusPlanned || s == StatusInProgress
}

// GoalPlan is a person's pursuit of a target role, with a milestone checklist.
type GoalPlan struct {
	ID                string      `gorm:"primaryKey;size:36" json:"id"`
	PersonID          string      `gorm:"size:36;index;not null" json:"personId"`
	TargetRoleID      string      `gorm:"size:36;not null" json:"targetRoleId"`
	Status            Status      `gorm:"type:varchar(16);not null;default:'PLANNED'" json:"status"`
	TargetDate        *time.Time  `json:"targetDate"`
	Rationale         string      `gorm:"type:text" json:"rationale"`
	TemplateVersionID *string     `gorm:"size:36" json:"templateVersionId"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
	Milestones        []Milestone `gorm:"foreignKey:GoalPlanID" json:"milestones,omitempty"`
}

func (g *GoalPlan) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// Milestone is one checklist item within a goal plan. Position preserves the
// template order across inserts.
type Milestone struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	GoalPlanID string     `gorm:"size:36;index;not null" json:"goalPlanId"`
	Name       string     `gorm:"size:200;not null" json:"name"`
	Completed  bool       `gorm:"not null;default:false" json:"completed"`
	Position   int        `gorm:"not null;default:0" json:"position"`
	DueDate    *time.Time `json:"dueDate"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (m *Milestone) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// CompletedCount counts completed milestones.
func CompletedCount(milestones []Milestone) int {
	done := 0
	for _, m := range milestones {
		if m.Completed {
			done++
		}
	}
	return done
}

// PercentComplete returns 0-100. An empty checklist counts as 0%, never 100%.
func PercentComplete(milestones []Milestone) int {
	total := len(milestones)
	if total == 0 {
		return 0
	}
	done := CompletedCount(milestones)
	return int(math.Round(float64(done) / float64(total) * 100))
}
