package person

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Person is an individual progressing through the role ladder. Removal is a
// soft delete; removed people are excluded from every computation.
type Person struct {
	ID            string         `gorm:"primaryKey;size:36" json:"id"`
	FullName      string         `gorm:"size:160;not null" json:"fullName"`
	CoachEmail    string         `gorm:"size:160;index" json:"coachEmail"`
	OutreachID    *string        `gorm:"size:36;index" json:"outreachId"`
	CurrentRoleID *string        `gorm:"size:36" json:"currentRoleId"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
	Outreach      *Outreach      `gorm:"foreignKey:OutreachID" json:"-"`
}

func (p *Person) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Outreach is a community group a person can belong to.
type Outreach struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:160;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (o *Outreach) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// CoachLimit maps a coach email to a WIP capacity. Coaches without a row use
// the engine's default limit.
type CoachLimit struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CoachEmail string    `gorm:"uniqueIndex;size:160;not null" json:"coachEmail"`
	Limit      int       `gorm:"column:wip_limit;not null" json:"limit"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
