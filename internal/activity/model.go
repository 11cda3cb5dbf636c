package activity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityLog is one logged interaction for a person. Append-only; never
// mutated after creation.
type ActivityLog struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	PersonID  string    `gorm:"size:36;index;not null" json:"personId"`
	Type      string    `gorm:"size:60;not null" json:"type"`
	Date      time.Time `gorm:"index;not null" json:"date"`
	Month     time.Time `gorm:"index" json:"month"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Month.IsZero() {
		a.Month = MonthBucket(a.Date)
	}
	return nil
}

// MonthBucket returns the first of the month (UTC) containing t, used for
// reporting rollups.
func MonthBucket(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}
