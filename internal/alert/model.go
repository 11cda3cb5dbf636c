package alert

import "time"

// Log types written by the alert batch job.
const (
	TypePreview = "preview"
	TypeAtRisk  = "atrisk"
)

// AlertLog is one append-only record of an alert run payload. Scope is the
// outreach group the payload covers.
type AlertLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"size:20;index;not null" json:"type"`
	Scope     string    `gorm:"size:160" json:"scope"`
	Payload   string    `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}
