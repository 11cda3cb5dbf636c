package audit

import (
	"encoding/json"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is an append-only trail of significant mutations.
type AuditLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Action    string         `gorm:"size:80;index;not null" json:"action"`
	UserEmail string         `gorm:"size:160" json:"userEmail"`
	Entity    string         `gorm:"size:40" json:"entity"`
	EntityID  string         `gorm:"size:36;index" json:"entityId"`
	Meta      datatypes.JSON `json:"meta"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Entry carries the optional context for one audit record.
type Entry struct {
	UserEmail string
	Entity    string
	EntityID  string
	Meta      map[string]interface{}
}

// Record writes one audit row. Best-effort: failures are logged, never
// propagated, so auditing can never abort the operation being audited.
func Record(db *gorm.DB, action string, e Entry) {
	var meta datatypes.JSON
	if len(e.Meta) > 0 {
		raw, err := json.Marshal(e.Meta)
		if err != nil {
			log.Printf("[Audit] failed to encode meta for %s: %v", action, err)
		} else {
			meta = raw
		}
	}
	row := AuditLog{
		Action:    action,
		UserEmail: e.UserEmail,
		Entity:    e.Entity,
		EntityID:  e.EntityID,
		Meta:      meta,
	}
	if err := db.Create(&row).Error; err != nil {
		log.Printf("[Audit] failed to record %s: %v", action, err)
	}
}
