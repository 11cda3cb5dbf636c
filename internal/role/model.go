package role

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Role is a named rung in the progression ladder.
type Role struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:120;not null" json:"name"`
	Tier      int       `gorm:"not null" json:"tier"`
	ColorHex  string    `gorm:"size:10" json:"colorHex"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// TemplateVersion is a frozen revision of a role's milestone checklist.
// Milestones are stored as a JSON array; entries may be plain strings or
// objects carrying a "title" or "name" field.
type TemplateVersion struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	RoleID         string         `gorm:"size:36;index;not null" json:"roleId"`
	Version        int            `gorm:"not null" json:"version"`
	MilestonesJSON datatypes.JSON `gorm:"column:milestones_json" json:"milestonesJson"`
	CreatedBy      string         `gorm:"size:160" json:"createdBy"`
	CreatedAt      time.Time      `json:"createdAt"`
}

func (tv *TemplateVersion) BeforeCreate(tx *gorm.DB) error {
	if tv.ID == "" {
		tv.ID = uuid.NewString()
	}
	return nil
}

// MilestoneNames flattens the stored JSON list into plain names.
func (tv *TemplateVersion) MilestoneNames() ([]string, error) {
	if len(tv.MilestonesJSON) == 0 {
		return nil, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(tv.MilestonesJSON, &raw); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			names = append(names, s)
			continue
		}
		var obj struct {
			Title string `json:"title"`
			Name  string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return nil, err
		}
		label := obj.Title
		if label == "" {
			label = obj.Name
		}
		if label == "" {
			label = "Untitled milestone"
		}
		names = append(names, label)
	}
	return names, nil
}

// SeedDefaults inserts the standard role ladder if no roles exist yet.
func SeedDefaults(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Role{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	defaults := []Role{
		{Name: "Cell Dev Completer", Tier: 1, ColorHex: "#C084FC"},
		{Name: "BS Leader", Tier: 2, ColorHex: "#22C55E"},
		{Name: "HF Leader", Tier: 3, ColorHex: "#06B6D4"},
		{Name: "DCL", Tier: 4, ColorHex: "#F59E0B"},
		{Name: "Outreach Leader", Tier: 5, ColorHex: "#EF4444"},
	}
	for i := range defaults {
		if err := db.Create(&defaults[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
