package trajectory

import (
	"encoding/json"
	"fmt"
	"os"
)

// RoleConfig resolves the static, read-only progression configuration: the
// milestone template for a role and the next rung after it. Injected rather
// than read from globals so the engine stays testable.
type RoleConfig interface {
	MilestonesFor(roleName string) []string
	NextRoleFor(roleName string) (string, bool)
}

type staticRoleConfig struct {
	milestones map[string][]string
	next       map[string]string
}

// NewStaticRoleConfig wraps in-memory maps as a RoleConfig. Used by tests
// and by callers that source configuration elsewhere.
func NewStaticRoleConfig(milestones map[string][]string, next map[string]string) RoleConfig {
	if milestones == nil {
		milestones = map[string][]string{}
	}
	if next == nil {
		next = map[string]string{}
	}
	return &staticRoleConfig{milestones: milestones, next: next}
}

// LoadRoleConfig reads the role-milestones and role-next JSON files. A
// missing next-role file is treated as an empty mapping (auto-advance simply
// never chains); the milestone file is required.
func LoadRoleConfig(milestonesPath, nextPath string) (RoleConfig, error) {
	raw, err := os.ReadFile(milestonesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read role milestones: %w", err)
	}
	var milestones map[string][]string
	if err := json.Unmarshal(raw, &milestones); err != nil {
		return nil, fmt.Errorf("invalid role milestones format: %w", err)
	}

	next := map[string]string{}
	if nextPath != "" {
		if raw, err := os.ReadFile(nextPath); err == nil {
			if err := json.Unmarshal(raw, &next); err != nil {
				return nil, fmt.Errorf("invalid role next-map format: %w", err)
			}
		}
	}
	return NewStaticRoleConfig(milestones, next), nil
}

func (c *staticRoleConfig) MilestonesFor(roleName string) []string {
	return c.milestones[roleName]
}

func (c *staticRoleConfig) NextRoleFor(roleName string) (string, bool) {
	name, ok := c.next[roleName]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
