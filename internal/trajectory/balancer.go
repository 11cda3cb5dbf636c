package trajectory

import (
	"gorm.io/gorm"

	"outreach-tracker/internal/goalplan"
	"outreach-tracker/internal/person"
)

// DefaultCoachLimit is the WIP capacity assumed for coaches with no
// CoachLimit row.
const DefaultCoachLimit = 8

// UnassignedCoach is the sentinel bucket for people with no coach.
const UnassignedCoach = "unassigned"

// CoachLoad is one coach's active load: the people they coach whose goal
// plan is currently IN_PROGRESS.
type CoachLoad struct {
	Coach     string   `json:"coach"`
	PersonIDs []string `json:"personIds"`
}

// Suggestion is one proposed move of people between coaches.
type Suggestion struct {
	From      string   `json:"from"`
	To        string   `json:"to"`
	PersonIDs []string `json:"personIds"`
}

// SuggestRedistribution computes greedy first-fit moves from over-capacity
// coaches to under-capacity ones. Coaches with a zero or negative limit are
// excluded from both sides. Ties break by input order; the feasibility
// invariants are that no coach donates to itself and no over-capacity coach
// gives up more people than its overage.
func SuggestRedistribution(loads []CoachLoad, limits map[string]int) []Suggestion {
	type overloaded struct {
		coach  string
		ids    []string
		overBy int
	}
	type underloaded struct {
		coach string
		slots int
	}

	var over []overloaded
	var under []underloaded
	for _, l := range loads {
		limit, ok := limits[l.Coach]
		if !ok {
			limit = DefaultCoachLimit
		}
		if limit <= 0 {
			continue
		}
		n := len(l.PersonIDs)
		switch {
		case n > limit:
			ids := append([]string(nil), l.PersonIDs...)
			over = append(over, overloaded{coach: l.Coach, ids: ids, overBy: n - limit})
		case n < limit:
			under = append(under, underloaded{coach: l.Coach, slots: limit - n})
		}
	}

	var suggestions []Suggestion
	for i := range over {
		o := &over[i]
		need := o.overBy
		for j := range under {
			if need <= 0 {
				break
			}
			u := &under[j]
			if u.slots <= 0 || u.coach == o.coach {
				continue
			}
			take := min(need, u.slots)
			moved := o.ids[:take]
			o.ids = o.ids[take:]
			suggestions = append(suggestions, Suggestion{From: o.coach, To: u.coach, PersonIDs: moved})
			need -= take
			u.slots -= take
		}
	}
	return suggestions
}

// LoadCoachLoads groups people by coach email ("unassigned" when blank) and
// keeps only those with an IN_PROGRESS goal plan. Coach order follows
// storage order of the people table, so suggestion output is deterministic
// for a given dataset.
func LoadCoachLoads(db *gorm.DB) ([]CoachLoad, error) {
	var people []person.Person
	if err := db.Select("id", "coach_email").Order("created_at, id").Find(&people).Error; err != nil {
		return nil, err
	}

	var activeIDs []string
	if err := db.Model(&goalplan.GoalPlan{}).
		Where("status = ?", goalplan.StatusInProgress).
		Pluck("person_id", &activeIDs).Error; err != nil {
		return nil, err
	}
	active := make(map[string]bool, len(activeIDs))
	for _, id := range activeIDs {
		active[id] = true
	}

	var order []string
	byCoach := make(map[string][]string)
	for _, p := range people {
		coach := p.CoachEmail
		if coach == "" {
			coach = UnassignedCoach
		}
		if _, seen := byCoach[coach]; !seen {
			order = append(order, coach)
			byCoach[coach] = nil
		}
		if active[p.ID] {
			byCoach[coach] = append(byCoach[coach], p.ID)
		}
	}

	loads := make([]CoachLoad, 0, len(order))
	for _, coach := range order {
		loads = append(loads, CoachLoad{Coach: coach, PersonIDs: byCoach[coach]})
	}
	return loads, nil
}

// LoadCoachLimits reads the configured WIP limits keyed by coach email.
func LoadCoachLimits(db *gorm.DB) (map[string]int, error) {
	var rows []person.CoachLimit
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	limits := make(map[string]int, len(rows))
	for _, r := range rows {
		limits[r.CoachEmail] = r.Limit
	}
	return limits, nil
}

// ApplyRedistribution reassigns the named people's coach field in bulk.
// Goal-plan state is untouched. Returns the number of people reassigned.
func ApplyRedistribution(db *gorm.DB, moves []Suggestion) (int, error) {
	total := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, m := range moves {
			if len(m.PersonIDs) == 0 || m.From == m.To {
				continue
			}
			to := m.To
			if to == UnassignedCoach {
				to = ""
			}
			res := tx.Model(&person.Person{}).
				Where("id IN ?", m.PersonIDs).
				Update("coach_email", to)
			if res.Error != nil {
				return res.Error
			}
			total += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
