package trajectory

import "time"

// DefaultLookbackWeeks is the activity window the streak calculator scans.
const DefaultLookbackWeeks = 8

const week = 7 * 24 * time.Hour

// ActivityRecord is the minimal projection of an activity log entry the
// streak calculator needs.
type ActivityRecord struct {
	PersonID string
	Date     time.Time
}

// StartOfWeek returns the Monday 00:00 UTC of the ISO week containing t.
func StartOfWeek(t time.Time) time.Time {
	u := t.UTC()
	day := (int(u.Weekday()) + 6) % 7 // Sunday=0 shifted to Monday=0
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, -day)
}

// ComputeWeeklyStreaks maps each person to their count of consecutive active
// weeks, counting backward from the current week. Multiple activities in the
// same week count once; a gap anywhere stops the count, so a person with no
// activity this week has streak 0 regardless of older records.
func ComputeWeeklyStreaks(records []ActivityRecord, lookbackWeeks int) map[string]int {
	return ComputeWeeklyStreaksAt(records, lookbackWeeks, time.Now())
}

// ComputeWeeklyStreaksAt is ComputeWeeklyStreaks with an explicit clock.
func ComputeWeeklyStreaksAt(records []ActivityRecord, lookbackWeeks int, now time.Time) map[string]int {
	if lookbackWeeks <= 0 {
		lookbackWeeks = DefaultLookbackWeeks
	}
	currentWeekStart := StartOfWeek(now)

	buckets := make(map[string]map[int]bool)
	for _, r := range records {
		if r.PersonID == "" || r.Date.IsZero() {
			continue
		}
		if r.Date.After(now) {
			continue
		}
		diff := currentWeekStart.Sub(StartOfWeek(r.Date))
		if diff < 0 {
			continue
		}
		weeksAgo := int(diff / week)
		if weeksAgo >= lookbackWeeks {
			continue
		}
		set, ok := buckets[r.PersonID]
		if !ok {
			set = make(map[int]bool)
			buckets[r.PersonID] = set
		}
		set[weeksAgo] = true
	}

	streaks := make(map[string]int, len(buckets))
	for personID, weeks := range buckets {
		streak := 0
		for weeks[streak] {
			streak++
		}
		streaks[personID] = streak
	}
	return streaks
}
