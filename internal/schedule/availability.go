package schedule

import "time"

// IsDateAvailable checks if a date is offerable at all: its weekday must have
// at least one available weekly rule and the date must carry no block.
//
// Any block on the date disqualifies the whole date. This is deliberately
// coarser than IsTimeAvailable, which subtracts only the blocked interval; the
// monthly calendar widget relies on the coarse behavior.
func IsDateAvailable(date time.Time, rules []WeeklyRule, blocks []Block) bool {
	weekday := int(date.Weekday())
	hasWindow := false
	for _, rule := range rules {
		if rule.DayOfWeek == weekday && rule.Available {
			hasWindow = true
			break
		}
	}
	if !hasWindow {
		return false
	}
	for _, block := range blocks {
		if SameDate(block.Date, date) {
			return false
		}
	}
	return true
}

// IsTimeAvailable checks if a time of day is offerable on the given date. The
// time must fall within at least one available weekly rule for that weekday,
// outside every unavailable rule for it, and outside every block on the date.
// All interval containment is half-open, [start, end). When rules disagree,
// unavailability wins: rules and blocks only ever subtract, never add.
func IsTimeAvailable(date time.Time, timeOfDay TimeOfDay, rules []WeeklyRule, blocks []Block) bool {
	weekday := int(date.Weekday())
	offered := false
	for _, rule := range rules {
		if rule.DayOfWeek != weekday || !rule.Contains(timeOfDay) {
			continue
		}
		if !rule.Available {
			return false
		}
		offered = true
	}
	if !offered {
		return false
	}
	for _, block := range blocks {
		if block.Contains(date, timeOfDay) {
			return false
		}
	}
	return true
}

// WindowIsAvailable checks if the whole [start, end) window is offerable on
// the given date. A booking must lie entirely within at least one available
// weekly rule, intersect no unavailable rule for that weekday and intersect
// no block on the date; starting inside availability is not enough.
func WindowIsAvailable(date time.Time, start, end TimeOfDay, rules []WeeklyRule, blocks []Block) bool {
	if !start.Before(end) {
		return false
	}
	weekday := int(date.Weekday())
	covered := false
	for _, rule := range rules {
		if rule.DayOfWeek != weekday {
			continue
		}
		overlaps := rule.StartTime.Before(end) && start.Before(rule.EndTime)
		if !rule.Available && overlaps {
			return false
		}
		if rule.Available && !start.Before(rule.StartTime) && !rule.EndTime.Before(end) {
			covered = true
		}
	}
	if !covered {
		return false
	}
	for _, block := range blocks {
		if SameDate(block.Date, date) && block.StartTime.Before(end) && start.Before(block.EndTime) {
			return false
		}
	}
	return true
}
