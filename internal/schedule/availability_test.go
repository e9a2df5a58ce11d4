package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// monday is a Monday, so weekday-based rules with DayOfWeek 1 apply to it.
var monday = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

func mondayRule(start, end string, available bool) WeeklyRule {
	return WeeklyRule{
		DayOfWeek: int(time.Monday),
		StartTime: MustParseTimeOfDay(start),
		EndTime:   MustParseTimeOfDay(end),
		Available: available,
	}
}

func blockOn(date time.Time, start, end string) Block {
	return Block{
		Title:     "blocked",
		Date:      date,
		StartTime: MustParseTimeOfDay(start),
		EndTime:   MustParseTimeOfDay(end),
		EventType: "event",
	}
}

func TestIsDateAvailable(t *testing.T) {
	tests := []struct {
		name   string
		date   time.Time
		rules  []WeeklyRule
		blocks []Block
		want   bool
	}{
		{
			name:  "should be available when the weekday has an available rule",
			date:  monday,
			rules: []WeeklyRule{mondayRule("08:00", "18:00", true)},
			want:  true,
		},
		{
			name: "should not be available when the weekday has no rule at all",
			date: monday.AddDate(0, 0, 1),
			rules: []WeeklyRule{
				mondayRule("08:00", "18:00", true),
			},
			want: false,
		},
		{
			name:  "should not be available when the weekday only has unavailable rules",
			date:  monday,
			rules: []WeeklyRule{mondayRule("08:00", "18:00", false)},
			want:  false,
		},
		{
			name:   "should not be available when any block falls on the date, however small",
			date:   monday,
			rules:  []WeeklyRule{mondayRule("08:00", "18:00", true)},
			blocks: []Block{blockOn(monday, "12:00", "12:30")},
			want:   false,
		},
		{
			name:   "should ignore blocks on other dates",
			date:   monday,
			rules:  []WeeklyRule{mondayRule("08:00", "18:00", true)},
			blocks: []Block{blockOn(monday.AddDate(0, 0, 1), "12:00", "12:30")},
			want:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDateAvailable(tt.date, tt.rules, tt.blocks))
		})
	}
}

func TestIsTimeAvailable(t *testing.T) {
	tests := []struct {
		name      string
		timeOfDay string
		rules     []WeeklyRule
		blocks    []Block
		want      bool
	}{
		{
			name:      "should be available inside an available rule",
			timeOfDay: "10:00",
			rules:     []WeeklyRule{mondayRule("08:00", "18:00", true)},
			want:      true,
		},
		{
			name:      "should be available exactly at the rule start",
			timeOfDay: "08:00",
			rules:     []WeeklyRule{mondayRule("08:00", "18:00", true)},
			want:      true,
		},
		{
			name:      "should not be available exactly at the rule end",
			timeOfDay: "18:00",
			rules:     []WeeklyRule{mondayRule("08:00", "18:00", true)},
			want:      false,
		},
		{
			name:      "should not be available with no covering rule",
			timeOfDay: "07:00",
			rules:     []WeeklyRule{mondayRule("08:00", "18:00", true)},
			want:      false,
		},
		{
			name:      "should let an unavailable rule win over an overlapping available one",
			timeOfDay: "12:15",
			rules: []WeeklyRule{
				mondayRule("08:00", "18:00", true),
				mondayRule("12:00", "13:00", false),
			},
			want: false,
		},
		{
			name:      "should keep the rest of the day when only an interval is ruled out",
			timeOfDay: "13:00",
			rules: []WeeklyRule{
				mondayRule("08:00", "18:00", true),
				mondayRule("12:00", "13:00", false),
			},
			want: true,
		},
		{
			name:      "should subtract only the blocked interval",
			timeOfDay: "10:00",
			rules:     []WeeklyRule{mondayRule("08:00", "18:00", true)},
			blocks:    []Block{blockOn(monday, "12:00", "14:00")},
			want:      true,
		},
		{
			name:      "should not be available inside a block",
			timeOfDay: "12:30",
			rules:     []WeeklyRule{mondayRule("08:00", "18:00", true)},
			blocks:    []Block{blockOn(monday, "12:00", "14:00")},
			want:      false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTimeAvailable(monday, MustParseTimeOfDay(tt.timeOfDay), tt.rules, tt.blocks))
		})
	}
}

// A block on a date kills the whole date for the coarse check while the fine
// check keeps offering the times around it. Monthly cells and slot pickers
// disagree about such days on purpose.
func TestDateAndTimeAvailabilityAsymmetry(t *testing.T) {
	rules := []WeeklyRule{mondayRule("08:00", "18:00", true)}
	blocks := []Block{blockOn(monday, "12:00", "12:30")}

	assert.False(t, IsDateAvailable(monday, rules, blocks))
	assert.True(t, IsTimeAvailable(monday, MustParseTimeOfDay("09:00"), rules, blocks))
	assert.False(t, IsTimeAvailable(monday, MustParseTimeOfDay("12:00"), rules, blocks))
}

func TestWindowIsAvailable(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		rules      []WeeklyRule
		blocks     []Block
		want       bool
	}{
		{
			name:  "should accept a window fully inside an available rule",
			start: "09:00", end: "10:00",
			rules: []WeeklyRule{mondayRule("08:00", "18:00", true)},
			want:  true,
		},
		{
			name:  "should accept a window ending exactly at the rule end",
			start: "17:00", end: "18:00",
			rules: []WeeklyRule{mondayRule("08:00", "18:00", true)},
			want:  true,
		},
		{
			name:  "should reject a window leaking past the rule end",
			start: "17:30", end: "18:30",
			rules: []WeeklyRule{mondayRule("08:00", "18:00", true)},
			want:  false,
		},
		{
			name:  "should reject an empty window",
			start: "10:00", end: "10:00",
			rules: []WeeklyRule{mondayRule("08:00", "18:00", true)},
			want:  false,
		},
		{
			name:  "should reject a window touching an unavailable rule",
			start: "11:30", end: "12:30",
			rules: []WeeklyRule{
				mondayRule("08:00", "18:00", true),
				mondayRule("12:00", "13:00", false),
			},
			want: false,
		},
		{
			name:  "should reject a window overlapping a block smaller than a slot",
			start: "09:00", end: "09:30",
			rules: []WeeklyRule{mondayRule("08:00", "18:00", true)},
			blocks: []Block{
				blockOn(monday, "09:10", "09:20"),
			},
			want: false,
		},
		{
			name:  "should accept a window adjacent to a block",
			start: "14:00", end: "15:00",
			rules: []WeeklyRule{mondayRule("08:00", "18:00", true)},
			blocks: []Block{
				blockOn(monday, "12:00", "14:00"),
			},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WindowIsAvailable(monday, MustParseTimeOfDay(tt.start), MustParseTimeOfDay(tt.end), tt.rules, tt.blocks)
			assert.Equal(t, tt.want, got)
		})
	}
}
