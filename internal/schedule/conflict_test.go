package schedule

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableTimes(t *testing.T) {
	catalog := DefaultCatalog(60, MustParseTimeOfDay("09:00"), MustParseTimeOfDay("13:00"))
	rules := []WeeklyRule{mondayRule("09:00", "14:00", true)}

	t.Run("should offer the whole catalog when nothing is booked", func(t *testing.T) {
		times := AvailableTimes(catalog, monday, rules, nil, nil, uuid.Nil)
		require.Len(t, times, 5)
	})

	t.Run("should drop a reserved start time", func(t *testing.T) {
		booked := appointmentAt(1, monday, "10:00", "11:00")
		times := AvailableTimes(catalog, monday, rules, nil, []Appointment{booked}, uuid.Nil)
		require.Len(t, times, 4)
		assert.NotContains(t, times, MustParseTimeOfDay("10:00"))
	})

	t.Run("should keep the start time of a cancelled appointment", func(t *testing.T) {
		cancelled := appointmentAt(1, monday, "10:00", "11:00")
		cancelled.Status = StatusCancelled
		times := AvailableTimes(catalog, monday, rules, nil, []Appointment{cancelled}, uuid.Nil)
		require.Len(t, times, 5)
	})

	t.Run("should ignore appointments on other dates", func(t *testing.T) {
		booked := appointmentAt(1, monday.AddDate(0, 0, 7), "10:00", "11:00")
		times := AvailableTimes(catalog, monday, rules, nil, []Appointment{booked}, uuid.Nil)
		require.Len(t, times, 5)
	})

	t.Run("should keep the excluded appointment's own reservation out of the check", func(t *testing.T) {
		booked := appointmentAt(1, monday, "10:00", "11:00")
		booked.UUID = uuid.New()
		times := AvailableTimes(catalog, monday, rules, nil, []Appointment{booked}, booked.UUID)
		require.Len(t, times, 5)
	})

	t.Run("should never offer times outside the catalog", func(t *testing.T) {
		wideRules := []WeeklyRule{mondayRule("00:00", "23:59", true)}
		times := AvailableTimes(catalog, monday, wideRules, nil, nil, uuid.Nil)
		assert.Len(t, times, len(catalog))
	})
}

// A quick block inserts an unavailable weekly rule and the matching quick
// unblock removes it again, so the offered times must round-trip exactly.
func TestAvailableTimesRestoredAfterUnblock(t *testing.T) {
	catalog := DefaultCatalog(DefaultGranularityMinutes, DefaultDayStart, DefaultDayEnd)
	open := []WeeklyRule{mondayRule("08:00", "21:00", true)}

	before := AvailableTimes(catalog, monday, open, nil, nil, uuid.Nil)
	require.NotEmpty(t, before)

	blocked := append(append([]WeeklyRule{}, open...), mondayRule("12:00", "14:00", false))
	during := AvailableTimes(catalog, monday, blocked, nil, nil, uuid.Nil)
	assert.Less(t, len(during), len(before))
	assert.NotContains(t, during, MustParseTimeOfDay("12:00"))

	after := AvailableTimes(catalog, monday, open, nil, nil, uuid.Nil)
	assert.Equal(t, before, after)
}

// Booking more can only shrink the offer, never grow it.
func TestAvailableTimesMonotonicity(t *testing.T) {
	catalog := DefaultCatalog(DefaultGranularityMinutes, DefaultDayStart, DefaultDayEnd)
	rules := []WeeklyRule{mondayRule("08:00", "21:00", true)}

	appointments := make([]Appointment, 0)
	previous := len(AvailableTimes(catalog, monday, rules, nil, appointments, uuid.Nil))
	for i, start := range []string{"09:00", "10:30", "14:00"} {
		appointments = append(appointments, appointmentAt(int64(i+1), monday, start, ""))
		current := len(AvailableTimes(catalog, monday, rules, nil, appointments, uuid.Nil))
		assert.Less(t, current, previous)
		previous = current
	}
}

func TestHasOverlap(t *testing.T) {
	first := appointmentAt(1, monday, "09:00", "10:00")
	tests := []struct {
		name       string
		start, end string
		want       bool
	}{
		{name: "should overlap the same window", start: "09:00", end: "10:00", want: true},
		{name: "should overlap a partially intersecting window", start: "09:30", end: "10:30", want: true},
		{name: "should overlap a containing window", start: "08:30", end: "10:30", want: true},
		{name: "should not overlap an adjacent later window", start: "10:00", end: "11:00", want: false},
		{name: "should not overlap an adjacent earlier window", start: "08:00", end: "09:00", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HasOverlap([]Appointment{first}, monday, MustParseTimeOfDay(tt.start), MustParseTimeOfDay(tt.end), DefaultGranularityMinutes, uuid.Nil)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("should treat an open-ended appointment as one granularity step long", func(t *testing.T) {
		open := appointmentAt(1, monday, "09:00", "")
		assert.True(t, HasOverlap([]Appointment{open}, monday, MustParseTimeOfDay("09:15"), MustParseTimeOfDay("09:45"), DefaultGranularityMinutes, uuid.Nil))
		assert.False(t, HasOverlap([]Appointment{open}, monday, MustParseTimeOfDay("09:30"), MustParseTimeOfDay("10:00"), DefaultGranularityMinutes, uuid.Nil))
	})

	t.Run("should skip cancelled appointments", func(t *testing.T) {
		cancelled := appointmentAt(1, monday, "09:00", "10:00")
		cancelled.Status = StatusCancelled
		assert.False(t, HasOverlap([]Appointment{cancelled}, monday, MustParseTimeOfDay("09:00"), MustParseTimeOfDay("10:00"), DefaultGranularityMinutes, uuid.Nil))
	})

	t.Run("should skip the excluded appointment", func(t *testing.T) {
		moved := appointmentAt(1, monday, "09:00", "10:00")
		moved.UUID = uuid.New()
		assert.False(t, HasOverlap([]Appointment{moved}, monday, MustParseTimeOfDay("09:00"), MustParseTimeOfDay("10:00"), DefaultGranularityMinutes, moved.UUID))
	})
}
