package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from AppointmentStatus
		to   AppointmentStatus
		want bool
	}{
		{name: "pending can be confirmed", from: StatusPending, to: StatusConfirmed, want: true},
		{name: "pending can be cancelled", from: StatusPending, to: StatusCancelled, want: true},
		{name: "confirmed can be cancelled", from: StatusConfirmed, to: StatusCancelled, want: true},
		{name: "confirmed cannot go back to pending", from: StatusConfirmed, to: StatusPending, want: false},
		{name: "cancelled is terminal", from: StatusCancelled, to: StatusConfirmed, want: false},
		{name: "cancelled cannot be cancelled again", from: StatusCancelled, to: StatusCancelled, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAppointmentEffectiveEnd(t *testing.T) {
	withEnd := appointmentAt(1, monday, "09:00", "10:15")
	assert.Equal(t, MustParseTimeOfDay("10:15"), withEnd.EffectiveEnd(DefaultGranularityMinutes))

	openEnded := appointmentAt(1, monday, "09:00", "")
	assert.Equal(t, MustParseTimeOfDay("09:30"), openEnded.EffectiveEnd(DefaultGranularityMinutes))

	inverted := appointmentAt(1, monday, "10:00", "09:00")
	assert.Equal(t, MustParseTimeOfDay("10:30"), inverted.EffectiveEnd(DefaultGranularityMinutes))
}

func TestAppointmentValidate(t *testing.T) {
	valid := appointmentAt(1, monday, "09:00", "10:00")
	assert.NoError(t, valid.Validate())

	var noDate Appointment
	noDate.StartTime = MustParseTimeOfDay("09:00")
	assert.Error(t, noDate.Validate())

	inverted := appointmentAt(1, monday, "10:00", "09:00")
	assert.Error(t, inverted.Validate())
}

func TestWeeklyRuleValidate(t *testing.T) {
	assert.NoError(t, mondayRule("08:00", "12:00", true).Validate())
	assert.Error(t, mondayRule("12:00", "08:00", true).Validate())

	badDay := mondayRule("08:00", "12:00", true)
	badDay.DayOfWeek = 7
	assert.Error(t, badDay.Validate())
}

func TestBlockContains(t *testing.T) {
	block := blockOn(monday, "12:00", "14:00")
	assert.True(t, block.Contains(monday, MustParseTimeOfDay("12:00")))
	assert.True(t, block.Contains(monday, MustParseTimeOfDay("13:59")))
	assert.False(t, block.Contains(monday, MustParseTimeOfDay("14:00")))
	assert.False(t, block.Contains(monday.AddDate(0, 0, 1), MustParseTimeOfDay("13:00")))
}

func TestSameDate(t *testing.T) {
	assert.True(t, SameDate(monday, monday.Add(23*time.Hour)))
	assert.False(t, SameDate(monday, monday.AddDate(0, 0, 1)))
}
