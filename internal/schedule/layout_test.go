package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	slots := DefaultCatalog(DefaultGranularityMinutes, DefaultDayStart, DefaultDayEnd)

	t.Run("should key every appointment by its start slot only", func(t *testing.T) {
		appointments := []Appointment{
			appointmentAt(1, monday, "09:00", "10:00"),
			appointmentAt(2, monday, "11:00", ""),
		}
		layout := Layout(appointments, slots, DefaultGranularityMinutes)
		require.Len(t, layout, 2)
		require.Len(t, layout[MustParseTimeOfDay("09:00")], 1)
		require.Len(t, layout[MustParseTimeOfDay("11:00")], 1)
		assert.Empty(t, layout[MustParseTimeOfDay("09:30")], "a spanning appointment must not be duplicated into later slots")
	})

	t.Run("should key an off-grid start by its truncated slot", func(t *testing.T) {
		appointments := []Appointment{appointmentAt(1, monday, "09:10", "09:50")}
		layout := Layout(appointments, slots, DefaultGranularityMinutes)
		require.Len(t, layout[MustParseTimeOfDay("09:00")], 1)
	})

	t.Run("should stack same-slot appointments in creation order", func(t *testing.T) {
		appointments := []Appointment{
			appointmentAt(7, monday, "09:00", "10:00"),
			appointmentAt(3, monday, "09:00", "09:30"),
			appointmentAt(5, monday, "09:00", ""),
		}
		layout := Layout(appointments, slots, DefaultGranularityMinutes)
		stack := layout[MustParseTimeOfDay("09:00")]
		require.Len(t, stack, 3)
		assert.Equal(t, int64(3), stack[0].Appointment.ID)
		assert.Equal(t, int64(5), stack[1].Appointment.ID)
		assert.Equal(t, int64(7), stack[2].Appointment.ID)
		for order, positioned := range stack {
			assert.Equal(t, order, positioned.Order)
		}
	})

	t.Run("should return an empty layout when there are no slots", func(t *testing.T) {
		appointments := []Appointment{appointmentAt(1, monday, "09:00", "10:00")}
		assert.Empty(t, Layout(appointments, nil, DefaultGranularityMinutes))
	})
}

func TestLayoutSpans(t *testing.T) {
	slots := DefaultCatalog(DefaultGranularityMinutes, DefaultDayStart, DefaultDayEnd)
	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{name: "should span two slots for a full hour", start: "09:00", end: "10:00", want: 2},
		{name: "should span a single slot for a quarter hour", start: "09:00", end: "09:15", want: 1},
		{name: "should span a single slot when ending exactly on the next boundary", start: "09:00", end: "09:30", want: 1},
		{name: "should span three slots when crossing a partial third", start: "09:00", end: "10:15", want: 3},
		{name: "should span at least one slot with no end time", start: "09:00", end: "", want: 1},
		{name: "should clamp the span to the remaining slots", start: "20:00", end: "22:00", want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appointments := []Appointment{appointmentAt(1, monday, tt.start, tt.end)}
			layout := Layout(appointments, slots, DefaultGranularityMinutes)
			stack := layout[MustParseTimeOfDay(tt.start)]
			require.Len(t, stack, 1)
			assert.Equal(t, tt.want, stack[0].SpanSlots)
		})
	}
}

func TestPosition(t *testing.T) {
	t.Run("should place an appointment relative to the day start", func(t *testing.T) {
		appointment := appointmentAt(1, monday, "09:00", "10:00")
		top, height := Position(appointment, DefaultDayStart, DefaultGranularityMinutes, 40)
		assert.InDelta(t, 80, top, 0.001)
		assert.InDelta(t, 80, height, 0.001)
	})

	t.Run("should never render shorter than one row", func(t *testing.T) {
		appointment := appointmentAt(1, monday, "09:00", "09:10")
		_, height := Position(appointment, DefaultDayStart, DefaultGranularityMinutes, 40)
		assert.InDelta(t, 40, height, 0.001)
	})
}

func TestMonthCell(t *testing.T) {
	appointments := []Appointment{
		appointmentAt(4, monday, "14:00", ""),
		appointmentAt(1, monday, "09:00", ""),
		appointmentAt(3, monday, "09:00", ""),
		appointmentAt(2, monday, "10:00", ""),
	}

	t.Run("should show the earliest appointments and count the rest", func(t *testing.T) {
		inline, more := MonthCell(appointments, 3)
		require.Len(t, inline, 3)
		assert.Equal(t, int64(1), inline[0].ID)
		assert.Equal(t, int64(3), inline[1].ID)
		assert.Equal(t, int64(2), inline[2].ID)
		assert.Equal(t, 1, more)
	})

	t.Run("should show everything when it fits", func(t *testing.T) {
		inline, more := MonthCell(appointments, 10)
		assert.Len(t, inline, 4)
		assert.Zero(t, more)
	})

	t.Run("should hide everything when nothing fits inline", func(t *testing.T) {
		inline, more := MonthCell(appointments, 0)
		assert.Empty(t, inline)
		assert.Equal(t, 4, more)
	})
}
