package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appointmentAt(id int64, date time.Time, start string, end string) Appointment {
	appointment := Appointment{
		ID:        id,
		Date:      date,
		StartTime: MustParseTimeOfDay(start),
		Status:    StatusConfirmed,
	}
	if end != "" {
		appointment.EndTime = NewNullTimeOfDay(MustParseTimeOfDay(end))
	}
	return appointment
}

func TestBuildSlots(t *testing.T) {
	date := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name         string
		appointments []Appointment
		wantFirst    string
		wantLast     string
		wantCount    int
	}{
		{
			name:      "should build the default business hours sequence including the closing slot",
			wantFirst: "08:00",
			wantLast:  "21:00",
			wantCount: 27,
		},
		{
			name: "should not widen the grid for appointments within business hours",
			appointments: []Appointment{
				appointmentAt(1, date, "09:00", "10:00"),
				appointmentAt(2, date, "14:10", ""),
			},
			wantFirst: "08:00",
			wantLast:  "21:00",
			wantCount: 27,
		},
		{
			name: "should widen the grid for an appointment before opening",
			appointments: []Appointment{
				appointmentAt(1, date, "07:00", "07:40"),
			},
			wantFirst: "07:00",
			wantLast:  "21:00",
			wantCount: 29,
		},
		{
			name: "should widen the grid for an appointment past closing",
			appointments: []Appointment{
				appointmentAt(1, date, "21:15", "22:00"),
			},
			wantFirst: "08:00",
			wantLast:  "21:30",
			wantCount: 28,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := BuildSlots(tt.appointments, DefaultGranularityMinutes, DefaultDayStart, DefaultDayEnd)
			require.Len(t, slots, tt.wantCount)
			assert.Equal(t, tt.wantFirst, slots[0].String())
			assert.Equal(t, tt.wantLast, slots[len(slots)-1].String())
			for i := 1; i < len(slots); i++ {
				assert.True(t, slots[i-1].Before(slots[i]), "slots must be strictly increasing")
			}
		})
	}
}

func TestBuildSlotsCoversEveryAppointment(t *testing.T) {
	date := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	appointments := []Appointment{
		appointmentAt(1, date, "06:45", "07:20"),
		appointmentAt(2, date, "12:00", "13:30"),
		appointmentAt(3, date, "22:15", ""),
	}
	slots := BuildSlots(appointments, DefaultGranularityMinutes, DefaultDayStart, DefaultDayEnd)
	known := make(map[TimeOfDay]struct{}, len(slots))
	for _, slot := range slots {
		known[slot] = struct{}{}
	}
	for _, appointment := range appointments {
		end := appointment.EffectiveEnd(DefaultGranularityMinutes)
		for slot := appointment.StartTime.Truncate(DefaultGranularityMinutes); slot.Before(end); slot = slot.Add(DefaultGranularityMinutes) {
			_, exists := known[slot]
			assert.True(t, exists, "slot %s must be part of the grid", slot)
		}
	}
}

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog(DefaultGranularityMinutes, DefaultDayStart, DefaultDayEnd)
	require.Len(t, catalog, 27)
	assert.Equal(t, "08:00", catalog[0].String())
	assert.Equal(t, "21:00", catalog[len(catalog)-1].String())

	hourly := DefaultCatalog(60, MustParseTimeOfDay("09:00"), MustParseTimeOfDay("12:00"))
	require.Len(t, hourly, 4)
	assert.Equal(t, "12:00", hourly[len(hourly)-1].String())
}
