package schedule

import (
	"time"

	"github.com/google/uuid"
)

// AvailableTimes filters the candidate start times down to the ones that can
// still be booked on the given date: the time must be offerable according to
// the weekly rules and blocks, and no active appointment may reserve that
// exact date and time. Candidates come from a fixed catalog (see
// DefaultCatalog); this function never invents times of its own.
//
// An excluded appointment keeps its own reservation out of the check, which
// is what allows a reschedule to move an appointment within its current slot.
func AvailableTimes(candidates []TimeOfDay, date time.Time, rules []WeeklyRule, blocks []Block, appointments []Appointment, exclude uuid.UUID) []TimeOfDay {
	available := make([]TimeOfDay, 0, len(candidates))
	for _, candidate := range candidates {
		if !IsTimeAvailable(date, candidate, rules, blocks) {
			continue
		}
		if hasReservationAt(appointments, date, candidate, exclude) {
			continue
		}
		available = append(available, candidate)
	}
	return available
}

// HasOverlap checks if any active appointment intersects the [start, end)
// window on the given date, ignoring the excluded appointment. It backs the
// non-overlap invariant for bookings whose duration spans multiple slots.
func HasOverlap(appointments []Appointment, date time.Time, start, end TimeOfDay, granularity int, exclude uuid.UUID) bool {
	for _, appointment := range appointments {
		if !appointment.IsActive() || appointment.UUID == exclude {
			continue
		}
		if appointment.Overlaps(date, start, end, granularity) {
			return true
		}
	}
	return false
}

// hasReservationAt checks if an active appointment starts at exactly the given date and time.
func hasReservationAt(appointments []Appointment, date time.Time, timeOfDay TimeOfDay, exclude uuid.UUID) bool {
	for _, appointment := range appointments {
		if !appointment.IsActive() || appointment.UUID == exclude {
			continue
		}
		if SameDate(appointment.Date, date) && appointment.StartTime == timeOfDay {
			return true
		}
	}
	return false
}
