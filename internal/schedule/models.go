// Package schedule contains handlers, services and structures used to manage the clinic agenda:
// recurring weekly availability, one-off calendar blocks and booked appointments.
package schedule

import (
	"clinic-scheduling/internal/apierrors"
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus is the lifecycle state of an appointment. The literals are
// the values historically persisted by the clinic and must not be translated.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "aguardando"
	StatusConfirmed AppointmentStatus = "confirmado"
	StatusCancelled AppointmentStatus = "cancelado"
)

// CanTransitionTo checks if the status machine allows changing to the given status.
// Cancelled is terminal; pending may be confirmed or cancelled.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	default:
		return false
	}
}

type Doctor struct {
	ID        int64     `json:"-" dbfield:"id"`
	UUID      uuid.UUID `json:"uuid" dbfield:"uuid"`
	Name      string    `json:"name" dbfield:"name"`
	Email     string    `json:"email" dbfield:"email"`
	Specialty string    `json:"specialty" dbfield:"specialty"`
}

type Patient struct {
	ID    int64     `json:"-" dbfield:"id"`
	UUID  uuid.UUID `json:"uuid" dbfield:"uuid"`
	Name  string    `json:"name" dbfield:"name"`
	Email string    `json:"email" dbfield:"email"`
}

// WeeklyRule is a recurring weekly interval during which booking is allowed or
// explicitly forbidden. Rules are created and deleted, never updated in place.
type WeeklyRule struct {
	ID        int64     `json:"-" dbfield:"id"`
	UUID      uuid.UUID `json:"uuid" dbfield:"uuid"`
	DoctorID  int64     `json:"-" dbfield:"doctor_id"`
	DayOfWeek int       `json:"day_of_week" dbfield:"day_of_week"`
	StartTime TimeOfDay `json:"start_time" dbfield:"start_time"`
	EndTime   TimeOfDay `json:"end_time" dbfield:"end_time"`
	Available bool      `json:"available" dbfield:"available"`
}

// Validate validates if the weekly rule is well formed.
func (r WeeklyRule) Validate() error {
	if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
		return apierrors.NewValidationError("day_of_week", "must be between 0 (Sunday) and 6 (Saturday)")
	}
	if !r.StartTime.Before(r.EndTime) {
		return apierrors.NewValidationError("end_time", "must be after start_time")
	}
	return nil
}

// Contains checks if the rule interval contains the given time, using [start, end).
func (r WeeklyRule) Contains(timeOfDay TimeOfDay) bool {
	return !timeOfDay.Before(r.StartTime) && timeOfDay.Before(r.EndTime)
}

// Block is a one-off calendar event that removes availability for an explicit
// date and time window, regardless of the weekly rules.
type Block struct {
	ID          int64     `json:"-" dbfield:"id"`
	UUID        uuid.UUID `json:"uuid" dbfield:"uuid"`
	DoctorID    int64     `json:"-" dbfield:"doctor_id"`
	Title       string    `json:"title" dbfield:"title"`
	Description *string   `json:"description,omitempty" dbfield:"description"`
	Date        time.Time `json:"date" dbfield:"date"`
	StartTime   TimeOfDay `json:"start_time" dbfield:"start_time"`
	EndTime     TimeOfDay `json:"end_time" dbfield:"end_time"`
	EventType   string    `json:"event_type" dbfield:"event_type"`
}

// Validate validates if the block is well formed.
func (b Block) Validate() error {
	if b.Title == "" {
		return apierrors.NewValidationError("title", "required")
	}
	if b.Date.IsZero() {
		return apierrors.NewValidationError("date", "required")
	}
	if !b.StartTime.Before(b.EndTime) {
		return apierrors.NewValidationError("end_time", "must be after start_time")
	}
	return nil
}

// Contains checks if the block covers the given date and time, using [start, end).
func (b Block) Contains(date time.Time, timeOfDay TimeOfDay) bool {
	return SameDate(b.Date, date) && !timeOfDay.Before(b.StartTime) && timeOfDay.Before(b.EndTime)
}

// Appointment is the unit of booking. Date plus start time is the reservation
// key; the end time determines the grid span. Cancelled appointments are kept
// for audit and only ever leave availability and conflict computations.
type Appointment struct {
	ID            int64             `json:"-" dbfield:"id"`
	UUID          uuid.UUID         `json:"uuid" dbfield:"uuid"`
	DoctorID      int64             `json:"-" dbfield:"doctor_id"`
	PatientID     int64             `json:"-" dbfield:"patient_id"`
	Date          time.Time         `json:"date" dbfield:"date"`
	StartTime     TimeOfDay         `json:"time" dbfield:"start_time"`
	EndTime       NullTimeOfDay     `json:"end_time" dbfield:"end_time"`
	Status        AppointmentStatus `json:"status" dbfield:"status"`
	Type          string            `json:"type" dbfield:"type"`
	PaymentMethod string            `json:"payment_method" dbfield:"payment_method"`
	Notes         *string           `json:"notes,omitempty" dbfield:"notes"`
}

// IsActive checks if the appointment still reserves its slot.
func (a Appointment) IsActive() bool {
	return a.Status != StatusCancelled
}

// EffectiveEnd gets the appointment end, falling back to one granularity step
// after the start when no end time was recorded.
func (a Appointment) EffectiveEnd(granularity int) TimeOfDay {
	if a.EndTime.Valid && a.StartTime.Before(a.EndTime.TimeOfDay) {
		return a.EndTime.TimeOfDay
	}
	return a.StartTime.Add(granularity)
}

// Overlaps checks if the appointment interval intersects [start, end) on the given date.
func (a Appointment) Overlaps(date time.Time, start, end TimeOfDay, granularity int) bool {
	if !SameDate(a.Date, date) {
		return false
	}
	return a.StartTime.Before(end) && start.Before(a.EffectiveEnd(granularity))
}

// Validate validates if the appointment request is well formed.
func (a Appointment) Validate() error {
	if a.Date.IsZero() {
		return apierrors.NewValidationError("date", "required")
	}
	if a.EndTime.Valid && !a.StartTime.Before(a.EndTime.TimeOfDay) {
		return apierrors.NewValidationError("end_time", "must be after time")
	}
	return nil
}

// SameDate checks if two timestamps fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
