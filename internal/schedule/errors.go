package schedule

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSlotTaken indicates that the requested date and time cannot be booked,
	// either because availability excludes it or because another active
	// appointment already reserves it.
	ErrSlotTaken = errors.New("chosen slot is not available")

	// ErrAppointmentNotFound indicates a stale reference to an appointment.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrRuleNotFound indicates a stale reference to a weekly availability rule.
	ErrRuleNotFound = errors.New("availability rule not found")

	// ErrBlockNotFound indicates a stale reference to a calendar block.
	ErrBlockNotFound = errors.New("calendar block not found")

	// ErrDoctorNotFound indicates that the referenced doctor does not exist.
	ErrDoctorNotFound = errors.New("doctor not found")

	// ErrPatientNotFound indicates that the referenced patient does not exist.
	ErrPatientNotFound = errors.New("patient not found")

	// ErrInvalidTransition indicates a status change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTransient indicates a storage failure that the caller may retry.
	// Booking operations are never retried automatically to avoid duplicates.
	ErrTransient = errors.New("storage temporarily unavailable")
)

// BatchItemResult is the outcome of a single day within a quick block or unblock.
type BatchItemResult struct {
	DayOfWeek int    `json:"day_of_week"`
	Succeeded bool   `json:"succeeded"`
	Detail    string `json:"detail,omitempty"`
}

// BatchError reports a quick block or unblock that only partially succeeded.
// Each requested day carries its own result; successful days stay applied.
type BatchError struct {
	Results []BatchItemResult `json:"results"`
}

func (b *BatchError) Error() string {
	failed := make([]string, 0, len(b.Results))
	for _, result := range b.Results {
		if !result.Succeeded {
			failed = append(failed, fmt.Sprintf("day %d: %s", result.DayOfWeek, result.Detail))
		}
	}
	return fmt.Sprintf("batch partially failed (%s)", strings.Join(failed, "; "))
}
