package schedule

import (
	"clinic-scheduling/internal/apierrors"
	"database/sql/driver"
	"fmt"
)

// TimeOfDay is a clock time within a single day, stored as minutes since midnight.
// It is the unit every grid, availability and layout computation works with.
type TimeOfDay int

// ParseTimeOfDay parses a time in the "HH:MM" format.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%2d:%2d", &hour, &minute); err != nil {
		return 0, apierrors.NewValidationError("time", fmt.Sprintf("%q is not a valid HH:MM time", value))
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, apierrors.NewValidationError("time", fmt.Sprintf("%q is not a valid HH:MM time", value))
	}
	return TimeOfDay(hour*60 + minute), nil
}

// MustParseTimeOfDay parses a time in the "HH:MM" format and panics if it is invalid.
func MustParseTimeOfDay(value string) TimeOfDay {
	timeOfDay, err := ParseTimeOfDay(value)
	if err != nil {
		panic(err)
	}
	return timeOfDay
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Minutes gets the amount of minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return int(t)
}

// Add adds the given amount of minutes.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

// Before checks if the time is strictly before the given one.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t < other
}

// After checks if the time is strictly after the given one.
func (t TimeOfDay) After(other TimeOfDay) bool {
	return t > other
}

// Truncate aligns the time down to the given granularity, in minutes.
func (t TimeOfDay) Truncate(granularity int) TimeOfDay {
	if granularity <= 0 {
		return t
	}
	return t - t%TimeOfDay(granularity)
}

// MarshalText renders the time as "HH:MM", also when used as a JSON map key.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses the time from "HH:MM".
func (t *TimeOfDay) UnmarshalText(data []byte) error {
	parsed, err := ParseTimeOfDay(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value stores the time as "HH:MM".
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan reads the time from a "HH:MM" database column.
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return t.UnmarshalText([]byte(v))
	case []byte:
		return t.UnmarshalText(v)
	case nil:
		*t = 0
		return nil
	default:
		return fmt.Errorf("cannot scan %T into a time of day", src)
	}
}
