package schedule

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
)

// NullTimeOfDay is a TimeOfDay that may be absent, following the database/sql null types.
type NullTimeOfDay struct {
	TimeOfDay TimeOfDay
	Valid     bool
}

// NewNullTimeOfDay creates a valid NullTimeOfDay.
func NewNullTimeOfDay(timeOfDay TimeOfDay) NullTimeOfDay {
	return NullTimeOfDay{TimeOfDay: timeOfDay, Valid: true}
}

// Value stores the time as "HH:MM" or NULL.
func (n NullTimeOfDay) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.TimeOfDay.Value()
}

// Scan reads the time from a nullable "HH:MM" database column.
func (n *NullTimeOfDay) Scan(src interface{}) error {
	if src == nil {
		n.TimeOfDay, n.Valid = 0, false
		return nil
	}
	if err := n.TimeOfDay.Scan(src); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// MarshalJSON renders the time as "HH:MM" or null.
func (n NullTimeOfDay) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.TimeOfDay)
}

// UnmarshalJSON parses the time from "HH:MM" or null.
func (n *NullTimeOfDay) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		n.TimeOfDay, n.Valid = 0, false
		return nil
	}
	if err := json.Unmarshal(data, &n.TimeOfDay); err != nil {
		return err
	}
	n.Valid = true
	return nil
}
