package model

import (
	"encoding/json"
	"time"
)

// DateTime is an OCPP 2.0.1 timestamp. It is always expressed in UTC and
// truncated to whole seconds, which keeps schedule arithmetic exact.
type DateTime struct {
	time.Time
}

// NewDateTime builds a DateTime from t, normalised to UTC second precision.
func NewDateTime(t time.Time) DateTime {
	return DateTime{t.UTC().Truncate(time.Second)}
}

// ParseDateTime parses an RFC3339 timestamp into a DateTime.
func ParseDateTime(s string) (DateTime, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return DateTime{}, err
	}
	return NewDateTime(t), nil
}

// MarshalJSON renders the timestamp as RFC3339 UTC.
func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.UTC().Format(time.RFC3339))
}

// UnmarshalJSON accepts RFC3339 timestamps with or without fractional seconds.
func (d *DateTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	*d = NewDateTime(t)
	return nil
}

// Before reports whether d is strictly before other.
func (d DateTime) Before(other DateTime) bool { return d.Time.Before(other.Time) }

// After reports whether d is strictly after other.
func (d DateTime) After(other DateTime) bool { return d.Time.After(other.Time) }

// Add returns a DateTime shifted by the given duration.
func (d DateTime) Add(dur time.Duration) DateTime { return NewDateTime(d.Time.Add(dur)) }
