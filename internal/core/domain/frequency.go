package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrMalformedFrequency = errors.New("malformed frequency policy")

const (
	FrequencyInterval = "interval"
	FrequencyWeekdays = "weekdays"

	UnitHours = "hours"
	UnitDays  = "days"
)

// Frequency is the tagged policy deciding when a habit may be completed
// again: either "interval" (eligible after Value units have elapsed) or
// "weekdays" (once per calendar day, Monday to Friday).
type Frequency struct {
	Type  string `json:"type"`
	Value int    `json:"value,omitempty"`
	Unit  string `json:"unit,omitempty"`
}

// ParseFrequency decodes the serialized policy stored in the habit row.
// A policy that fails to parse or validate is a data-integrity fault and
// must not fall back to "always eligible".
func ParseFrequency(raw []byte) (Frequency, error) {
	var f Frequency
	if err := json.Unmarshal(raw, &f); err != nil {
		return Frequency{}, fmt.Errorf("%w: %v", ErrMalformedFrequency, err)
	}
	if err := f.Validate(); err != nil {
		return Frequency{}, err
	}
	return f, nil
}

func (f Frequency) Validate() error {
	switch f.Type {
	case FrequencyInterval:
		if f.Value < 1 {
			return ErrMalformedFrequency
		}
		if f.Unit != UnitHours && f.Unit != UnitDays {
			return ErrMalformedFrequency
		}
	case FrequencyWeekdays:
	default:
		return ErrMalformedFrequency
	}
	return nil
}

// RequiredHours returns the cooldown of an interval policy in hours.
func (f Frequency) RequiredHours() float64 {
	if f.Unit == UnitDays {
		return float64(f.Value) * 24
	}
	return float64(f.Value)
}

// IneligibleError is the expected, recoverable rejection of a completion
// attempt. RetryAfter is zero when no wait time is computable.
type IneligibleError struct {
	Reason     string
	RetryAfter time.Duration
}

func (e *IneligibleError) Error() string {
	return e.Reason
}

// CheckEligibility decides whether a habit under this policy may be
// completed at `now`, given its last completion time (nil if never
// completed). Calendar days are taken in now's location.
func (f Frequency) CheckEligibility(lastCompletedAt *time.Time, now time.Time) error {
	switch f.Type {
	case FrequencyInterval:
		if lastCompletedAt == nil {
			return nil
		}
		required := f.RequiredHours()
		elapsed := now.Sub(*lastCompletedAt).Hours()
		if elapsed >= required {
			return nil
		}
		wait := int(math.Ceil(required - elapsed))
		return &IneligibleError{
			Reason:     fmt.Sprintf("you must wait %d more hours before completing this habit again", wait),
			RetryAfter: time.Duration(wait) * time.Hour,
		}

	case FrequencyWeekdays:
		// Weekend check comes first: it applies regardless of history.
		wd := now.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			return &IneligibleError{Reason: "this habit can only be completed on weekdays"}
		}
		if lastCompletedAt != nil && sameCalendarDay(*lastCompletedAt, now) {
			return &IneligibleError{Reason: "this habit can only be completed once per day"}
		}
		return nil
	}

	return ErrMalformedFrequency
}

func sameCalendarDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
