package slot

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// Granularity is the smallest bookable time quantum.
	Granularity = 30 * time.Minute
	// UnitsPerHour is the number of granularity units in one hour.
	UnitsPerHour = 2
	// UnitsPerDay is the number of granularity units in one day. A TimeOfDay
	// equal to UnitsPerDay represents the end-of-day boundary (24:00).
	UnitsPerDay = 24 * UnitsPerHour
)

var (
	// ErrInvalidTime indicates a time-of-day outside 00:00..24:00 or unparsable input.
	ErrInvalidTime = errors.New("slot: invalid time of day")
	// ErrMisaligned indicates a time-of-day that is not a multiple of the granularity.
	ErrMisaligned = errors.New("slot: time of day is not aligned to the half-hour granularity")
	// ErrOutOfWindow indicates a result that leaves the operating window.
	ErrOutOfWindow = errors.New("slot: time outside operating window")
)

// TimeOfDay is a half-hour aligned offset from midnight, stored as a count of
// granularity units. 8:30 is 17.
type TimeOfDay int

// TimeOfDayFromUnits validates a unit count and returns the matching TimeOfDay.
func TimeOfDayFromUnits(units int) (TimeOfDay, error) {
	if units < 0 || units > UnitsPerDay {
		return 0, fmt.Errorf("%w: %d units", ErrInvalidTime, units)
	}
	return TimeOfDay(units), nil
}

// TimeOfDayFromHours converts a rational hour such as 8.5 into a TimeOfDay.
func TimeOfDayFromHours(hours float64) (TimeOfDay, error) {
	scaled := hours * UnitsPerHour
	if math.IsNaN(scaled) || math.IsInf(scaled, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTime, hours)
	}
	if scaled != math.Trunc(scaled) {
		return 0, fmt.Errorf("%w: %v", ErrMisaligned, hours)
	}
	return TimeOfDayFromUnits(int(scaled))
}

// ParseTimeOfDay parses "HH:MM". Minutes must be 00 or 30; "24:00" is accepted
// as the end-of-day boundary.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	hours, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 || minutes >= 60 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	if minutes%int(Granularity/time.Minute) != 0 {
		return 0, fmt.Errorf("%w: %q", ErrMisaligned, value)
	}
	return TimeOfDayFromUnits(hours*UnitsPerHour + minutes/int(Granularity/time.Minute))
}

// MustTimeOfDay is like ParseTimeOfDay but panics on error. Intended for
// constants and tests.
func MustTimeOfDay(value string) TimeOfDay {
	t, err := ParseTimeOfDay(value)
	if err != nil {
		panic(err)
	}
	return t
}

// Units returns the number of granularity units since midnight.
func (t TimeOfDay) Units() int { return int(t) }

// Hours returns the rational hour representation (8.5 for 08:30).
func (t TimeOfDay) Hours() float64 { return float64(t) / UnitsPerHour }

// Duration returns the offset from midnight.
func (t TimeOfDay) Duration() time.Duration { return time.Duration(t) * Granularity }

// Next returns the boundary one granularity unit later without window checks.
func (t TimeOfDay) Next() TimeOfDay { return t + 1 }

// String formats the value as HH:MM.
func (t TimeOfDay) String() string {
	minutes := int(t.Duration() / time.Minute)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
