package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/room-reservation/internal/slot"
)

// ErrInvalidRecurrence indicates a malformed recurrence frequency.
var ErrInvalidRecurrence = errors.New("booking: invalid recurrence")

// Frequency is the repeat step of a recurrence rule.
type Frequency string

const (
	// FrequencyWeekly repeats every 7 days.
	FrequencyWeekly Frequency = "weekly"
	// FrequencyBiweekly repeats every 14 days.
	FrequencyBiweekly Frequency = "biweekly"
	// FrequencyMonthly repeats on the seed's day of month, clamped to short months.
	FrequencyMonthly Frequency = "monthly"
)

// ParseFrequency normalises user input into a Frequency.
func ParseFrequency(value string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(value))); f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown frequency %q", ErrInvalidRecurrence, value)
	}
}

// Recurrence repeats a seed reservation until (and including) Until.
type Recurrence struct {
	Frequency Frequency
	Until     slot.Date
}

// Validate checks the frequency. An Until before the seed date is not an
// error; expansion then yields only the seed.
func (r Recurrence) Validate() error {
	if _, err := ParseFrequency(string(r.Frequency)); err != nil {
		return err
	}
	if r.Until.IsZero() {
		return fmt.Errorf("%w: until date is required", ErrInvalidRecurrence)
	}
	return nil
}
