// Package recurrence expands a seed reservation into dated occurrences.
package recurrence

import (
	"errors"
	"fmt"

	"github.com/teambition/rrule-go"

	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/slot"
)

// DefaultMaxOccurrences bounds a single expansion when no limit is configured.
const DefaultMaxOccurrences = 366

// ErrTooManyOccurrences indicates the rule would produce more occurrences than allowed.
var ErrTooManyOccurrences = errors.New("recurrence: too many occurrences")

// Engine expands recurrence rules into occurrences.
type Engine struct {
	maxOccurrences int
}

// NewEngine constructs an Engine. A non-positive limit uses DefaultMaxOccurrences.
func NewEngine(maxOccurrences int) *Engine {
	if maxOccurrences <= 0 {
		maxOccurrences = DefaultMaxOccurrences
	}
	return &Engine{maxOccurrences: maxOccurrences}
}

// MaxOccurrences returns the configured expansion limit.
func (e *Engine) MaxOccurrences() int { return e.maxOccurrences }

// Dates returns the occurrence dates for a seed and optional rule, seed first.
//
// The engine enforces the following semantics:
//   - The seed date is always the first element.
//   - A nil rule, or an Until before the seed, yields only the seed.
//   - Monthly rules stay anchored to the seed's day of month and clamp to the
//     last day of shorter months (01-31, 02-28, 03-31, 04-30).
//   - Until is inclusive.
func (e *Engine) Dates(seed slot.Date, rule *booking.Recurrence) ([]slot.Date, error) {
	if rule == nil {
		return []slot.Date{seed}, nil
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if rule.Until.Before(seed) {
		return []slot.Date{seed}, nil
	}

	opts, err := ruleOptions(seed, *rule)
	if err != nil {
		return nil, err
	}
	r, err := rrule.NewRRule(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", booking.ErrInvalidRecurrence, err)
	}

	dates := []slot.Date{seed}
	next := r.Iterator()
	for {
		value, ok := next()
		if !ok {
			break
		}
		date := slot.DateOf(value)
		if !date.After(seed) {
			continue
		}
		if date.After(rule.Until) {
			break
		}
		if len(dates) == e.maxOccurrences {
			return nil, fmt.Errorf("%w: limit is %d", ErrTooManyOccurrences, e.maxOccurrences)
		}
		dates = append(dates, date)
	}
	return dates, nil
}

// Expand clones the seed onto every occurrence date. Children carry no
// recurrence rule, share the seed date and are numbered from 1.
func (e *Engine) Expand(seed booking.Candidate) ([]booking.Candidate, error) {
	if seed.SeedDate.IsZero() {
		seed.SeedDate = seed.Date
	}
	dates, err := e.Dates(seed.Date, seed.Recurrence)
	if err != nil {
		return nil, err
	}

	out := make([]booking.Candidate, 0, len(dates))
	for i, date := range dates {
		c := seed.Clone()
		c.Interval = c.Interval.OnDate(date)
		c.Occurrence = i
		if i > 0 {
			c.Recurrence = nil
		}
		if c.Status == "" {
			c.Status = booking.StatusPending
		}
		out = append(out, c)
	}
	return out, nil
}

func ruleOptions(seed slot.Date, rule booking.Recurrence) (rrule.ROption, error) {
	opts := rrule.ROption{
		Dtstart:  seed.Time(),
		Until:    rule.Until.Time(),
		Interval: 1,
	}
	switch rule.Frequency {
	case booking.FrequencyWeekly:
		opts.Freq = rrule.WEEKLY
	case booking.FrequencyBiweekly:
		opts.Freq = rrule.WEEKLY
		opts.Interval = 2
	case booking.FrequencyMonthly:
		opts.Freq = rrule.MONTHLY
		opts.Bymonthday = []int{seed.Day}
		if seed.Day > 28 {
			// Take the latest existing day among 28..seed.Day in each month.
			opts.Bymonthday = make([]int, 0, seed.Day-27)
			for d := 28; d <= seed.Day; d++ {
				opts.Bymonthday = append(opts.Bymonthday, d)
			}
			opts.Bysetpos = []int{-1}
		}
	default:
		return rrule.ROption{}, fmt.Errorf("%w: unknown frequency %q", booking.ErrInvalidRecurrence, rule.Frequency)
	}
	return opts, nil
}
