package slot

import "cmp"

// Instant is a (date, time-of-day) pair, totally ordered by date then time.
type Instant struct {
	Date Date
	Time TimeOfDay
}

// At builds an Instant.
func At(date Date, t TimeOfDay) Instant {
	return Instant{Date: date, Time: t}
}

// Compare returns -1, 0 or +1.
func (i Instant) Compare(other Instant) int {
	if c := i.Date.Compare(other.Date); c != 0 {
		return c
	}
	return cmp.Compare(i.Time, other.Time)
}

// Before reports whether i is strictly earlier than other.
func (i Instant) Before(other Instant) bool { return i.Compare(other) < 0 }

// String formats the instant as "YYYY-MM-DD HH:MM".
func (i Instant) String() string {
	return i.Date.String() + " " + i.Time.String()
}

// Overlaps reports whether the half-open ranges [aStart, aEnd) and [bStart, bEnd)
// intersect. Touching endpoints never overlap.
func Overlaps(aStart, aEnd, bStart, bEnd Instant) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
