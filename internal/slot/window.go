package slot

import "fmt"

// Window is the configured operating window [Open, Close).
type Window struct {
	Open  TimeOfDay
	Close TimeOfDay
}

// DefaultWindow returns the 08:00-22:00 operating window.
func DefaultWindow() Window {
	return Window{Open: 8 * UnitsPerHour, Close: 22 * UnitsPerHour}
}

// NewWindow validates that open precedes close.
func NewWindow(open, closing TimeOfDay) (Window, error) {
	if open < 0 || closing > UnitsPerDay || open >= closing {
		return Window{}, fmt.Errorf("%w: window %s-%s", ErrInvalidTime, open, closing)
	}
	return Window{Open: open, Close: closing}, nil
}

// Contains reports whether t is a valid cell start inside the window.
func (w Window) Contains(t TimeOfDay) bool {
	return t >= w.Open && t < w.Close
}

// Add moves t by the given number of units. The result must stay inside [Open, Close).
func (w Window) Add(t TimeOfDay, units int) (TimeOfDay, error) {
	result := t + TimeOfDay(units)
	if !w.Contains(result) {
		return 0, fmt.Errorf("%w: %s%+d units", ErrOutOfWindow, t, units)
	}
	return result, nil
}

// ValidRange checks a half-open range [start, end) against the window. The
// end boundary may equal Close.
func (w Window) ValidRange(start, end TimeOfDay) error {
	if start >= end {
		return fmt.Errorf("%w: start %s is not before end %s", ErrInvalidTime, start, end)
	}
	if start < w.Open || end > w.Close {
		return fmt.Errorf("%w: %s-%s outside %s-%s", ErrOutOfWindow, start, end, w.Open, w.Close)
	}
	return nil
}

// Slots enumerates every cell start in the window.
func (w Window) Slots() []TimeOfDay {
	if w.Close <= w.Open {
		return nil
	}
	out := make([]TimeOfDay, 0, int(w.Close-w.Open))
	for t := w.Open; t < w.Close; t++ {
		out = append(out, t)
	}
	return out
}

// String formats the window as HH:MM-HH:MM.
func (w Window) String() string {
	return w.Open.String() + "-" + w.Close.String()
}
