package slot

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    TimeOfDay
		wantErr error
	}{
		{in: "08:00", want: 16},
		{in: "21:30", want: 43},
		{in: "00:00", want: 0},
		{in: "24:00", want: UnitsPerDay},
		{in: "09:15", wantErr: ErrMisaligned},
		{in: "25:00", wantErr: ErrInvalidTime},
		{in: "nine", wantErr: ErrInvalidTime},
		{in: "09:75", wantErr: ErrInvalidTime},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tc.in)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %d units, got %d", tc.want, got)
			}
			if got.String() != tc.in {
				t.Fatalf("expected round trip %q, got %q", tc.in, got.String())
			}
		})
	}
}

func TestTimeOfDayFromHours(t *testing.T) {
	t.Parallel()

	got, err := TimeOfDayFromHours(8.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hours() != 8.5 || got.String() != "08:30" {
		t.Fatalf("unexpected conversion: %v (%s)", got.Hours(), got)
	}

	if _, err := TimeOfDayFromHours(8.25); !errors.Is(err, ErrMisaligned) {
		t.Fatalf("expected misaligned error, got %v", err)
	}
}

func TestWindow_Add(t *testing.T) {
	t.Parallel()

	w := DefaultWindow()

	got, err := w.Add(MustTimeOfDay("09:00"), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != MustTimeOfDay("10:30") {
		t.Fatalf("expected 10:30, got %s", got)
	}

	if _, err := w.Add(MustTimeOfDay("21:30"), 1); !errors.Is(err, ErrOutOfWindow) {
		t.Fatalf("expected out of window at close, got %v", err)
	}
	if _, err := w.Add(MustTimeOfDay("08:00"), -1); !errors.Is(err, ErrOutOfWindow) {
		t.Fatalf("expected out of window before open, got %v", err)
	}
}

func TestWindow_ValidRange(t *testing.T) {
	t.Parallel()

	w := DefaultWindow()
	if err := w.ValidRange(MustTimeOfDay("21:00"), MustTimeOfDay("22:00")); err != nil {
		t.Fatalf("range ending at close should be valid: %v", err)
	}
	if err := w.ValidRange(MustTimeOfDay("10:00"), MustTimeOfDay("10:00")); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("expected empty range to fail, got %v", err)
	}
	if err := w.ValidRange(MustTimeOfDay("07:30"), MustTimeOfDay("09:00")); !errors.Is(err, ErrOutOfWindow) {
		t.Fatalf("expected early start to fail, got %v", err)
	}
	if len(w.Slots()) != 28 {
		t.Fatalf("expected 28 cells in 08:00-22:00, got %d", len(w.Slots()))
	}
}

func TestDate(t *testing.T) {
	t.Parallel()

	t.Run("rejects impossible dates", func(t *testing.T) {
		if _, err := NewDate(2026, time.February, 30); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("expected invalid date, got %v", err)
		}
		if _, err := ParseDate("2026-13-01"); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("expected invalid date, got %v", err)
		}
	})

	t.Run("orders lexicographically", func(t *testing.T) {
		a := MustDate(2025, time.December, 31)
		b := MustDate(2026, time.January, 1)
		if !a.Before(b) || !b.After(a) || a.Compare(a) != 0 {
			t.Fatalf("unexpected ordering between %s and %s", a, b)
		}
	})

	t.Run("compares each field in turn", func(t *testing.T) {
		base := MustDate(2026, time.March, 15)
		cases := []struct {
			other Date
			want  int
		}{
			{MustDate(2025, time.December, 31), 1},
			{MustDate(2026, time.February, 28), 1},
			{MustDate(2026, time.April, 1), -1},
			{MustDate(2026, time.March, 14), 1},
			{MustDate(2026, time.March, 16), -1},
			{MustDate(2026, time.March, 15), 0},
		}
		for _, tc := range cases {
			if got := base.Compare(tc.other); got != tc.want {
				t.Fatalf("%s.Compare(%s) = %d, want %d", base, tc.other, got, tc.want)
			}
		}

		nine := At(base, MustTimeOfDay("09:00"))
		if nine.Compare(At(base, MustTimeOfDay("09:30"))) != -1 || nine.Compare(At(base, MustTimeOfDay("08:30"))) != 1 || nine.Compare(nine) != 0 {
			t.Fatalf("unexpected instant ordering around %s", nine)
		}
	})

	t.Run("clamps month arithmetic", func(t *testing.T) {
		jan31 := MustDate(2026, time.January, 31)
		if got := jan31.AddMonthsClamped(1); got != MustDate(2026, time.February, 28) {
			t.Fatalf("expected 2026-02-28, got %s", got)
		}
		if got := MustDate(2024, time.January, 31).AddMonthsClamped(1); got != MustDate(2024, time.February, 29) {
			t.Fatalf("expected leap day, got %s", got)
		}
		if got := jan31.AddMonthsClamped(12); got != MustDate(2027, time.January, 31) {
			t.Fatalf("expected 2027-01-31, got %s", got)
		}
	})

	t.Run("adds days across month ends", func(t *testing.T) {
		if got := MustDate(2026, time.January, 26).AddDays(7); got.String() != "2026-02-02" {
			t.Fatalf("expected 2026-02-02, got %s", got)
		}
	})
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	day := MustDate(2026, time.February, 1)
	other := day.AddDays(1)
	at := func(d Date, v string) Instant { return At(d, MustTimeOfDay(v)) }

	if Overlaps(at(day, "09:00"), at(day, "10:00"), at(day, "10:00"), at(day, "11:00")) {
		t.Fatalf("touching ranges must not overlap")
	}
	if !Overlaps(at(day, "09:00"), at(day, "10:00"), at(day, "09:30"), at(day, "10:30")) {
		t.Fatalf("expected overlap")
	}
	if Overlaps(at(day, "09:00"), at(day, "10:00"), at(other, "09:00"), at(other, "10:00")) {
		t.Fatalf("different dates must not overlap")
	}
}
