package recurrence

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/slot"
)

func dates(values ...string) []slot.Date {
	out := make([]slot.Date, len(values))
	for i, v := range values {
		d, err := slot.ParseDate(v)
		if err != nil {
			panic(err)
		}
		out[i] = d
	}
	return out
}

func TestEngine_Dates(t *testing.T) {
	t.Parallel()

	engine := NewEngine(0)

	tests := []struct {
		name string
		seed string
		rule *booking.Recurrence
		want []slot.Date
	}{
		{
			name: "no rule yields seed",
			seed: "2026-01-05",
			want: dates("2026-01-05"),
		},
		{
			name: "weekly includes until",
			seed: "2026-01-05",
			rule: &booking.Recurrence{Frequency: booking.FrequencyWeekly, Until: dates("2026-01-19")[0]},
			want: dates("2026-01-05", "2026-01-12", "2026-01-19"),
		},
		{
			name: "biweekly",
			seed: "2026-01-05",
			rule: &booking.Recurrence{Frequency: booking.FrequencyBiweekly, Until: dates("2026-02-10")[0]},
			want: dates("2026-01-05", "2026-01-19", "2026-02-02"),
		},
		{
			name: "monthly clamps to short months",
			seed: "2026-01-31",
			rule: &booking.Recurrence{Frequency: booking.FrequencyMonthly, Until: dates("2026-04-30")[0]},
			want: dates("2026-01-31", "2026-02-28", "2026-03-31", "2026-04-30"),
		},
		{
			name: "monthly on the 30th in a leap year",
			seed: "2028-01-30",
			rule: &booking.Recurrence{Frequency: booking.FrequencyMonthly, Until: dates("2028-03-30")[0]},
			want: dates("2028-01-30", "2028-02-29", "2028-03-30"),
		},
		{
			name: "monthly on an ordinary day",
			seed: "2026-01-15",
			rule: &booking.Recurrence{Frequency: booking.FrequencyMonthly, Until: dates("2026-03-14")[0]},
			want: dates("2026-01-15", "2026-02-15"),
		},
		{
			name: "until before seed yields seed",
			seed: "2026-01-05",
			rule: &booking.Recurrence{Frequency: booking.FrequencyWeekly, Until: dates("2026-01-01")[0]},
			want: dates("2026-01-05"),
		},
		{
			name: "until equal to seed yields seed",
			seed: "2026-01-05",
			rule: &booking.Recurrence{Frequency: booking.FrequencyWeekly, Until: dates("2026-01-05")[0]},
			want: dates("2026-01-05"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := engine.Dates(dates(tt.seed)[0], tt.rule)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Dates() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngine_DatesErrors(t *testing.T) {
	t.Parallel()

	seed := slot.MustDate(2026, time.January, 5)

	t.Run("malformed frequency", func(t *testing.T) {
		t.Parallel()
		_, err := NewEngine(0).Dates(seed, &booking.Recurrence{Frequency: "daily", Until: seed.AddDays(10)})
		if !errors.Is(err, booking.ErrInvalidRecurrence) {
			t.Fatalf("expected ErrInvalidRecurrence, got %v", err)
		}
	})

	t.Run("limit exceeded", func(t *testing.T) {
		t.Parallel()
		_, err := NewEngine(3).Dates(seed, &booking.Recurrence{Frequency: booking.FrequencyWeekly, Until: seed.AddDays(21)})
		if !errors.Is(err, ErrTooManyOccurrences) {
			t.Fatalf("expected ErrTooManyOccurrences, got %v", err)
		}
	})

	t.Run("limit reached exactly", func(t *testing.T) {
		t.Parallel()
		got, err := NewEngine(3).Dates(seed, &booking.Recurrence{Frequency: booking.FrequencyWeekly, Until: seed.AddDays(14)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 dates, got %d", len(got))
		}
	})
}

func TestEngine_Expand(t *testing.T) {
	t.Parallel()

	seedDate := slot.MustDate(2026, time.January, 5)
	seed := booking.Candidate{
		Interval: booking.Interval{
			Resource: "room-a",
			Date:     seedDate,
			Start:    slot.MustTimeOfDay("09:00"),
			End:      slot.MustTimeOfDay("10:00"),
		},
		Requester:  booking.Requester{Name: "Sato", Email: "sato@example.com"},
		Details:    booking.RoomDetails{Equipment: []string{"projector"}},
		Recurrence: &booking.Recurrence{Frequency: booking.FrequencyWeekly, Until: seedDate.AddDays(14)},
	}

	got, err := NewEngine(0).Expand(seed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}

	for i, c := range got {
		if c.Occurrence != i {
			t.Fatalf("candidate %d has occurrence %d", i, c.Occurrence)
		}
		if c.SeedDate != seedDate {
			t.Fatalf("candidate %d has seed date %s", i, c.SeedDate)
		}
		if c.Date != seedDate.AddDays(7*i) {
			t.Fatalf("candidate %d dated %s", i, c.Date)
		}
		if c.Start != seed.Start || c.End != seed.End || c.Requester != seed.Requester {
			t.Fatalf("candidate %d lost seed fields: %+v", i, c)
		}
		if c.Status != booking.StatusPending {
			t.Fatalf("candidate %d status %q", i, c.Status)
		}
		if (i == 0) != (c.Recurrence != nil) {
			t.Fatalf("only the seed may carry the rule, candidate %d has %v", i, c.Recurrence)
		}
	}

	got[1].Details.(booking.RoomDetails).Equipment[0] = "whiteboard"
	if got[0].Details.(booking.RoomDetails).Equipment[0] != "projector" {
		t.Fatalf("expanded candidates share details state")
	}
}
