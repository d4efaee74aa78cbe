package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/room-reservation/internal/application"
	"github.com/example/room-reservation/internal/booking"
)

func TestServiceFactoryEndToEnd(t *testing.T) {
	ctx := context.Background()
	harness := NewSQLiteHarness(t)
	factory := NewServiceFactory(WithIDGenerator(NewIDGenerator("gen")))

	resources := factory.NewResourceService(harness.Resources)
	room, err := resources.CreateResource(ctx, application.ResourceInput{Name: "Hall", Category: "room", Capacity: 30})
	if err != nil {
		t.Fatalf("CreateResource returned error: %v", err)
	}
	if room.ID != "gen-1" {
		t.Fatalf("expected generated ID gen-1, got %q", room.ID)
	}
	if !room.CreatedAt.Equal(factory.Clock.Now()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Now(), room.CreatedAt)
	}

	bookings := factory.NewBookingService(BookingServiceDeps{Snapshots: harness.Reservations})
	plan, err := bookings.Submit(ctx, application.SubmitParams{
		Cells: Cells(room.ID, ReferenceDate(), "10:00", "10:30"),
		Form:  booking.FormData{Requester: booking.Requester{Name: "Grace", Email: "grace@example.com"}},
		Recurrence: &booking.Recurrence{
			Frequency: booking.FrequencyBiweekly,
			Until:     ReferenceDate().AddDays(28),
		},
	})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if len(plan.Valid) != 3 || plan.HasConflicts() {
		t.Fatalf("expected 3 valid candidates without conflicts, got %+v", plan)
	}

	reservations := factory.NewReservationService(harness.Reservations, nil)
	result, err := reservations.Commit(ctx, plan.Valid)
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if len(result.Created) != 3 {
		t.Fatalf("expected 3 reservations, got %d", len(result.Created))
	}
	for _, r := range result.Created {
		if r.SeriesID != "gen-2" {
			t.Fatalf("expected series gen-2, got %q", r.SeriesID)
		}
	}

	factory.Clock.Advance(time.Hour)
	again, err := bookings.Submit(ctx, application.SubmitParams{
		Cells: Cells(room.ID, ReferenceDate().AddDays(14), "10:30"),
		Form:  booking.FormData{Requester: booking.Requester{Name: "Alan", Email: "alan@example.com"}},
	})
	if err != nil {
		t.Fatalf("second Submit returned error: %v", err)
	}
	if len(again.Conflicting) != 1 || again.Conflicting[0].With[0].ID != result.Created[1].ID {
		t.Fatalf("expected a conflict with %s, got %+v", result.Created[1].ID, again.Conflicting)
	}
}

func TestReservationFixtureConversions(t *testing.T) {
	room := NewResourceFixture(WithResourceID("room-x"))
	fixture := NewReservationFixture(room.ResourceID(),
		Between("13:00", "14:30"),
		InSeries("series-9"),
		WithDetails(booking.RoomDetails{Equipment: []string{"projector"}}),
	)

	record := fixture.Persistence()
	if record.StartMinute != 13*60 || record.EndMinute != 14*60+30 {
		t.Fatalf("unexpected minutes %d-%d", record.StartMinute, record.EndMinute)
	}
	if record.Category != "room" || string(record.Details) != `{"equipment":["projector"]}` {
		t.Fatalf("unexpected details %q %s", record.Category, record.Details)
	}

	if existing := fixture.Existing(); existing.SeriesID != "series-9" || existing.Interval != fixture.Interval {
		t.Fatalf("unexpected existing %+v", existing)
	}

	candidate := fixture.Candidate()
	if candidate.SeriesKey() != "room-x|2026-03-02|13:00|14:30" {
		t.Fatalf("unexpected series key %q", candidate.SeriesKey())
	}
}
