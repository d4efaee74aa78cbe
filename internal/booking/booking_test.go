package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/example/room-reservation/internal/slot"
)

func TestInterval_Validate(t *testing.T) {
	t.Parallel()

	day := slot.MustDate(2026, time.February, 1)
	window := slot.DefaultWindow()

	valid := Interval{Resource: "room-a", Date: day, Start: slot.MustTimeOfDay("09:00"), End: slot.MustTimeOfDay("10:00")}
	if err := valid.Validate(window); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[string]Interval{
		"empty range":      {Resource: "room-a", Date: day, Start: slot.MustTimeOfDay("10:00"), End: slot.MustTimeOfDay("10:00")},
		"reversed range":   {Resource: "room-a", Date: day, Start: slot.MustTimeOfDay("11:00"), End: slot.MustTimeOfDay("10:00")},
		"before opening":   {Resource: "room-a", Date: day, Start: slot.MustTimeOfDay("07:00"), End: slot.MustTimeOfDay("08:30")},
		"missing date":     {Resource: "room-a", Start: slot.MustTimeOfDay("09:00"), End: slot.MustTimeOfDay("10:00")},
		"missing resource": {Date: day, Start: slot.MustTimeOfDay("09:00"), End: slot.MustTimeOfDay("10:00")},
	}
	for name, interval := range cases {
		t.Run(name, func(t *testing.T) {
			if err := interval.Validate(window); !errors.Is(err, ErrInvalidTimeRange) {
				t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
			}
		})
	}
}

func TestParseFrequency(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"weekly", "BIWEEKLY", " monthly "} {
		if _, err := ParseFrequency(in); err != nil {
			t.Fatalf("expected %q to parse: %v", in, err)
		}
	}
	if _, err := ParseFrequency("daily"); !errors.Is(err, ErrInvalidRecurrence) {
		t.Fatalf("expected ErrInvalidRecurrence, got %v", err)
	}
}

func TestFormData_DetailsFor(t *testing.T) {
	t.Parallel()

	form := FormData{
		Room:    &RoomDetails{Seating: "theatre", Equipment: []string{"projector"}},
		Vehicle: &VehicleDetails{Driver: "Kim"},
	}

	room, ok := form.DetailsFor(CategoryRoom).(RoomDetails)
	if !ok || room.Seating != "theatre" {
		t.Fatalf("expected room details, got %#v", form.DetailsFor(CategoryRoom))
	}
	room.Equipment[0] = "whiteboard"
	if form.Room.Equipment[0] != "projector" {
		t.Fatalf("details must be copied, form was mutated")
	}

	if _, ok := form.DetailsFor(CategoryVehicle).(VehicleDetails); !ok {
		t.Fatalf("expected vehicle details")
	}
	if (FormData{}).DetailsFor(CategoryRoom) != nil {
		t.Fatalf("expected nil details for empty form")
	}
}

func TestEncodeDecodeDetails(t *testing.T) {
	t.Parallel()

	category, payload, err := EncodeDetails(VehicleDetails{Driver: "Lee", Passengers: 3})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := DecodeDetails(category, payload)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got, ok := decoded.(VehicleDetails); !ok || got.Driver != "Lee" || got.Passengers != 3 {
		t.Fatalf("unexpected decoded details: %#v", decoded)
	}

	if _, err := DecodeDetails("boat", []byte(`{}`)); err == nil {
		t.Fatalf("expected unknown category to fail")
	}
}
