package booking

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Category selects the resource-specific extension record of a reservation.
type Category string

const (
	// CategoryRoom covers meeting rooms and halls.
	CategoryRoom Category = "room"
	// CategoryVehicle covers pool cars and vans.
	CategoryVehicle Category = "vehicle"
)

// ParseCategory normalises a category name. Empty input defaults to rooms.
func ParseCategory(value string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(value))); c {
	case "":
		return CategoryRoom, nil
	case CategoryRoom, CategoryVehicle:
		return c, nil
	default:
		return "", fmt.Errorf("booking: unknown category %q", value)
	}
}

// Requester carries the common metadata entered on the booking form.
type Requester struct {
	Name       string
	Email      string
	Department string
	Purpose    string
}

// Details is the category-specific extension attached to a reservation.
type Details interface {
	Category() Category
}

// RoomDetails holds fields that only apply to rooms.
type RoomDetails struct {
	Seating   string   `json:"seating,omitempty"`
	Attendees int      `json:"attendees,omitempty"`
	Equipment []string `json:"equipment,omitempty"`
}

// Category implements Details.
func (RoomDetails) Category() Category { return CategoryRoom }

// VehicleDetails holds fields that only apply to vehicles.
type VehicleDetails struct {
	Driver      string `json:"driver,omitempty"`
	Destination string `json:"destination,omitempty"`
	Passengers  int    `json:"passengers,omitempty"`
}

// Category implements Details.
func (VehicleDetails) Category() Category { return CategoryVehicle }

// FormData is the raw booking form. Only the extension matching a resource's
// category is attached to that resource's candidates.
type FormData struct {
	Requester Requester
	Room      *RoomDetails
	Vehicle   *VehicleDetails
}

// DetailsFor returns a copy of the extension for the given category, or nil.
func (f FormData) DetailsFor(category Category) Details {
	switch category {
	case CategoryRoom:
		if f.Room != nil {
			d := *f.Room
			d.Equipment = slices.Clone(f.Room.Equipment)
			return d
		}
	case CategoryVehicle:
		if f.Vehicle != nil {
			return *f.Vehicle
		}
	}
	return nil
}

// CloneDetails returns a deep copy of d.
func CloneDetails(d Details) Details {
	if room, ok := d.(RoomDetails); ok {
		room.Equipment = slices.Clone(room.Equipment)
		return room
	}
	return d
}

// EncodeDetails serialises an extension for storage.
func EncodeDetails(d Details) (Category, []byte, error) {
	if d == nil {
		return "", nil, nil
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return "", nil, fmt.Errorf("booking: encode %s details: %w", d.Category(), err)
	}
	return d.Category(), payload, nil
}

// DecodeDetails restores an extension previously produced by EncodeDetails.
func DecodeDetails(category Category, payload []byte) (Details, error) {
	if category == "" || len(payload) == 0 {
		return nil, nil
	}
	switch category {
	case CategoryRoom:
		var d RoomDetails
		if err := json.Unmarshal(payload, &d); err != nil {
			return nil, fmt.Errorf("booking: decode room details: %w", err)
		}
		return d, nil
	case CategoryVehicle:
		var d VehicleDetails
		if err := json.Unmarshal(payload, &d); err != nil {
			return nil, fmt.Errorf("booking: decode vehicle details: %w", err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("booking: unknown category %q", category)
	}
}
