package persistence

import "time"

// Resource represents a bookable room or vehicle.
type Resource struct {
	ID         string
	Name       string
	Category   string
	Capacity   int
	Location   string
	Restricted bool
	// UnlockHash is the encoded argon2id hash of the unlock token, empty when unrestricted.
	UnlockHash string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Reservation represents a committed booking row.
type Reservation struct {
	ID         string
	SeriesID   string
	ResourceID string
	// Date is the booking date at UTC midnight.
	Date time.Time
	// StartMinute and EndMinute are offsets from midnight, end exclusive.
	StartMinute    int
	EndMinute      int
	RequesterName  string
	RequesterEmail string
	Department     string
	Purpose        string
	Category       string
	Details        []byte
	Cancelled      bool
	CancelReason   string
	CancelledAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
