package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/persistence"
	"github.com/example/room-reservation/internal/selection"
	"github.com/example/room-reservation/internal/slot"
)

var (
	resourceCounter    uint64
	reservationCounter uint64
)

// referenceTime is a Monday morning inside the default operating window.
var referenceTime = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)

// ReferenceTime returns the baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns the calendar date of ReferenceTime.
func ReferenceDate() slot.Date {
	return slot.DateOf(referenceTime)
}

// ----------------------------- Resource fixtures -----------------------------

// ResourceFixture is a deterministic catalog entry.
type ResourceFixture struct {
	ID         string
	Name       string
	Category   booking.Category
	Capacity   int
	Location   string
	Restricted bool
	UnlockHash string
	CreatedAt  time.Time
}

// ResourceOption configures a ResourceFixture.
type ResourceOption func(*ResourceFixture)

// NewResourceFixture returns a room named after a running counter.
func NewResourceFixture(opts ...ResourceOption) ResourceFixture {
	idx := atomic.AddUint64(&resourceCounter, 1)
	fixture := ResourceFixture{
		ID:        fmt.Sprintf("resource-%03d", idx),
		Name:      fmt.Sprintf("Resource %03d", idx),
		Category:  booking.CategoryRoom,
		Capacity:  int(4 + idx%6),
		Location:  "Main Office",
		CreatedAt: referenceTime.Add(-time.Duration(idx) * time.Hour),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithResourceID overrides the generated ID.
func WithResourceID(id string) ResourceOption {
	return func(f *ResourceFixture) { f.ID = id }
}

// WithResourceName overrides the generated name.
func WithResourceName(name string) ResourceOption {
	return func(f *ResourceFixture) { f.Name = name }
}

// AsVehicle turns the fixture into a vehicle.
func AsVehicle() ResourceOption {
	return func(f *ResourceFixture) { f.Category = booking.CategoryVehicle }
}

// WithCapacity overrides the generated capacity.
func WithCapacity(capacity int) ResourceOption {
	return func(f *ResourceFixture) { f.Capacity = capacity }
}

// WithUnlockHash marks the resource restricted behind the encoded hash.
func WithUnlockHash(hash string) ResourceOption {
	return func(f *ResourceFixture) {
		f.Restricted = true
		f.UnlockHash = hash
	}
}

// Persistence returns the fixture as a storage row.
func (f ResourceFixture) Persistence() persistence.Resource {
	return persistence.Resource{
		ID:         f.ID,
		Name:       f.Name,
		Category:   string(f.Category),
		Capacity:   f.Capacity,
		Location:   f.Location,
		Restricted: f.Restricted,
		UnlockHash: f.UnlockHash,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.CreatedAt,
	}
}

// ResourceID returns the fixture ID as a booking.ResourceID.
func (f ResourceFixture) ResourceID() booking.ResourceID {
	return booking.ResourceID(f.ID)
}

// --------------------------- Reservation fixtures ----------------------------

// ReservationFixture is a deterministic committed booking.
type ReservationFixture struct {
	ID           string
	SeriesID     string
	Interval     booking.Interval
	Requester    booking.Requester
	Details      booking.Details
	Cancelled    bool
	CancelReason string
	CreatedAt    time.Time
}

// ReservationOption configures a ReservationFixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture returns a 09:00-10:00 booking on ReferenceDate.
func NewReservationFixture(resource booking.ResourceID, opts ...ReservationOption) ReservationFixture {
	idx := atomic.AddUint64(&reservationCounter, 1)
	fixture := ReservationFixture{
		ID: fmt.Sprintf("reservation-%03d", idx),
		Interval: booking.Interval{
			Resource: resource,
			Date:     ReferenceDate(),
			Start:    slot.MustTimeOfDay("09:00"),
			End:      slot.MustTimeOfDay("10:00"),
		},
		Requester: booking.Requester{
			Name:  fmt.Sprintf("Booker %03d", idx),
			Email: fmt.Sprintf("booker-%03d@example.com", idx),
		},
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the generated ID.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) { f.ID = id }
}

// InSeries links the reservation to a recurring series.
func InSeries(seriesID string) ReservationOption {
	return func(f *ReservationFixture) { f.SeriesID = seriesID }
}

// OnDate moves the reservation to date.
func OnDate(date slot.Date) ReservationOption {
	return func(f *ReservationFixture) { f.Interval.Date = date }
}

// Between sets the half-open time range, both given as "HH:MM".
func Between(start, end string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Interval.Start = slot.MustTimeOfDay(start)
		f.Interval.End = slot.MustTimeOfDay(end)
	}
}

// WithDetails attaches a category extension.
func WithDetails(details booking.Details) ReservationOption {
	return func(f *ReservationFixture) { f.Details = details }
}

// CancelledBecause marks the reservation cancelled.
func CancelledBecause(reason string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Cancelled = true
		f.CancelReason = reason
	}
}

// Existing returns the fixture as the detector sees it.
func (f ReservationFixture) Existing() booking.Existing {
	return booking.Existing{
		ID:           f.ID,
		SeriesID:     f.SeriesID,
		Interval:     f.Interval,
		Requester:    f.Requester,
		Details:      booking.CloneDetails(f.Details),
		Cancelled:    f.Cancelled,
		CancelReason: f.CancelReason,
		CreatedAt:    f.CreatedAt,
	}
}

// Candidate returns the fixture as an uncommitted seed candidate.
func (f ReservationFixture) Candidate() booking.Candidate {
	return booking.Candidate{
		Interval:  f.Interval,
		Requester: f.Requester,
		Details:   booking.CloneDetails(f.Details),
		SeedDate:  f.Interval.Date,
		Status:    booking.StatusPending,
	}
}

// Persistence returns the fixture as a storage row. It panics when the
// details cannot be encoded, which only happens for broken fixtures.
func (f ReservationFixture) Persistence() persistence.Reservation {
	category, payload, err := booking.EncodeDetails(f.Details)
	if err != nil {
		panic(fmt.Sprintf("testfixtures: encode details: %v", err))
	}
	record := persistence.Reservation{
		ID:             f.ID,
		SeriesID:       f.SeriesID,
		ResourceID:     string(f.Interval.Resource),
		Date:           f.Interval.Date.Time(),
		StartMinute:    int(f.Interval.Start.Duration() / time.Minute),
		EndMinute:      int(f.Interval.End.Duration() / time.Minute),
		RequesterName:  f.Requester.Name,
		RequesterEmail: f.Requester.Email,
		Department:     f.Requester.Department,
		Purpose:        f.Requester.Purpose,
		Category:       string(category),
		Details:        payload,
		Cancelled:      f.Cancelled,
		CancelReason:   f.CancelReason,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.CreatedAt,
	}
	if f.Cancelled {
		at := f.CreatedAt
		record.CancelledAt = &at
	}
	return record
}

// Cells lists the half-hour cells of resource on date starting at each of times.
func Cells(resource booking.ResourceID, date slot.Date, times ...string) []selection.Cell {
	out := make([]selection.Cell, 0, len(times))
	for _, t := range times {
		out = append(out, selection.Cell{Resource: resource, Date: date, Time: slot.MustTimeOfDay(t)})
	}
	return out
}
