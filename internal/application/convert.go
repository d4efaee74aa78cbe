package application

import (
	"fmt"
	"time"

	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/persistence"
	"github.com/example/room-reservation/internal/slot"
)

const minutesPerUnit = int(slot.Granularity / time.Minute)

func toExisting(r persistence.Reservation) (booking.Existing, error) {
	start, err := minutesToTime(r.StartMinute)
	if err != nil {
		return booking.Existing{}, fmt.Errorf("reservation %s start: %w", r.ID, err)
	}
	end, err := minutesToTime(r.EndMinute)
	if err != nil {
		return booking.Existing{}, fmt.Errorf("reservation %s end: %w", r.ID, err)
	}
	details, err := booking.DecodeDetails(booking.Category(r.Category), r.Details)
	if err != nil {
		return booking.Existing{}, fmt.Errorf("reservation %s: %w", r.ID, err)
	}
	return booking.Existing{
		ID:       r.ID,
		SeriesID: r.SeriesID,
		Interval: booking.Interval{
			Resource: booking.ResourceID(r.ResourceID),
			Date:     slot.DateOf(r.Date),
			Start:    start,
			End:      end,
		},
		Requester: booking.Requester{
			Name:       r.RequesterName,
			Email:      r.RequesterEmail,
			Department: r.Department,
			Purpose:    r.Purpose,
		},
		Details:      details,
		Cancelled:    r.Cancelled,
		CancelReason: r.CancelReason,
		CreatedAt:    r.CreatedAt,
	}, nil
}

func toExistingList(records []persistence.Reservation) ([]booking.Existing, error) {
	out := make([]booking.Existing, 0, len(records))
	for _, r := range records {
		existing, err := toExisting(r)
		if err != nil {
			return nil, err
		}
		out = append(out, existing)
	}
	return out, nil
}

func toRecord(id, seriesID string, c booking.Candidate, now time.Time) (persistence.Reservation, error) {
	category, payload, err := booking.EncodeDetails(c.Details)
	if err != nil {
		return persistence.Reservation{}, err
	}
	return persistence.Reservation{
		ID:             id,
		SeriesID:       seriesID,
		ResourceID:     string(c.Resource),
		Date:           c.Date.Time(),
		StartMinute:    c.Start.Units() * minutesPerUnit,
		EndMinute:      c.End.Units() * minutesPerUnit,
		RequesterName:  c.Requester.Name,
		RequesterEmail: c.Requester.Email,
		Department:     c.Requester.Department,
		Purpose:        c.Requester.Purpose,
		Category:       string(category),
		Details:        payload,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func minutesToTime(minutes int) (slot.TimeOfDay, error) {
	if minutes%minutesPerUnit != 0 {
		return 0, fmt.Errorf("%w: %d minutes", slot.ErrMisaligned, minutes)
	}
	return slot.TimeOfDayFromUnits(minutes / minutesPerUnit)
}

func toResource(r persistence.Resource) Resource {
	return Resource{
		ID:         booking.ResourceID(r.ID),
		Name:       r.Name,
		Category:   booking.Category(r.Category),
		Capacity:   r.Capacity,
		Location:   r.Location,
		Restricted: r.Restricted,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toFilter(q ReservationQuery) persistence.ReservationFilter {
	filter := persistence.ReservationFilter{IncludeCancelled: q.IncludeCancelled}
	for _, id := range q.ResourceIDs {
		filter.ResourceIDs = append(filter.ResourceIDs, string(id))
	}
	if !q.From.IsZero() {
		from := q.From.Time()
		filter.From = &from
	}
	if !q.To.IsZero() {
		to := q.To.Time()
		filter.To = &to
	}
	return filter
}
