package http

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/room-reservation/internal/application"
	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/selection"
	"github.com/example/room-reservation/internal/slot"
)

type cellDTO struct {
	ResourceID booking.ResourceID `json:"resource_id"`
	Date       slot.Date          `json:"date"`
	Time       slot.TimeOfDay     `json:"time"`
}

func (c cellDTO) toCell() selection.Cell {
	return selection.Cell{Resource: c.ResourceID, Date: c.Date, Time: c.Time}
}

func toCellDTO(c selection.Cell) cellDTO {
	return cellDTO{ResourceID: c.Resource, Date: c.Date, Time: c.Time}
}

func toCells(dtos []cellDTO) []selection.Cell {
	out := make([]selection.Cell, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, dto.toCell())
	}
	return out
}

type intervalDTO struct {
	ResourceID booking.ResourceID `json:"resource_id"`
	Date       slot.Date          `json:"date"`
	Start      slot.TimeOfDay     `json:"start"`
	End        slot.TimeOfDay     `json:"end"`
}

func (i intervalDTO) toInterval() booking.Interval {
	return booking.Interval{Resource: i.ResourceID, Date: i.Date, Start: i.Start, End: i.End}
}

func toIntervalDTO(i booking.Interval) intervalDTO {
	return intervalDTO{ResourceID: i.Resource, Date: i.Date, Start: i.Start, End: i.End}
}

type requesterDTO struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
	Purpose    string `json:"purpose,omitempty"`
}

func (r requesterDTO) toRequester() booking.Requester {
	return booking.Requester{Name: r.Name, Email: r.Email, Department: r.Department, Purpose: r.Purpose}
}

func toRequesterDTO(r booking.Requester) requesterDTO {
	return requesterDTO{Name: r.Name, Email: r.Email, Department: r.Department, Purpose: r.Purpose}
}

type formDTO struct {
	Requester requesterDTO            `json:"requester"`
	Room      *booking.RoomDetails    `json:"room,omitempty"`
	Vehicle   *booking.VehicleDetails `json:"vehicle,omitempty"`
}

func (f formDTO) toFormData() booking.FormData {
	return booking.FormData{Requester: f.Requester.toRequester(), Room: f.Room, Vehicle: f.Vehicle}
}

type recurrenceDTO struct {
	Frequency string    `json:"frequency"`
	Until     slot.Date `json:"until"`
}

func (r *recurrenceDTO) toRecurrence() *booking.Recurrence {
	if r == nil {
		return nil
	}
	return &booking.Recurrence{Frequency: booking.Frequency(r.Frequency), Until: r.Until}
}

type candidateDTO struct {
	intervalDTO
	Requester  requesterDTO     `json:"requester"`
	Category   booking.Category `json:"category,omitempty"`
	Details    json.RawMessage  `json:"details,omitempty"`
	SeedDate   *slot.Date       `json:"seed_date,omitempty"`
	Occurrence int              `json:"occurrence"`
	Status     booking.Status   `json:"status,omitempty"`
}

func (c candidateDTO) toCandidate() (booking.Candidate, error) {
	details, err := booking.DecodeDetails(c.Category, c.Details)
	if err != nil {
		return booking.Candidate{}, err
	}
	candidate := booking.Candidate{
		Interval:   c.toInterval(),
		Requester:  c.Requester.toRequester(),
		Details:    details,
		Occurrence: c.Occurrence,
		Status:     c.Status,
	}
	if c.SeedDate != nil {
		candidate.SeedDate = *c.SeedDate
	}
	return candidate, nil
}

func toCandidateDTO(c booking.Candidate) (candidateDTO, error) {
	category, details, err := booking.EncodeDetails(c.Details)
	if err != nil {
		return candidateDTO{}, err
	}
	dto := candidateDTO{
		intervalDTO: toIntervalDTO(c.Interval),
		Requester:   toRequesterDTO(c.Requester),
		Category:    category,
		Details:     details,
		Occurrence:  c.Occurrence,
		Status:      c.Status,
	}
	if !c.SeedDate.IsZero() {
		seed := c.SeedDate
		dto.SeedDate = &seed
	}
	return dto, nil
}

type reservationDTO struct {
	ID       string `json:"id"`
	SeriesID string `json:"series_id,omitempty"`
	intervalDTO
	Requester    requesterDTO     `json:"requester"`
	Category     booking.Category `json:"category,omitempty"`
	Details      json.RawMessage  `json:"details,omitempty"`
	Cancelled    bool             `json:"cancelled"`
	CancelReason string           `json:"cancel_reason,omitempty"`
	CreatedAt    string           `json:"created_at,omitempty"`
}

func toReservationDTO(r booking.Existing) (reservationDTO, error) {
	category, details, err := booking.EncodeDetails(r.Details)
	if err != nil {
		return reservationDTO{}, err
	}
	dto := reservationDTO{
		ID:           r.ID,
		SeriesID:     r.SeriesID,
		intervalDTO:  toIntervalDTO(r.Interval),
		Requester:    toRequesterDTO(r.Requester),
		Category:     category,
		Details:      details,
		Cancelled:    r.Cancelled,
		CancelReason: r.CancelReason,
	}
	if !r.CreatedAt.IsZero() {
		dto.CreatedAt = r.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return dto, nil
}

func toReservationDTOs(reservations []booking.Existing) ([]reservationDTO, error) {
	out := make([]reservationDTO, 0, len(reservations))
	for _, r := range reservations {
		dto, err := toReservationDTO(r)
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	return out, nil
}

type conflictDTO struct {
	Candidate candidateDTO     `json:"candidate"`
	With      []reservationDTO `json:"with"`
}

type rejectionDTO struct {
	Interval intervalDTO `json:"interval"`
	Error    string      `json:"error"`
}

type planDTO struct {
	Valid       []candidateDTO `json:"valid"`
	Conflicting []conflictDTO  `json:"conflicting"`
	Rejected    []rejectionDTO `json:"rejected"`
}

func toPlanDTO(plan booking.CommitPlan) (planDTO, error) {
	out := planDTO{
		Valid:       make([]candidateDTO, 0, len(plan.Valid)),
		Conflicting: make([]conflictDTO, 0, len(plan.Conflicting)),
		Rejected:    make([]rejectionDTO, 0, len(plan.Rejected)),
	}
	for _, c := range plan.Valid {
		dto, err := toCandidateDTO(c)
		if err != nil {
			return planDTO{}, err
		}
		out.Valid = append(out.Valid, dto)
	}
	for _, conflict := range plan.Conflicting {
		candidate, err := toCandidateDTO(conflict.Candidate)
		if err != nil {
			return planDTO{}, err
		}
		with, err := toReservationDTOs(conflict.With)
		if err != nil {
			return planDTO{}, err
		}
		out.Conflicting = append(out.Conflicting, conflictDTO{Candidate: candidate, With: with})
	}
	for _, rejection := range plan.Rejected {
		out.Rejected = append(out.Rejected, rejectionDTO{
			Interval: toIntervalDTO(rejection.Interval),
			Error:    rejection.Err.Error(),
		})
	}
	return out, nil
}

type resourceDTO struct {
	ID         booking.ResourceID `json:"id"`
	Name       string             `json:"name"`
	Category   booking.Category   `json:"category"`
	Capacity   int                `json:"capacity"`
	Location   string             `json:"location,omitempty"`
	Restricted bool               `json:"restricted"`
	CreatedAt  string             `json:"created_at"`
	UpdatedAt  string             `json:"updated_at"`
}

func toResourceDTO(r application.Resource) resourceDTO {
	return resourceDTO{
		ID:         r.ID,
		Name:       r.Name,
		Category:   r.Category,
		Capacity:   r.Capacity,
		Location:   r.Location,
		Restricted: r.Restricted,
		CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toResourceDTOs(resources []application.Resource) []resourceDTO {
	out := make([]resourceDTO, 0, len(resources))
	for _, r := range resources {
		out = append(out, toResourceDTO(r))
	}
	return out
}

// parseDateParam parses an optional YYYY-MM-DD query parameter.
func parseDateParam(value string) (slot.Date, error) {
	if value == "" {
		return slot.Date{}, nil
	}
	d, err := slot.ParseDate(value)
	if err != nil {
		return slot.Date{}, fmt.Errorf("invalid date %q", value)
	}
	return d, nil
}
