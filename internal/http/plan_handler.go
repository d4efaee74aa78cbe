package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/example/room-reservation/internal/application"
	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/scheduler"
	"github.com/example/room-reservation/internal/selection"
	"github.com/example/room-reservation/internal/slot"
)

type bookingService interface {
	Submit(ctx context.Context, params application.SubmitParams) (booking.CommitPlan, error)
	Window() slot.Window
}

type occupancyService interface {
	Occupancy(ctx context.Context, resources []booking.ResourceID, from, to slot.Date) (*scheduler.Occupancy, error)
	Availability(ctx context.Context, resource booking.ResourceID, date slot.Date) ([]slot.TimeOfDay, error)
}

// PlanHandler serves selection checks, availability and commit plans.
type PlanHandler struct {
	bookings     bookingService
	resources    resourceService
	reservations occupancyService
	responder    responder
	logger       *slog.Logger
}

// NewPlanHandler constructs a PlanHandler.
func NewPlanHandler(bookings bookingService, resources resourceService, reservations occupancyService, logger *slog.Logger) *PlanHandler {
	base := defaultLogger(logger)
	return &PlanHandler{
		bookings:     bookings,
		resources:    resources,
		reservations: reservations,
		responder:    newResponder(base),
		logger:       base,
	}
}

func (h *PlanHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "PlanHandler", operation, attrs...)
}

// Submit handles POST /plans. Every restricted resource in the selection
// needs a valid entry in unlock_tokens.
func (h *PlanHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req planRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Submit", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode plan request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Submit", "cell_count", len(req.Cells))
	cells := toCells(req.Cells)
	resources := distinctResources(cells)

	policy, err := resolvePolicy(r.Context(), h.resources, resources, req.UnlockTokens)
	if err != nil {
		logger.ErrorContext(r.Context(), "restriction lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	for _, id := range resources {
		if !policy.Allowed(id) {
			err := fmt.Errorf("%w: %s", application.ErrResourceRestricted, id)
			logger.WarnContext(r.Context(), "restricted resource in selection", "resource_id", id)
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
	}

	categories, err := h.resources.Categories(r.Context(), resources)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	plan, err := h.bookings.Submit(r.Context(), application.SubmitParams{
		Cells:      cells,
		Form:       req.Form.toFormData(),
		Recurrence: req.Recurrence.toRecurrence(),
		Categories: categories,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "plan submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dto, err := toPlanDTO(plan)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, planResponse{Plan: dto})
}

// Select handles POST /selections. It replays the picked cells through a
// selection session against the current occupancy and reports which cells
// would be accepted.
func (h *PlanHandler) Select(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req selectionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	cells := toCells(req.Cells)
	resources := distinctResources(cells)
	logger := h.log(r.Context(), "Select", "cell_count", len(cells))

	policy, err := resolvePolicy(r.Context(), h.resources, resources, req.UnlockTokens)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var occupancy selection.Occupancy
	if len(cells) > 0 {
		from, to := dateSpan(cells)
		occ, err := h.reservations.Occupancy(r.Context(), resources, from, to)
		if err != nil {
			logger.ErrorContext(r.Context(), "occupancy lookup failed", "error", err, "error_kind", application.ErrorKind(err))
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		occupancy = occ
	}

	session := selection.NewSession(h.bookings.Window(), occupancy, policy)
	if err := session.Begin(); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}

	resp := selectionResponse{
		Accepted:  []cellDTO{},
		Rejected:  []cellRejectionDTO{},
		Intervals: []intervalDTO{},
	}
	for _, cell := range cells {
		if err := session.Add(cell); err != nil {
			resp.Rejected = append(resp.Rejected, cellRejectionDTO{Cell: toCellDTO(cell), Reason: rejectionReason(err)})
		}
	}
	for _, cell := range session.Cells() {
		resp.Accepted = append(resp.Accepted, toCellDTO(cell))
	}
	for _, interval := range session.Intervals() {
		resp.Intervals = append(resp.Intervals, toIntervalDTO(interval))
	}
	resp.State = session.State().String()

	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// Availability handles GET /availability?resource_id=&date=.
func (h *PlanHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	resource := booking.ResourceID(strings.TrimSpace(query.Get("resource_id")))
	if resource == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingResourceID)
		return
	}
	date, err := parseDateParam(strings.TrimSpace(query.Get("date")))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	if date.IsZero() {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingDate)
		return
	}

	reserved, err := h.reservations.Availability(r.Context(), resource, date)
	if err != nil {
		h.log(r.Context(), "Availability", "resource_id", resource).ErrorContext(r.Context(), "availability lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	window := h.bookings.Window()
	resp := availabilityResponse{
		ResourceID: resource,
		Date:       date,
		Open:       window.Open,
		Close:      window.Close,
		Reserved:   make([]slot.TimeOfDay, 0, len(reserved)),
		Free:       []slot.TimeOfDay{},
	}
	resp.Reserved = append(resp.Reserved, reserved...)
	for _, t := range window.Slots() {
		if _, found := slices.BinarySearch(reserved, t); !found {
			resp.Free = append(resp.Free, t)
		}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func distinctResources(cells []selection.Cell) []booking.ResourceID {
	out := make([]booking.ResourceID, 0, len(cells))
	for _, c := range cells {
		out = append(out, c.Resource)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func dateSpan(cells []selection.Cell) (slot.Date, slot.Date) {
	from, to := cells[0].Date, cells[0].Date
	for _, c := range cells[1:] {
		if c.Date.Before(from) {
			from = c.Date
		}
		if c.Date.After(to) {
			to = c.Date
		}
	}
	return from, to
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, selection.ErrCellReserved):
		return "reserved"
	case errors.Is(err, selection.ErrCellRestricted):
		return "restricted"
	case errors.Is(err, selection.ErrAlreadySelected):
		return "duplicate"
	case errors.Is(err, slot.ErrOutOfWindow):
		return "out_of_window"
	default:
		return err.Error()
	}
}

type planRequest struct {
	Cells        []cellDTO         `json:"cells"`
	Form         formDTO           `json:"form"`
	Recurrence   *recurrenceDTO    `json:"recurrence,omitempty"`
	UnlockTokens map[string]string `json:"unlock_tokens,omitempty"`
}

type planResponse struct {
	Plan planDTO `json:"plan"`
}

type selectionRequest struct {
	Cells        []cellDTO         `json:"cells"`
	UnlockTokens map[string]string `json:"unlock_tokens,omitempty"`
}

type cellRejectionDTO struct {
	Cell   cellDTO `json:"cell"`
	Reason string  `json:"reason"`
}

type selectionResponse struct {
	State     string             `json:"state"`
	Accepted  []cellDTO          `json:"accepted"`
	Rejected  []cellRejectionDTO `json:"rejected"`
	Intervals []intervalDTO      `json:"intervals"`
}

type availabilityResponse struct {
	ResourceID booking.ResourceID `json:"resource_id"`
	Date       slot.Date          `json:"date"`
	Open       slot.TimeOfDay     `json:"open"`
	Close      slot.TimeOfDay     `json:"close"`
	Reserved   []slot.TimeOfDay   `json:"reserved"`
	Free       []slot.TimeOfDay   `json:"free"`
}
