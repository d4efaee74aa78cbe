package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/example/room-reservation/internal/application"
	"github.com/example/room-reservation/internal/booking"
)

type reservationService interface {
	Commit(ctx context.Context, candidates []booking.Candidate) (application.CommitResult, error)
	Get(ctx context.Context, id string) (booking.Existing, error)
	List(ctx context.Context, query application.ReservationQuery) ([]booking.Existing, error)
	Cancel(ctx context.Context, id, reason string) (booking.Existing, error)
	Delete(ctx context.Context, id string) error
}

var errMissingReservationID = errors.New("reservation id is required")

// ReservationHandler serves committed reservations.
type ReservationHandler struct {
	service   reservationService
	resources resourceService
	responder responder
	logger    *slog.Logger
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(service reservationService, resources resourceService, logger *slog.Logger) *ReservationHandler {
	base := defaultLogger(logger)
	return &ReservationHandler{service: service, resources: resources, responder: newResponder(base), logger: base}
}

func (h *ReservationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "ReservationHandler", operation, attrs...)
}

// Commit handles POST /reservations. A partially written batch answers 207
// with both the created reservations and the failures.
func (h *ReservationHandler) Commit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req commitRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Commit", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode commit request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Commit", "candidate_count", len(req.Candidates))

	candidates := make([]booking.Candidate, 0, len(req.Candidates))
	resources := make([]booking.ResourceID, 0, len(req.Candidates))
	for i, dto := range req.Candidates {
		candidate, err := dto.toCandidate()
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, fmt.Errorf("candidate %d: %w", i, err))
			return
		}
		candidates = append(candidates, candidate)
		resources = append(resources, candidate.Resource)
	}

	policy, err := resolvePolicy(r.Context(), h.resources, resources, req.UnlockTokens)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	for _, id := range resources {
		if !policy.Allowed(id) {
			logger.WarnContext(r.Context(), "restricted resource in commit", "resource_id", id)
			h.responder.handleServiceError(r.Context(), w, fmt.Errorf("%w: %s", application.ErrResourceRestricted, id))
			return
		}
	}

	result, err := h.service.Commit(r.Context(), candidates)
	if err != nil && !errors.Is(err, application.ErrPartialCommit) {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	created, dtoErr := toReservationDTOs(result.Created)
	if dtoErr != nil {
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, dtoErr)
		return
	}
	if err == nil {
		h.responder.writeJSON(r.Context(), w, http.StatusCreated, commitResponse{Created: created})
		return
	}

	failed := make([]commitFailureDTO, 0, len(result.Failed))
	for _, f := range result.Failed {
		candidate, dtoErr := toCandidateDTO(f.Candidate)
		if dtoErr != nil {
			h.responder.writeError(r.Context(), w, http.StatusInternalServerError, dtoErr)
			return
		}
		failed = append(failed, commitFailureDTO{Candidate: candidate, ErrorCode: errorCode(f.Err), Error: f.Err.Error()})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusMultiStatus, commitResponse{Created: created, Failed: failed})
}

// List handles GET /reservations?resource_id=&from=&to=&include_cancelled=.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	values := r.URL.Query()
	query := application.ReservationQuery{}
	for _, id := range values["resource_id"] {
		if id = strings.TrimSpace(id); id != "" {
			query.ResourceIDs = append(query.ResourceIDs, booking.ResourceID(id))
		}
	}

	var err error
	if query.From, err = parseDateParam(strings.TrimSpace(values.Get("from"))); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	if query.To, err = parseDateParam(strings.TrimSpace(values.Get("to"))); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	if raw := strings.TrimSpace(values.Get("include_cancelled")); raw != "" {
		if query.IncludeCancelled, err = strconv.ParseBool(raw); err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, fmt.Errorf("invalid include_cancelled %q", raw))
			return
		}
	}

	reservations, err := h.service.List(r.Context(), query)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "reservation list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos, err := toReservationDTOs(reservations)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listReservationsResponse{Reservations: dtos})
}

// Get handles GET /reservations/:id.
func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := strings.TrimSpace(ps.ByName("id"))
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingReservationID)
		return
	}

	reservation, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.writeReservation(r.Context(), w, http.StatusOK, reservation)
}

// Cancel handles POST /reservations/:id/cancel.
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := strings.TrimSpace(ps.ByName("id"))
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingReservationID)
		return
	}

	var req cancelRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
			return
		}
	}

	reservation, err := h.service.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		h.log(r.Context(), "Cancel", "reservation_id", id).WarnContext(r.Context(), "cancel failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.writeReservation(r.Context(), w, http.StatusOK, reservation)
}

// Delete handles DELETE /reservations/:id.
func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := strings.TrimSpace(ps.ByName("id"))
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingReservationID)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReservationHandler) writeReservation(ctx context.Context, w http.ResponseWriter, status int, reservation booking.Existing) {
	dto, err := toReservationDTO(reservation)
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}
	h.responder.writeJSON(ctx, w, status, reservationResponse{Reservation: dto})
}

// errorCode labels per-candidate commit failures with the same vocabulary
// as the service error kinds.
func errorCode(err error) string {
	return strings.ToUpper(application.ErrorKind(err))
}

type commitRequest struct {
	Candidates   []candidateDTO    `json:"candidates"`
	UnlockTokens map[string]string `json:"unlock_tokens,omitempty"`
}

type commitFailureDTO struct {
	Candidate candidateDTO `json:"candidate"`
	ErrorCode string       `json:"error_code"`
	Error     string       `json:"error"`
}

type commitResponse struct {
	Created []reservationDTO   `json:"created"`
	Failed  []commitFailureDTO `json:"failed,omitempty"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type reservationResponse struct {
	Reservation reservationDTO `json:"reservation"`
}

type listReservationsResponse struct {
	Reservations []reservationDTO `json:"reservations"`
}
