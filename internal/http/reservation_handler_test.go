package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/slot"
)

func planFor(t *testing.T, srv *testServer, req planRequest) planDTO {
	t.Helper()

	rec := srv.do(t, http.MethodPost, "/plans", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[planResponse](t, rec).Plan
}

func TestReservationHandler_Lifecycle(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	plan := planFor(t, srv, planRequest{
		Cells:      cellsAt(roomA, monday, "13:00", "13:30", "14:00"),
		Form:       validFormDTO(),
		Recurrence: &recurrenceDTO{Frequency: "weekly", Until: monday.AddDays(14)},
	})
	require.Len(t, plan.Valid, 3)

	rec := srv.do(t, http.MethodPost, "/reservations", commitRequest{Candidates: plan.Valid})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[commitResponse](t, rec).Created
	require.Len(t, created, 3)
	seriesID := created[0].SeriesID
	require.NotEmpty(t, seriesID)
	for _, r := range created {
		assert.Equal(t, seriesID, r.SeriesID)
		assert.Equal(t, slot.MustTimeOfDay("14:30"), r.End)
		assert.Equal(t, "ada@example.com", r.Requester.Email)
	}

	t.Run("committed cells now conflict", func(t *testing.T) {
		again := planFor(t, srv, planRequest{Cells: cellsAt(roomA, monday.AddDays(7), "14:00"), Form: validFormDTO()})
		assert.Empty(t, again.Valid)
		require.Len(t, again.Conflicting, 1)
		assert.Equal(t, created[1].ID, again.Conflicting[0].With[0].ID)
	})

	t.Run("get returns one reservation", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/reservations/"+created[0].ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, monday, decode[reservationResponse](t, rec).Reservation.Date)
	})

	t.Run("cancel hides the reservation from default listings", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/reservations/"+created[0].ID+"/cancel", cancelRequest{Reason: " plans changed "})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		cancelled := decode[reservationResponse](t, rec).Reservation
		assert.True(t, cancelled.Cancelled)
		assert.Equal(t, "plans changed", cancelled.CancelReason)

		rec = srv.do(t, http.MethodPost, "/reservations/"+created[0].ID+"/cancel", nil)
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "ALREADY_CANCELLED", decode[errorResponse](t, rec).ErrorCode)

		rec = srv.do(t, http.MethodGet, "/reservations?resource_id=room-a", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[listReservationsResponse](t, rec).Reservations, 2)

		rec = srv.do(t, http.MethodGet, "/reservations?resource_id=room-a&include_cancelled=true", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[listReservationsResponse](t, rec).Reservations, 3)
	})

	t.Run("list filters by date range", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/reservations?from="+monday.AddDays(7).String()+"&to="+monday.AddDays(7).String(), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		listed := decode[listReservationsResponse](t, rec).Reservations
		require.Len(t, listed, 1)
		assert.Equal(t, created[1].ID, listed[0].ID)
	})

	t.Run("delete removes the record", func(t *testing.T) {
		rec := srv.do(t, http.MethodDelete, "/reservations/"+created[2].ID, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = srv.do(t, http.MethodGet, "/reservations/"+created[2].ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = srv.do(t, http.MethodDelete, "/reservations/"+created[2].ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestReservationHandler_PartialCommit(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	requester := validFormDTO().Requester
	good := candidateDTO{
		intervalDTO: intervalDTO{ResourceID: roomB, Date: monday, Start: slot.MustTimeOfDay("10:00"), End: slot.MustTimeOfDay("11:00")},
		Requester:   requester,
		Status:      booking.StatusValid,
	}
	late := good
	late.Start = slot.MustTimeOfDay("21:30")
	late.End = slot.MustTimeOfDay("22:30")

	rec := srv.do(t, http.MethodPost, "/reservations", commitRequest{Candidates: []candidateDTO{good, late}})
	require.Equal(t, http.StatusMultiStatus, rec.Code, rec.Body.String())

	resp := decode[commitResponse](t, rec)
	require.Len(t, resp.Created, 1)
	assert.Empty(t, resp.Created[0].SeriesID)
	require.Len(t, resp.Failed, 1)
	assert.Equal(t, "INVALID_TIME_RANGE", resp.Failed[0].ErrorCode)
	assert.Equal(t, slot.MustTimeOfDay("21:30"), resp.Failed[0].Candidate.Start)
}

func TestReservationHandler_CommitRechecksConflicts(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	plan := planFor(t, srv, planRequest{
		Cells:      cellsAt(roomA, monday, "09:00", "09:30"),
		Form:       validFormDTO(),
		Recurrence: &recurrenceDTO{Frequency: "weekly", Until: monday.AddDays(7)},
	})
	require.Len(t, plan.Valid, 2)

	srv.seed(t, "late-booker", roomA, monday.AddDays(7), "09:30", "10:00")

	rec := srv.do(t, http.MethodPost, "/reservations", commitRequest{Candidates: plan.Valid})
	require.Equal(t, http.StatusMultiStatus, rec.Code, rec.Body.String())

	resp := decode[commitResponse](t, rec)
	require.Len(t, resp.Created, 1)
	assert.Equal(t, monday, resp.Created[0].Date)
	require.Len(t, resp.Failed, 1)
	assert.Equal(t, "CONFLICT_DETECTED", resp.Failed[0].ErrorCode)
	assert.Equal(t, monday.AddDays(7), resp.Failed[0].Candidate.Date)

	t.Run("replaying the commit writes nothing", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/reservations", commitRequest{Candidates: plan.Valid})
		require.Equal(t, http.StatusMultiStatus, rec.Code, rec.Body.String())
		resp := decode[commitResponse](t, rec)
		assert.Empty(t, resp.Created)
		assert.Len(t, resp.Failed, 2)

		rec = srv.do(t, http.MethodGet, "/reservations?resource_id=room-a", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[listReservationsResponse](t, rec).Reservations, 2)
	})
}

func TestReservationHandler_CommitErrors(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	requester := validFormDTO().Requester
	vaultCandidate := candidateDTO{
		intervalDTO: intervalDTO{ResourceID: srv.vault, Date: monday, Start: slot.MustTimeOfDay("10:00"), End: slot.MustTimeOfDay("11:00")},
		Requester:   requester,
	}

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{name: "empty batch", body: commitRequest{}, wantStatus: http.StatusUnprocessableEntity, wantCode: "VALIDATION_FAILED"},
		{name: "restricted without token", body: commitRequest{Candidates: []candidateDTO{vaultCandidate}}, wantStatus: http.StatusForbidden, wantCode: "RESOURCE_RESTRICTED"},
		{name: "unknown details category", body: map[string]any{"candidates": []map[string]any{{
			"resource_id": "room-a", "date": "2026-03-02", "start": "10:00", "end": "11:00",
			"requester": map[string]string{"name": "Ada", "email": "ada@example.com"},
			"category":  "boat", "details": map[string]any{},
		}}}, wantStatus: http.StatusBadRequest},
		{name: "malformed json", body: "not an object", wantStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, "/reservations", tc.body)
			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			if tc.wantCode != "" {
				assert.Equal(t, tc.wantCode, decode[errorResponse](t, rec).ErrorCode)
			}
		})
	}

	t.Run("restricted with token commits", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/reservations", commitRequest{
			Candidates:   []candidateDTO{vaultCandidate},
			UnlockTokens: map[string]string{string(srv.vault): vaultToken},
		})
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})
}

func TestReservationHandler_ListValidation(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	for _, target := range []string{
		"/reservations?from=yesterday",
		"/reservations?to=2026-13-01",
		"/reservations?include_cancelled=maybe",
	} {
		rec := srv.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}

	rec := srv.do(t, http.MethodGet, "/reservations?from=2026-03-10&to=2026-03-01", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
