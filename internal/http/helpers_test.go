package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/room-reservation/internal/application"
	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/persistence"
	"github.com/example/room-reservation/internal/persistence/memory"
	"github.com/example/room-reservation/internal/slot"
)

const (
	roomA      = booking.ResourceID("room-a")
	roomB      = booking.ResourceID("room-b")
	vanOne     = booking.ResourceID("van-1")
	vaultToken = "open-sesame"
)

var (
	monday   = slot.MustDate(2026, time.March, 2)
	fixedNow = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	cheapKDF = application.Argon2idParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}
)

type testServer struct {
	handler http.Handler
	store   *memory.Storage
	vault   booking.ResourceID
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// newTestServer wires the real services over an in-memory store seeded with
// two rooms, a van and a restricted vault room.
func newTestServer(t *testing.T, middleware ...func(http.Handler) http.Handler) *testServer {
	t.Helper()

	store := memory.New()
	for _, r := range []persistence.Resource{
		{ID: string(roomA), Name: "Room A", Category: "room", Capacity: 8},
		{ID: string(roomB), Name: "Room B", Category: "room", Capacity: 4},
		{ID: string(vanOne), Name: "Van 1", Category: "vehicle", Capacity: 7},
	} {
		require.NoError(t, store.CreateResource(context.Background(), r))
	}

	logger := discardLogger()
	now := func() time.Time { return fixedNow }
	resources := application.NewResourceServiceWithLogger(store, application.ResourceServiceOptions{Argon2: cheapKDF}, sequentialIDs("res"), now, logger)
	vault, err := resources.CreateResource(context.Background(), application.ResourceInput{
		Name:        "Vault",
		Category:    "room",
		Capacity:    2,
		Restricted:  true,
		UnlockToken: vaultToken,
	})
	require.NoError(t, err)

	bookings := application.NewBookingServiceWithLogger(store, slot.DefaultWindow(), nil, nil, logger)
	reservations := application.NewReservationServiceWithLogger(store, nil, slot.DefaultWindow(), sequentialIDs("rsv"), now, logger)

	handler := NewRouter(RouterConfig{
		Resources:    NewResourceHandler(resources, logger),
		Plans:        NewPlanHandler(bookings, resources, reservations, logger),
		Reservations: NewReservationHandler(reservations, resources, logger),
		Health:       store,
		Middleware:   middleware,
	})
	return &testServer{handler: handler, store: store, vault: vault.ID}
}

func (s *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) seed(t *testing.T, id string, resource booking.ResourceID, date slot.Date, start, end string) {
	t.Helper()

	require.NoError(t, s.store.CreateReservation(context.Background(), persistence.Reservation{
		ID:             id,
		ResourceID:     string(resource),
		Date:           date.Time(),
		StartMinute:    int(slot.MustTimeOfDay(start).Duration() / time.Minute),
		EndMinute:      int(slot.MustTimeOfDay(end).Duration() / time.Minute),
		RequesterName:  "Existing Booker",
		RequesterEmail: "existing@example.com",
	}))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func cellsAt(resource booking.ResourceID, date slot.Date, times ...string) []cellDTO {
	out := make([]cellDTO, 0, len(times))
	for _, t := range times {
		out = append(out, cellDTO{ResourceID: resource, Date: date, Time: slot.MustTimeOfDay(t)})
	}
	return out
}

func validFormDTO() formDTO {
	return formDTO{
		Requester: requesterDTO{Name: "Ada Lovelace", Email: "ada@example.com", Department: "R&D"},
		Room:      &booking.RoomDetails{Seating: "boardroom", Attendees: 6},
	}
}
