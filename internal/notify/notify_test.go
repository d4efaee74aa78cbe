package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/logging"
	"github.com/example/room-reservation/internal/slot"
)

func sampleReservation() booking.Existing {
	return booking.Existing{
		ID:       "res-1",
		SeriesID: "series-1",
		Interval: booking.Interval{
			Resource: "room-a",
			Date:     slot.MustDate(2026, time.February, 1),
			Start:    slot.MustTimeOfDay("09:00"),
			End:      slot.MustTimeOfDay("10:00"),
		},
		Requester: booking.Requester{Name: "Sato", Email: "sato@example.com"},
		Details:   booking.RoomDetails{Seating: "theatre"},
	}
}

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

func TestNewEvent(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.January, 10, 9, 0, 0, 0, time.FixedZone("JST", 9*60*60))
	event, err := NewEvent(EventCancelled, sampleReservation(), "moved", at)
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventCancelled, event.Type)
	assert.Equal(t, "2026-02-01", event.Reservation.Date)
	assert.Equal(t, "09:00", event.Reservation.Start)
	assert.Equal(t, booking.CategoryRoom, event.Reservation.Category)
	assert.JSONEq(t, `{"seating":"theatre"}`, string(event.Reservation.Details))
	assert.Equal(t, time.UTC, event.OccurredAt.Location())
}

func TestKafka(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	notifier := NewKafka(writer, "reservations")

	require.NoError(t, notifier.NotifyCreated(context.Background(), sampleReservation()))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "reservations", msg.Topic)
	assert.Equal(t, "res-1", string(msg.Key))

	var event Event
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, EventCreated, event.Type)
	assert.Equal(t, "room-a", event.Reservation.ResourceID)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, event.ID, headers["event_id"])
	assert.Equal(t, string(EventCreated), headers["event_type"])

	writer.err = errors.New("broker down")
	assert.ErrorContains(t, notifier.NotifyCreated(context.Background(), sampleReservation()), "broker down")
}

func TestRedis(t *testing.T) {
	t.Parallel()

	publisher := &fakePublisher{}
	notifier := NewRedis(publisher, "reservations")

	require.NoError(t, notifier.NotifyCancelled(context.Background(), sampleReservation(), "moved"))
	assert.Equal(t, "reservations", publisher.channel)

	var event Event
	require.NoError(t, json.Unmarshal(publisher.payload, &event))
	assert.Equal(t, EventCancelled, event.Type)
	assert.Equal(t, "moved", event.Reason)

	publisher.err = errors.New("connection refused")
	assert.Error(t, notifier.NotifyCreated(context.Background(), sampleReservation()))
}

func TestLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := logging.ContextWithLogger(context.Background(), logger)

	require.NoError(t, NewLog(nil).NotifyCreated(ctx, sampleReservation()))
	assert.Contains(t, buf.String(), `"event_type":"reservation.created"`)
	assert.Contains(t, buf.String(), `"reservation_id":"res-1"`)
}

func TestMulti(t *testing.T) {
	t.Parallel()

	ok := &fakeWriter{}
	failing := &fakePublisher{err: errors.New("redis down")}
	multi := Multi{NewRedis(failing, "c"), NewKafka(ok, "t")}

	err := multi.NotifyCreated(context.Background(), sampleReservation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	assert.Len(t, ok.messages, 1, "later notifiers still run after a failure")

	assert.NoError(t, Multi{}.NotifyCancelled(context.Background(), sampleReservation(), ""))
}

func TestNewKafkaWriter(t *testing.T) {
	t.Parallel()

	w := NewKafkaWriter("a:9092,b:9092")
	defer w.Close()
	assert.Equal(t, kafkaBatchTimeout, w.BatchTimeout)
	assert.Equal(t, kafkaMaxAttempts, w.MaxAttempts)
}

func TestSplitBrokers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitBrokers(" a:9092, ,b:9092 "))
	assert.Nil(t, SplitBrokers(""))
}
