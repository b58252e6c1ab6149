package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/burger-helsinki/internal/events"
	"github.com/example/burger-helsinki/internal/logging"
	"github.com/example/burger-helsinki/internal/reservation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleRequest = reservation.Request{
	DraftID: "d-1",
	Guests:  2,
	Date:    time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC),
	Time:    "18:30",
	Contact: reservation.Contact{Name: "John Doe", Phone: "1234567890", Email: "john@example.com", Notes: "Window seat, please."},
}

type capturePublisher struct {
	events []events.Event
	err    error
}

func (c *capturePublisher) Publish(_ context.Context, ev events.Event) error {
	c.events = append(c.events, ev)
	return c.err
}

func (c *capturePublisher) Close() error { return nil }

func TestServiceSubmitPublishes(t *testing.T) {
	backend := &MemoryBackend{}
	pub := &capturePublisher{}
	svc := &Service{Backend: backend, Publisher: pub, Timeout: time.Second, Logger: logging.Discard()}

	conf, err := svc.Submit(context.Background(), sampleRequest)
	require.NoError(t, err)
	assert.Regexp(t, `^BH-[0-9A-F]{8}$`, conf.ID)
	assert.Equal(t, "2026-10-02T18:30:00Z", conf.BookedFor.Format(time.RFC3339))
	require.Len(t, backend.Records(), 1)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, "reservation", ev.Entity)
	assert.Equal(t, "created", ev.Action)
	assert.Equal(t, conf.ID, ev.ResourceID)
	assert.Equal(t, "2", ev.Metadata["guests"])
}

func TestServicePublishFailureDoesNotFailBooking(t *testing.T) {
	svc := &Service{
		Backend:   &MemoryBackend{},
		Publisher: &capturePublisher{err: errors.New("broker down")},
		Logger:    logging.Discard(),
	}
	_, err := svc.Submit(context.Background(), sampleRequest)
	assert.NoError(t, err)
}

// stalledPublisher blocks like a writer retrying against a dead broker.
type stalledPublisher struct{}

func (stalledPublisher) Publish(ctx context.Context, _ events.Event) error {
	<-ctx.Done()
	return ctx.Err()
}

func (stalledPublisher) Close() error { return nil }

func TestServiceStalledPublisherIsBounded(t *testing.T) {
	svc := &Service{
		Backend:        &MemoryBackend{},
		Publisher:      stalledPublisher{},
		Timeout:        100 * time.Millisecond,
		PublishTimeout: 50 * time.Millisecond,
		Logger:         logging.Discard(),
	}
	start := time.Now()
	conf, err := svc.Submit(context.Background(), sampleRequest)
	require.NoError(t, err)
	assert.NotEmpty(t, conf.ID)
	assert.Less(t, time.Since(start), time.Second)
}

func TestServiceBackendFailure(t *testing.T) {
	pub := &capturePublisher{}
	svc := &Service{
		Backend:   &MemoryBackend{Fail: &Rejection{Reason: "we are fully booked that evening"}},
		Publisher: pub,
		Logger:    logging.Discard(),
	}
	_, err := svc.Submit(context.Background(), sampleRequest)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Empty(t, pub.events)
	assert.EqualError(t, GuestError(err), "we are fully booked that evening")
}

func TestServiceTimeout(t *testing.T) {
	svc := &Service{
		Backend: &MemoryBackend{Delay: time.Second},
		Timeout: 10 * time.Millisecond,
		Logger:  logging.Discard(),
	}
	_, err := svc.Submit(context.Background(), sampleRequest)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.EqualError(t, GuestError(err), "the booking system took too long to respond")
}

func TestGuestErrorHidesInternals(t *testing.T) {
	assert.NoError(t, GuestError(nil))
	err := GuestError(errors.New("pq: connection refused to 10.0.0.3"))
	assert.EqualError(t, err, "the booking system is unavailable right now")
}
