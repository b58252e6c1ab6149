package booking

import (
	"context"
	"sync"
	"time"

	"github.com/example/burger-helsinki/internal/reservation"
)

type Record struct {
	Confirmation Confirmation
	Request      reservation.Request
	CreatedAt    time.Time
}

// MemoryBackend keeps bookings in process. Set Fail to simulate a backend
// refusing every submission.
type MemoryBackend struct {
	Location *time.Location
	Fail     error
	// Delay holds each submission, bounded by the context.
	Delay time.Duration

	mu      sync.Mutex
	records []Record
}

func (m *MemoryBackend) Submit(ctx context.Context, req reservation.Request) (Confirmation, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return Confirmation{}, ctx.Err()
		}
	}
	if m.Fail != nil {
		return Confirmation{}, m.Fail
	}
	loc := m.Location
	if loc == nil {
		loc = time.UTC
	}
	at, err := req.At(loc)
	if err != nil {
		return Confirmation{}, &Rejection{Reason: "the reservation time is not valid"}
	}
	conf := Confirmation{ID: NewConfirmationID(), BookedFor: at}
	m.mu.Lock()
	m.records = append(m.records, Record{Confirmation: conf, Request: req, CreatedAt: time.Now()})
	m.mu.Unlock()
	return conf, nil
}

func (m *MemoryBackend) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}
