package drafts

import (
	"sync"
	"testing"
	"time"

	"github.com/example/burger-helsinki/internal/reservation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestCreateGetUpdate(t *testing.T) {
	s := NewStore(time.Minute)
	d := s.Create()
	assert.Equal(t, reservation.StatusCollecting, d.Status)
	assert.NotEmpty(t, d.ID)

	got, err := s.Update(d.ID, func(d *reservation.Draft) error { return d.SelectGuests(3, 10) })
	require.NoError(t, err)
	assert.Equal(t, 3, got.Guests)

	got.Guests = 9
	stored, err := s.Get(d.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Guests, "callers get copies")

	_, err = s.Update(d.ID, func(d *reservation.Draft) error { return d.SelectGuests(99, 10) })
	assert.ErrorIs(t, err, reservation.ErrInvalidGuests)

	s.Delete(d.ID)
	_, err = s.Get(d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Update(d.ID, func(*reservation.Draft) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpire(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	s := NewStore(30 * time.Minute).WithClock(clock.now)

	idle := s.Create()
	busy := s.Create()
	_, err := s.Update(busy.ID, func(d *reservation.Draft) error {
		d.Submitting = true
		return nil
	})
	require.NoError(t, err)

	clock.advance(20 * time.Minute)
	fresh := s.Create()

	clock.advance(15 * time.Minute)
	assert.Equal(t, 1, s.Expire())

	_, err = s.Get(idle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(busy.ID)
	assert.NoError(t, err, "in-flight drafts survive the sweep")
	_, err = s.Get(fresh.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestConcurrentSubmitSingleFlight(t *testing.T) {
	s := NewStore(time.Minute)
	d := s.Create()
	october := time.Date(2026, time.October, 2, 0, 0, 0, 0, time.UTC)
	_, err := s.Update(d.ID, func(d *reservation.Draft) error {
		d.Guests, d.Date, d.Time, d.Status = 2, october, "18:30", reservation.StatusAwaitingContact
		return nil
	})
	require.NoError(t, err)

	contact := reservation.Contact{Name: "John Doe", Phone: "1234567890", Email: "john@example.com"}
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Update(d.ID, func(d *reservation.Draft) error { return d.BeginSubmit(contact) }); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, accepted)
}
