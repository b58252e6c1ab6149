// Package booking submits completed reservation drafts to the restaurant's
// reservation backend and announces confirmed bookings.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/example/burger-helsinki/internal/calendar"
	"github.com/example/burger-helsinki/internal/events"
	"github.com/example/burger-helsinki/internal/reservation"
	"github.com/google/uuid"
)

var (
	// ErrRejected means the backend refused the booking (fully booked,
	// closed that day...). The wrapped message is safe to show guests.
	ErrRejected = errors.New("booking rejected")
	// ErrUnavailable covers transport failures and backend faults.
	ErrUnavailable = errors.New("booking backend unavailable")
)

// Rejection carries a guest-facing reason.
type Rejection struct{ Reason string }

func (r *Rejection) Error() string { return r.Reason }
func (r *Rejection) Unwrap() error { return ErrRejected }

type Confirmation struct {
	ID        string
	BookedFor time.Time
}

// Backend is the external collaborator that books a table.
type Backend interface {
	Submit(ctx context.Context, req reservation.Request) (Confirmation, error)
}

func NewConfirmationID() string {
	return "BH-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// DefaultPublishTimeout bounds the confirmation event when
// Service.PublishTimeout is unset.
const DefaultPublishTimeout = 2 * time.Second

type Service struct {
	Backend   Backend
	Publisher events.Publisher
	Timeout   time.Duration
	// PublishTimeout caps the confirmation event separately from Timeout,
	// which has usually been spent on the backend call by then.
	PublishTimeout time.Duration
	Location       *time.Location
	Logger         *slog.Logger
}

// Submit books req with a bounded wait. Publishing the confirmation event is
// best effort: a broker outage never fails a booking the backend accepted.
func (s *Service) Submit(ctx context.Context, req reservation.Request) (Confirmation, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	start := time.Now()
	conf, err := s.Backend.Submit(ctx, req)
	logger := s.logger().With(
		slog.String("draft", req.DraftID),
		slog.Int("guests", req.Guests),
		slog.String("date", req.Date.Format(calendar.DateLayout)),
		slog.String("time", req.Time),
		slog.Duration("took", time.Since(start)),
	)
	if err != nil {
		logger.Warn("reservation submission failed", slog.Any("error", err))
		return Confirmation{}, err
	}
	logger.Info("reservation booked", slog.String("confirmation", conf.ID))

	if s.Publisher != nil {
		ev := events.Event{
			Entity:     "reservation",
			Action:     "created",
			ResourceID: conf.ID,
			Metadata: map[string]string{
				"guests": strconv.Itoa(req.Guests),
				"date":   req.Date.Format(calendar.DateLayout),
				"time":   req.Time,
			},
			Data: map[string]any{
				"confirmationId": conf.ID,
				"numberOfGuests": req.Guests,
				"reservationDate": req.Date.Format(calendar.DateLayout),
				"reservationTime": req.Time,
				"customerName":    req.Contact.Name,
				"comments":        req.Contact.Notes,
			},
		}
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout())
		perr := s.Publisher.Publish(pctx, ev)
		cancel()
		if perr != nil {
			logger.Warn("reservation event not published", slog.Any("error", perr))
		}
	}
	return conf, nil
}

func (s *Service) publishTimeout() time.Duration {
	if s.PublishTimeout <= 0 {
		return DefaultPublishTimeout
	}
	return s.PublishTimeout
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// GuestError turns a submission error into the text shown on the page.
// Internal details stay in the logs.
func GuestError(err error) error {
	var rej *Rejection
	switch {
	case err == nil:
		return nil
	case errors.As(err, &rej):
		return rej
	case errors.Is(err, context.DeadlineExceeded):
		return errors.New("the booking system took too long to respond")
	default:
		return errors.New("the booking system is unavailable right now")
	}
}
