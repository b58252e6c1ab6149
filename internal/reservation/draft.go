// Package reservation models the table-booking flow as a finite state
// machine. A Draft moves through
//
//	collecting -> awaiting_time -> awaiting_contact -> submitted
//	                                     |   ^
//	                                     v   |
//	                                     failed
//
// Each stage is only reachable once the previous one is complete. Clearing
// the time after proceed returns the draft to awaiting_time. The
// visibility of every page stage is derived from the draft through View.
package reservation

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/burger-helsinki/internal/calendar"
)

type Status string

const (
	StatusCollecting      Status = "collecting"
	StatusAwaitingTime    Status = "awaiting_time"
	StatusAwaitingContact Status = "awaiting_contact"
	StatusSubmitted       Status = "submitted"
	StatusFailed          Status = "failed"
)

func (s Status) rank() int {
	switch s {
	case StatusCollecting:
		return 0
	case StatusAwaitingTime:
		return 1
	case StatusAwaitingContact, StatusFailed:
		return 2
	case StatusSubmitted:
		return 3
	}
	return -1
}

var (
	ErrInvalidGuests      = errors.New("guest count out of range")
	ErrDayNotSelectable   = errors.New("day is outside the displayed month")
	ErrTimeGated          = errors.New("choose a guest count and a date first")
	ErrInvalidTime        = errors.New("time must be HH:MM (24-hour)")
	ErrProceedGated       = errors.New("enter a valid time first")
	ErrFormGated          = errors.New("reservation details are not complete")
	ErrInvalidContact     = errors.New("invalid contact details")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrDraftClosed        = errors.New("reservation already submitted")
	ErrNotFailed          = errors.New("nothing to retry")
)

// Outcome messages shown in #form-message.
const (
	MessageSuccess = "Thank you! Your table is booked. Confirmation: %s"
	MessageFailure = "Sorry, we could not complete your reservation: %s. Please try again."
)

type MessageKind string

const (
	MessageNone    MessageKind = ""
	MessageOK      MessageKind = "success"
	MessageProblem MessageKind = "error"
)

type Draft struct {
	ID      string
	Guests  int
	Date    time.Time
	Time    string
	Contact *Contact
	Status  Status

	Submitting     bool
	Message        string
	MessageKind    MessageKind
	ConfirmationID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewDraft(id string, now time.Time) *Draft {
	return &Draft{ID: id, Status: StatusCollecting, CreatedAt: now, UpdatedAt: now}
}

func (d *Draft) HasDate() bool { return !d.Date.IsZero() }

// open reports whether earlier stages may still be edited.
func (d *Draft) open() error {
	if d.Status == StatusSubmitted {
		return ErrDraftClosed
	}
	if d.Submitting {
		return ErrSubmissionInFlight
	}
	return nil
}

// advance moves collecting -> awaiting_time once guests and date are both
// known. Later states are never demoted here; only SetTime demotes.
func (d *Draft) advance() {
	if d.Status == StatusCollecting && d.Guests > 0 && d.HasDate() {
		d.Status = StatusAwaitingTime
	}
}

func (d *Draft) SelectGuests(n, max int) error {
	if err := d.open(); err != nil {
		return err
	}
	if n < 1 || n > max {
		return fmt.Errorf("%w: %d (allowed 1-%d)", ErrInvalidGuests, n, max)
	}
	d.Guests = n
	d.advance()
	return nil
}

// SelectDate records a calendar cell. Placeholder cells from adjacent months
// are rejected and leave the draft untouched.
func (d *Draft) SelectDate(day calendar.Day) error {
	if err := d.open(); err != nil {
		return err
	}
	if !day.IsSelectable() {
		return fmt.Errorf("%w: %s", ErrDayNotSelectable, day.Key())
	}
	d.Date = day.Date
	d.advance()
	return nil
}

// SetTime stores a HH:MM value. An invalid value clears the stored time so
// the proceed control hides again, and a draft already past proceed drops
// back to awaiting_time until a valid time is proceeded with.
func (d *Draft) SetTime(raw string) error {
	if err := d.open(); err != nil {
		return err
	}
	if d.Status.rank() < StatusAwaitingTime.rank() {
		return ErrTimeGated
	}
	t, ok := NormalizeTime(raw)
	if !ok {
		d.Time = ""
		if d.Status == StatusAwaitingContact || d.Status == StatusFailed {
			d.Status = StatusAwaitingTime
			d.Contact = nil
			d.Message, d.MessageKind = "", MessageNone
		}
		return fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	d.Time = t
	return nil
}

func (d *Draft) Proceed() error {
	if err := d.open(); err != nil {
		return err
	}
	if d.Status.rank() < StatusAwaitingTime.rank() || d.Time == "" {
		return ErrProceedGated
	}
	if d.Status == StatusAwaitingTime {
		d.Status = StatusAwaitingContact
	}
	return nil
}

// BeginSubmit validates contact details and marks the draft as having a
// submission in flight. A failed draft is retried implicitly.
func (d *Draft) BeginSubmit(c Contact) error {
	if d.Status == StatusSubmitted {
		return ErrDraftClosed
	}
	if d.Submitting {
		return ErrSubmissionInFlight
	}
	if d.Status == StatusFailed {
		if err := d.Retry(); err != nil {
			return err
		}
	}
	if d.Status != StatusAwaitingContact || d.Guests < 1 || !d.HasDate() || d.Time == "" {
		return ErrFormGated
	}
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		d.setMessage(MessageProblem, err.Error())
		return err
	}
	d.Contact = &c
	d.Submitting = true
	d.Message, d.MessageKind = "", MessageNone
	return nil
}

// CompleteSubmit records the backend outcome of a BeginSubmit.
func (d *Draft) CompleteSubmit(confirmationID string, err error) {
	d.Submitting = false
	if err != nil {
		d.Status = StatusFailed
		d.setMessage(MessageProblem, fmt.Sprintf(MessageFailure, err.Error()))
		return
	}
	d.Status = StatusSubmitted
	d.ConfirmationID = confirmationID
	d.setMessage(MessageOK, fmt.Sprintf(MessageSuccess, confirmationID))
}

func (d *Draft) Retry() error {
	if d.Status != StatusFailed {
		return ErrNotFailed
	}
	d.Status = StatusAwaitingContact
	return nil
}

func (d *Draft) setMessage(kind MessageKind, msg string) {
	d.MessageKind = kind
	d.Message = msg
}

// Request is the immutable snapshot handed to a booking backend.
func (d *Draft) Request() Request {
	r := Request{DraftID: d.ID, Guests: d.Guests, Date: d.Date, Time: d.Time}
	if d.Contact != nil {
		r.Contact = *d.Contact
	}
	return r
}

type Request struct {
	DraftID string
	Guests  int
	Date    time.Time
	Time    string
	Contact Contact
}

// At combines date and time in loc.
func (r Request) At(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(calendar.DateLayout+" 15:04", r.Date.Format(calendar.DateLayout)+" "+r.Time, loc)
}
