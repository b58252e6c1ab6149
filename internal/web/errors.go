package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/example/burger-helsinki/internal/booking"
	"github.com/example/burger-helsinki/internal/calendar"
	"github.com/example/burger-helsinki/internal/drafts"
	"github.com/example/burger-helsinki/internal/reservation"
)

type errorInfo struct {
	Status  int
	Message string
}

type errorMapping struct {
	err     error
	status  int
	message string
}

// errorMapper turns domain errors into an HTTP status and a message that is
// safe to show on the page. An empty mapping message means the error text
// itself is guest-facing.
type errorMapper struct {
	mappings       []errorMapping
	defaultStatus  int
	defaultMessage string
}

func newErrorMapper() *errorMapper {
	return &errorMapper{
		defaultStatus:  http.StatusInternalServerError,
		defaultMessage: "something went wrong, please try again",
	}
}

func (m *errorMapper) with(err error, status int, message string) *errorMapper {
	m.mappings = append(m.mappings, errorMapping{err: err, status: status, message: message})
	return m
}

func (m *errorMapper) Map(err error) errorInfo {
	if err == nil {
		return errorInfo{Status: http.StatusOK}
	}
	for _, mp := range m.mappings {
		if errors.Is(err, mp.err) {
			msg := mp.message
			if msg == "" {
				msg = err.Error()
			}
			return errorInfo{Status: mp.status, Message: msg}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errorInfo{Status: http.StatusGatewayTimeout, Message: "request timeout"}
	}
	if errors.Is(err, context.Canceled) {
		return errorInfo{Status: http.StatusServiceUnavailable, Message: "request cancelled"}
	}
	return errorInfo{Status: m.defaultStatus, Message: m.defaultMessage}
}

var (
	errBadRequest = errors.New("malformed request")
	errNoDraft    = errors.New("no reservation in progress")
)

// reservationErrors covers every failure of the reservation API.
var reservationErrors = newErrorMapper().
	with(errBadRequest, http.StatusBadRequest, "").
	with(errNoDraft, http.StatusGone, "your reservation session has expired, please reload the page").
	with(drafts.ErrNotFound, http.StatusGone, "your reservation session has expired, please reload the page").
	with(calendar.ErrInvalidMonth, http.StatusBadRequest, "").
	with(reservation.ErrInvalidGuests, http.StatusUnprocessableEntity, "").
	with(reservation.ErrDayNotSelectable, http.StatusUnprocessableEntity, "").
	with(reservation.ErrInvalidTime, http.StatusUnprocessableEntity, "").
	with(reservation.ErrInvalidContact, http.StatusUnprocessableEntity, "").
	with(reservation.ErrTimeGated, http.StatusConflict, "").
	with(reservation.ErrProceedGated, http.StatusConflict, "").
	with(reservation.ErrFormGated, http.StatusConflict, "").
	with(reservation.ErrNotFailed, http.StatusConflict, "").
	with(reservation.ErrSubmissionInFlight, http.StatusConflict, "").
	with(reservation.ErrDraftClosed, http.StatusConflict, "").
	with(booking.ErrRejected, http.StatusUnprocessableEntity, "").
	with(booking.ErrUnavailable, http.StatusServiceUnavailable, "the booking system is unavailable right now").
	with(context.DeadlineExceeded, http.StatusGatewayTimeout, "the booking system took too long to respond")
