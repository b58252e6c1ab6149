package booking

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/example/burger-helsinki/internal/calendar"
	"github.com/example/burger-helsinki/internal/reservation"
	"github.com/go-resty/resty/v2"
)

// HTTPBackend forwards bookings to an external reservation API:
//
//	POST {base}/reservations  -> 201 {"confirmationId": "..."}
//	4xx                       -> {"message": "..."} shown to the guest
type HTTPBackend struct {
	client   *resty.Client
	location *time.Location
}

func NewHTTPBackend(baseURL, apiKey string, timeout time.Duration, loc *time.Location) *HTTPBackend {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "burger-helsinki/1.0")
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &HTTPBackend{client: c, location: loc}
}

type submitPayload struct {
	DraftID   string `json:"draftId"`
	Guests    int    `json:"numberOfGuests"`
	Date      string `json:"reservationDate"`
	Time      string `json:"reservationTime"`
	BookedFor string `json:"bookedFor"`
	Name      string `json:"customerName"`
	Phone     string `json:"customerPhone"`
	Email     string `json:"customerEmail"`
	Notes     string `json:"comments,omitempty"`
}

type submitResponse struct {
	ConfirmationID string `json:"confirmationId"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (b *HTTPBackend) Submit(ctx context.Context, req reservation.Request) (Confirmation, error) {
	at, err := req.At(b.location)
	if err != nil {
		return Confirmation{}, &Rejection{Reason: "the reservation time is not valid"}
	}
	var ok submitResponse
	var fail errorResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", req.DraftID).
		SetBody(submitPayload{
			DraftID:   req.DraftID,
			Guests:    req.Guests,
			Date:      req.Date.Format(calendar.DateLayout),
			Time:      req.Time,
			BookedFor: at.Format(time.RFC3339),
			Name:      req.Contact.Name,
			Phone:     req.Contact.Phone,
			Email:     req.Contact.Email,
			Notes:     req.Contact.Notes,
		}).
		SetResult(&ok).
		SetError(&fail).
		Post("/reservations")
	if err != nil {
		if ctx.Err() != nil {
			return Confirmation{}, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
		}
		return Confirmation{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	switch status := resp.StatusCode(); {
	case status >= 500:
		return Confirmation{}, fmt.Errorf("%w: status %d", ErrUnavailable, status)
	case status >= 400:
		reason := strings.TrimSpace(fail.Message)
		if reason == "" {
			reason = http.StatusText(status)
		}
		return Confirmation{}, &Rejection{Reason: reason}
	}
	if ok.ConfirmationID == "" {
		return Confirmation{}, fmt.Errorf("%w: response without confirmationId", ErrUnavailable)
	}
	return Confirmation{ID: ok.ConfirmationID, BookedFor: at}, nil
}
