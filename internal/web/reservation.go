package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/burger-helsinki/internal/booking"
	"github.com/example/burger-helsinki/internal/calendar"
	"github.com/example/burger-helsinki/internal/reservation"
)

// The reservation page embeds a signed draft token and sends it back in
// draftHeader, so every page load drives its own draft.
const (
	draftHeader    = "X-Draft"
	draftTokenName = "bh_draft"
)

func (s *Server) draftToken(id string) (string, error) {
	return s.DraftTokens.Encode(draftTokenName, id)
}

// draftID reads the page-scoped draft id. A missing or forged token is
// reported like an expired draft.
func (s *Server) draftID(r *http.Request) (string, bool) {
	token := r.Header.Get(draftHeader)
	if token == "" {
		return "", false
	}
	var id string
	if err := s.DraftTokens.Decode(draftTokenName, token, &id); err != nil {
		return "", false
	}
	return id, true
}

type apiResponse struct {
	View  *reservation.View `json:"view,omitempty"`
	Error string            `json:"error,omitempty"`
}

func (s *Server) respondView(w http.ResponseWriter, status int, v reservation.View) {
	writeJSON(w, status, apiResponse{View: &v})
}

// fail maps err and includes the current draft view when there is one, so
// the page can re-render its stages after a rejected step.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, d *reservation.Draft) {
	info := reservationErrors.Map(err)
	if info.Status >= 500 {
		s.logger().Error("reservation api", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	resp := apiResponse{Error: info.Message}
	if d != nil && d.ID != "" {
		v := d.View()
		resp.View = &v
	}
	writeJSON(w, info.Status, resp)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 16<<10))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// step decodes the body (an empty body is allowed) into req and applies fn to the caller's draft.
func step[T any](s *Server, w http.ResponseWriter, r *http.Request, fn func(*reservation.Draft, T) error) {
	var req T
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	id, ok := s.draftID(r)
	if !ok {
		s.fail(w, r, errNoDraft, nil)
		return
	}
	d, err := s.Drafts.Update(id, func(d *reservation.Draft) error { return fn(d, req) })
	if err != nil {
		s.fail(w, r, err, &d)
		return
	}
	s.respondView(w, http.StatusOK, d.View())
}

func (s *Server) handleDraftView(w http.ResponseWriter, r *http.Request) {
	id, ok := s.draftID(r)
	if !ok {
		s.fail(w, r, errNoDraft, nil)
		return
	}
	d, err := s.Drafts.Get(id)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	s.respondView(w, http.StatusOK, d.View())
}

type guestsRequest struct {
	Guests int `json:"guests"`
}

func (s *Server) handleGuests(w http.ResponseWriter, r *http.Request) {
	limit := s.maxGuests()
	step(s, w, r, func(d *reservation.Draft, req guestsRequest) error {
		return d.SelectGuests(req.Guests, limit)
	})
}

type dateRequest struct {
	Date string `json:"date"`
	// Month is the grid the guest clicked in; it decides whether the date is
	// a placeholder. Defaults to the date's own month.
	Month string `json:"month,omitempty"`
}

func (s *Server) handleDate(w http.ResponseWriter, r *http.Request) {
	today := s.now()
	step(s, w, r, func(d *reservation.Draft, req dateRequest) error {
		day, err := s.resolveDay(req, today)
		if err != nil {
			return err
		}
		return d.SelectDate(day)
	})
}

func (s *Server) resolveDay(req dateRequest, today time.Time) (calendar.Day, error) {
	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		return calendar.Day{}, fmt.Errorf("%w: date %q", errBadRequest, req.Date)
	}
	year, month := date.Year(), date.Month()
	if req.Month != "" {
		if year, month, err = calendar.ParseMonth(req.Month); err != nil {
			return calendar.Day{}, err
		}
	}
	grid := calendar.Build(year, month, today, s.WeekStart)
	day, ok := grid.Lookup(date)
	if !ok {
		return calendar.Day{}, fmt.Errorf("%w: %s is not shown in %s", reservation.ErrDayNotSelectable, req.Date, grid.Key())
	}
	return day, nil
}

type timeRequest struct {
	Time string `json:"time"`
}

func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) {
	step(s, w, r, func(d *reservation.Draft, req timeRequest) error {
		return d.SetTime(req.Time)
	})
}

func (s *Server) handleProceed(w http.ResponseWriter, r *http.Request) {
	step(s, w, r, func(d *reservation.Draft, _ struct{}) error {
		return d.Proceed()
	})
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	step(s, w, r, func(d *reservation.Draft, _ struct{}) error {
		return d.Retry()
	})
}

type contactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

// handleSubmit books the draft. BeginSubmit marks the draft as in flight
// under the store lock, so a concurrent second submit is refused with 409
// before it reaches the backend.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	id, ok := s.draftID(r)
	if !ok {
		s.fail(w, r, errNoDraft, nil)
		return
	}
	contact := reservation.Contact{Name: req.Name, Phone: req.Phone, Email: req.Email, Notes: req.Notes}
	d, err := s.Drafts.Update(id, func(d *reservation.Draft) error { return d.BeginSubmit(contact) })
	if err != nil {
		s.fail(w, r, err, &d)
		return
	}

	conf, berr := s.Booking.Submit(r.Context(), d.Request())
	d, err = s.Drafts.Update(id, func(d *reservation.Draft) error {
		d.CompleteSubmit(conf.ID, booking.GuestError(berr))
		return nil
	})
	if err != nil {
		// Only reachable if the draft vanished mid-flight.
		s.fail(w, r, err, nil)
		return
	}
	if berr != nil {
		info := reservationErrors.Map(berr)
		writeJSON(w, info.Status, apiResponse{View: ptr(d.View()), Error: d.Message})
		return
	}
	s.Drafts.Delete(id)
	s.respondView(w, http.StatusCreated, d.View())
}

func ptr[T any](v T) *T { return &v }

type calendarDay struct {
	Date       string `json:"date"`
	Day        int    `json:"day"`
	Class      string `json:"class,omitempty"`
	Selectable bool   `json:"selectable"`
}

type calendarResponse struct {
	Month    string        `json:"month"`
	Title    string        `json:"title"`
	Prev     string        `json:"prev"`
	Next     string        `json:"next"`
	Weekdays []string      `json:"weekdays"`
	Days     []calendarDay `json:"days"`
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	today := s.now()
	year, month := today.Year(), today.Month()
	if raw := r.URL.Query().Get("month"); raw != "" {
		var err error
		if year, month, err = calendar.ParseMonth(raw); err != nil {
			s.fail(w, r, err, nil)
			return
		}
	}
	writeJSON(w, http.StatusOK, calendarJSON(calendar.Build(year, month, today, s.WeekStart)))
}

func calendarJSON(m calendar.Month) calendarResponse {
	py, pm := m.Prev()
	ny, nm := m.Next()
	resp := calendarResponse{
		Month:    m.Key(),
		Title:    m.Title(),
		Prev:     fmt.Sprintf("%04d-%02d", py, int(pm)),
		Next:     fmt.Sprintf("%04d-%02d", ny, int(nm)),
		Weekdays: m.Weekdays(),
		Days:     make([]calendarDay, 0, len(m.Days)),
	}
	for _, d := range m.Days {
		resp.Days = append(resp.Days, calendarDay{Date: d.Key(), Day: d.Number(), Class: d.Class(), Selectable: d.IsSelectable()})
	}
	return resp
}
