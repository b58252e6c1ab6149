package web

import (
	"log/slog"
	"net/http"

	"github.com/example/burger-helsinki/internal/announcement"
	"github.com/example/burger-helsinki/internal/calendar"
	"github.com/example/burger-helsinki/internal/menu"
	"github.com/example/burger-helsinki/internal/reservation"
)

type tmplData struct {
	Title string
	// Page marks the active navbar link.
	Page string
	User int64

	Flash     string
	ShowLogin bool
	Year      int

	Menu []menu.Item

	Month      calendar.Month
	MaxGuests  int
	View       reservation.View
	DraftToken string

	LoadingMinMS  int64
	Announcements []announcementRow
}

type announcementRow struct {
	announcement.Item
	Age string
}

func (s *Server) page(r *http.Request, title, page string) tmplData {
	d := tmplData{Title: title, Page: page, Year: s.now().Year()}
	if sess, ok := s.Auth.GetSession(r); ok {
		d.User = sess.UserID
	}
	return d
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	d := s.page(r, "Burger Helsinki", "home")
	d.Menu = menu.Items()
	d.ShowLogin = r.URL.Query().Get("login") != ""
	s.render(w, http.StatusOK, "templates/index.html", d)
}

// handleReservationPage starts a fresh draft on every visit.
func (s *Server) handleReservationPage(w http.ResponseWriter, r *http.Request) {
	draft := s.Drafts.Create()
	token, err := s.draftToken(draft.ID)
	if err != nil {
		s.logger().Error("draft token", slog.Any("error", err))
		http.Error(w, "could not start a reservation", http.StatusInternalServerError)
		return
	}
	d := s.page(r, "Reservation Calendar", "reservation")
	d.Month = calendar.Current(s.now(), s.WeekStart)
	d.MaxGuests = s.maxGuests()
	d.View = draft.View()
	d.DraftToken = token
	w.Header().Set("Cache-Control", "no-store")
	s.render(w, http.StatusOK, "templates/reservation.html", d)
}

// handleAnnouncementPage renders the shell only; the list is fetched by the
// page so the loading state is visible first.
func (s *Server) handleAnnouncementPage(w http.ResponseWriter, r *http.Request) {
	d := s.page(r, "Latest Announcements", "announcements")
	d.LoadingMinMS = s.LoadingMin.Milliseconds()
	s.render(w, http.StatusOK, "templates/announcement.html", d)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusNotFound, "templates/notfound.html", s.page(r, "Page not found", ""))
}

func (s *Server) maxGuests() int {
	if s.MaxGuests < 1 {
		return 10
	}
	return s.MaxGuests
}
