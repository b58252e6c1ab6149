package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/burger-helsinki/internal/announcement"
	"github.com/example/burger-helsinki/internal/auth"
	"github.com/example/burger-helsinki/internal/menu"
	"github.com/go-chi/chi/v5"
)

type announcementJSON struct {
	announcement.Item
	Age string `json:"age,omitempty"`
}

// handleAnnouncements returns the whole collection. The page filters it
// locally; q applies the same filter server side.
func (s *Server) handleAnnouncements(w http.ResponseWriter, r *http.Request) {
	items, err := s.Announcements.List(r.Context())
	if err != nil {
		s.logger().Error("list announcements", slog.Any("error", err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "announcements are unavailable right now"})
		return
	}
	items = announcement.Filter(items, r.URL.Query().Get("q"))
	now := s.now()
	out := make([]announcementJSON, 0, len(items))
	for _, it := range items {
		out = append(out, announcementJSON{Item: it, Age: it.Age(now)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"announcements": out})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	id, err := s.Auth.Authenticate(r.Context(), username, r.FormValue("password"))
	if err != nil {
		d := s.page(r, "Burger Helsinki", "home")
		d.Menu = menu.Items()
		d.ShowLogin = true
		status := http.StatusUnauthorized
		switch {
		case errors.Is(err, auth.ErrUnavailable):
			d.Flash = "Staff login is not available right now."
			status = http.StatusServiceUnavailable
		case errors.Is(err, auth.ErrInvalidCredentials):
			d.Flash = "Invalid username or password."
		default:
			s.logger().Error("login", slog.String("username", username), slog.Any("error", err))
			d.Flash = "Login failed, please try again."
			status = http.StatusInternalServerError
		}
		s.render(w, status, "templates/index.html", d)
		return
	}
	if err := s.Auth.SetSession(w, r, id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.logger().Info("staff login", slog.Int64("user", id))
	http.Redirect(w, r, "/staff/announcements", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Auth.ClearSession(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleStaffAnnouncements(w http.ResponseWriter, r *http.Request) {
	s.renderStaff(w, r, http.StatusOK, "")
}

func (s *Server) renderStaff(w http.ResponseWriter, r *http.Request, status int, flash string) {
	d := s.page(r, "Manage announcements", "announcements")
	d.Flash = flash
	items, err := s.Announcements.List(r.Context())
	if err != nil {
		s.logger().Error("list announcements", slog.Any("error", err))
		d.Flash = "Could not load announcements."
	}
	now := s.now()
	for _, it := range items {
		d.Announcements = append(d.Announcements, announcementRow{Item: it, Age: it.Age(now)})
	}
	s.render(w, status, "templates/staff.html", d)
}

func (s *Server) handleStaffAnnouncementCreate(w http.ResponseWriter, r *http.Request) {
	if s.AnnouncementRepo == nil {
		s.renderStaff(w, r, http.StatusServiceUnavailable, "Announcements are read-only without a database.")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	it := announcement.Item{
		Title: strings.TrimSpace(r.FormValue("title")),
		Body:  strings.TrimSpace(r.FormValue("body")),
	}
	id, err := s.AnnouncementRepo.Create(r.Context(), it, uid)
	if err != nil {
		if errors.Is(err, announcement.ErrInvalid) {
			s.renderStaff(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger().Error("create announcement", slog.Any("error", err))
		s.renderStaff(w, r, http.StatusInternalServerError, "Failed to publish the announcement.")
		return
	}
	s.logger().Info("announcement published", slog.Int64("id", id), slog.Int64("user", uid))
	http.Redirect(w, r, "/staff/announcements", http.StatusFound)
}

func (s *Server) handleStaffAnnouncementDelete(w http.ResponseWriter, r *http.Request) {
	if s.AnnouncementRepo == nil {
		s.renderStaff(w, r, http.StatusServiceUnavailable, "Announcements are read-only without a database.")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := s.AnnouncementRepo.Delete(r.Context(), id); err != nil {
		s.logger().Error("delete announcement", slog.Int64("id", id), slog.Any("error", err))
		s.renderStaff(w, r, http.StatusInternalServerError, "Failed to delete the announcement.")
		return
	}
	http.Redirect(w, r, "/staff/announcements", http.StatusFound)
}
