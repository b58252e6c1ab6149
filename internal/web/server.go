// Package web serves the restaurant site: the landing page, the reservation
// flow and its JSON API, announcements and the staff area.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/burger-helsinki/internal/announcement"
	"github.com/example/burger-helsinki/internal/auth"
	"github.com/example/burger-helsinki/internal/booking"
	"github.com/example/burger-helsinki/internal/drafts"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
)

//go:embed templates/*.html static
var fs embed.FS

type Server struct {
	Auth    *auth.Store
	Drafts  *drafts.Store
	Booking *booking.Service
	// DraftTokens signs the draft id embedded in each reservation page.
	DraftTokens *securecookie.SecureCookie

	Announcements announcement.Source
	// AnnouncementRepo is nil when the site runs without a database; the
	// staff area is read-only then.
	AnnouncementRepo *announcement.Repo

	MaxGuests  int
	WeekStart  time.Weekday
	Location   *time.Location
	LoadingMin time.Duration

	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger()))
	r.Use(middleware.Recoverer)

	r.Handle("/static/*", http.FileServer(http.FS(fs)))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Get("/", s.handleIndex)
	r.Get("/index.html", s.handleIndex)

	r.Get("/reservation", redirectTo("/reservation/index.html"))
	r.Get("/reservation/", redirectTo("/reservation/index.html"))
	r.Get("/reservation/index.html", s.handleReservationPage)

	r.Get("/announcement", redirectTo("/announcement/index.html"))
	r.Get("/announcement/", redirectTo("/announcement/index.html"))
	r.Get("/announcement/index.html", s.handleAnnouncementPage)
	// Misspelled path kept alive for old links.
	r.Get("/annoucement/index.html", s.handleAnnouncementPage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/calendar", s.handleCalendar)
		r.Get("/announcements", s.handleAnnouncements)
		r.Route("/reservation", func(r chi.Router) {
			r.Get("/", s.handleDraftView)
			r.Post("/guests", s.handleGuests)
			r.Post("/date", s.handleDate)
			r.Post("/time", s.handleTime)
			r.Post("/proceed", s.handleProceed)
			r.Post("/submit", s.handleSubmit)
			r.Post("/retry", s.handleRetry)
		})
	})

	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Group(func(r chi.Router) {
		r.Use(s.Auth.RequireAuth)
		r.Get("/staff/announcements", s.handleStaffAnnouncements)
		r.Post("/staff/announcements", s.handleStaffAnnouncementCreate)
		r.Post("/staff/announcements/{id}/delete", s.handleStaffAnnouncementDelete)
	})

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})
	return r
}

func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusMovedPermanently)
	}
}

func (s *Server) now() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

var funcs = template.FuncMap{
	"seq": func(from, to int) []int {
		out := make([]int, 0, to-from+1)
		for i := from; i <= to; i++ {
			out = append(out, i)
		}
		return out
	},
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data tmplData) {
	t, err := template.New("").Funcs(funcs).ParseFS(fs,
		"templates/base.html",
		name,
	)
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		s.logger().Error("render failed", slog.String("template", name), slog.Any("error", err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Start(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info("listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
