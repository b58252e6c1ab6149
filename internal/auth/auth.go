// Package auth handles staff accounts and their session cookie.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/example/burger-helsinki/internal/db"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnavailable is returned when the site runs without a user database.
	ErrUnavailable = errors.New("staff login is not available")
)

const (
	cookieName = "bh_staff"
	sessionAge = 12 * time.Hour
)

// Users is the account storage behind a Store.
type Users interface {
	Insert(ctx context.Context, username, passwordHash string) (int64, error)
	PasswordHash(ctx context.Context, username string) (int64, string, error)
}

type Store struct {
	sc    *securecookie.SecureCookie
	users Users
}

type ctxKey string

const userIDKey ctxKey = "userID"

// NewStore builds a session store. users may be nil, in which case every
// login attempt fails with ErrUnavailable.
func NewStore(users Users, hashKey, blockKey []byte) *Store {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(sessionAge.Seconds()))
	return &Store{sc: sc, users: users}
}

func (s *Store) Enabled() bool { return s.users != nil }

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func (s *Store) CreateUser(ctx context.Context, username, password string) (int64, error) {
	if s.users == nil {
		return 0, ErrUnavailable
	}
	if username == "" || len(password) < 8 {
		return 0, errors.New("username required and password must be at least 8 characters")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return 0, err
	}
	return s.users.Insert(ctx, username, hash)
}

func (s *Store) Authenticate(ctx context.Context, username, password string) (int64, error) {
	if s.users == nil {
		return 0, ErrUnavailable
	}
	id, hash, err := s.users.PasswordHash(ctx, username)
	if db.IsNotFound(err) {
		return 0, ErrInvalidCredentials
	}
	if err != nil {
		return 0, fmt.Errorf("lookup %q: %w", username, err)
	}
	if !CheckPassword(hash, password) {
		return 0, ErrInvalidCredentials
	}
	return id, nil
}

type Session struct {
	UserID int64
}

func (s *Store) SetSession(w http.ResponseWriter, r *http.Request, userID int64) error {
	encoded, err := s.sc.Encode(cookieName, Session{UserID: userID})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int(sessionAge.Seconds()),
	})
	return nil
}

func (s *Store) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (s *Store) GetSession(r *http.Request) (Session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return Session{}, false
	}
	var sess Session
	if err := s.sc.Decode(cookieName, c.Value, &sess); err != nil || sess.UserID <= 0 {
		return Session{}, false
	}
	return sess, true
}

// RequireAuth sends anonymous visitors to the index page, where the login
// form lives.
func (s *Store) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.GetSession(r)
		if !ok {
			http.Redirect(w, r, "/index.html?login=1", http.StatusFound)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, sess.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(userIDKey).(int64)
	return uid, ok
}
