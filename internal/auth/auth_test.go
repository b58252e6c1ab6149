package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/burger-helsinki/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	ids    map[string]int64
	hashes map[string]string
}

func newMemUsers() *memUsers {
	return &memUsers{ids: map[string]int64{}, hashes: map[string]string{}}
}

func (m *memUsers) Insert(_ context.Context, username, hash string) (int64, error) {
	id := int64(len(m.ids) + 1)
	m.ids[username] = id
	m.hashes[username] = hash
	return id, nil
}

func (m *memUsers) PasswordHash(_ context.Context, username string) (int64, string, error) {
	id, ok := m.ids[username]
	if !ok {
		return 0, "", db.ErrNotFound
	}
	return id, m.hashes[username], nil
}

var (
	hashKey  = []byte("0123456789abcdef0123456789abcdef")
	blockKey = []byte("fedcba9876543210fedcba9876543210")
)

func TestAuthenticate(t *testing.T) {
	s := NewStore(newMemUsers(), hashKey, blockKey)
	ctx := context.Background()

	id, err := s.CreateUser(ctx, "anna", "burgers-all-day")
	require.NoError(t, err)

	got, err := s.Authenticate(ctx, "anna", "burgers-all-day")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = s.Authenticate(ctx, "anna", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Authenticate(ctx, "nobody", "burgers-all-day")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUserRejectsShortPassword(t *testing.T) {
	s := NewStore(newMemUsers(), hashKey, blockKey)
	_, err := s.CreateUser(context.Background(), "anna", "short")
	assert.Error(t, err)
}

func TestWithoutUsers(t *testing.T) {
	s := NewStore(nil, hashKey, blockKey)
	assert.False(t, s.Enabled())
	_, err := s.Authenticate(context.Background(), "anna", "burgers-all-day")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSessionRoundTrip(t *testing.T) {
	s := NewStore(nil, hashKey, blockKey)

	rec := httptest.NewRecorder()
	require.NoError(t, s.SetSession(rec, httptest.NewRequest(http.MethodPost, "/login", nil), 7))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	var seen int64
	h := s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/staff/announcements", nil)
	req.AddCookie(cookies[0])
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, int64(7), seen)

	anon := httptest.NewRecorder()
	h.ServeHTTP(anon, httptest.NewRequest(http.MethodGet, "/staff/announcements", nil))
	assert.Equal(t, http.StatusFound, anon.Code)
	assert.Equal(t, "/index.html?login=1", anon.Header().Get("Location"))
}

func TestTamperedCookieIsIgnored(t *testing.T) {
	s := NewStore(nil, hashKey, blockKey)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "not-a-session"})
	_, ok := s.GetSession(req)
	assert.False(t, ok)
}
