package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler() *JWTSessionHandler {
	return &JWTSessionHandler{
		Secret:     []byte("0123456789abcdef0123"),
		CookieName: "session_id",
		Lifetime:   time.Hour,
	}
}

func contextWithCookie(e *echo.Echo, cookie *http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no %s cookie set", name)
	return nil
}

func TestJWTSessionRoundTrip(t *testing.T) {
	e := echo.New()
	h := newHandler()
	data := SessionData{Email: "a@b.c", Role: "viewer", RoleLabel: "Viewer", Permissions: []string{"track"}}

	c, rec := contextWithCookie(e, nil)
	require.NoError(t, h.Start(c, data))

	cookie := sessionCookie(t, rec, "session_id")
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)

	c, _ = contextWithCookie(e, cookie)
	got, err := h.GetSessionData(c)
	require.NoError(t, err)
	assert.Equal(t, data, *got)
}

func TestJWTSessionRejectsForeignSecret(t *testing.T) {
	e := echo.New()
	h := newHandler()

	c, rec := contextWithCookie(e, nil)
	require.NoError(t, h.Start(c, SessionData{Email: "a@b.c"}))
	cookie := sessionCookie(t, rec, "session_id")

	other := newHandler()
	other.Secret = []byte("another-secret-entirely")

	c, _ = contextWithCookie(e, cookie)
	_, err := other.GetSessionData(c)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestJWTSessionMissingCookie(t *testing.T) {
	c, _ := contextWithCookie(echo.New(), nil)
	_, err := newHandler().GetSessionData(c)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestJWTSessionDestroyRevokesToken(t *testing.T) {
	e := echo.New()
	h := newHandler()

	c, rec := contextWithCookie(e, nil)
	require.NoError(t, h.Start(c, SessionData{Email: "a@b.c"}))
	cookie := sessionCookie(t, rec, "session_id")

	c, rec = contextWithCookie(e, cookie)
	require.NoError(t, h.Destroy(c))

	cleared := sessionCookie(t, rec, "session_id")
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// A copy of the old cookie must not work any more
	c, _ = contextWithCookie(e, cookie)
	_, err := h.GetSessionData(c)
	assert.ErrorIs(t, err, ErrInvalidSession)
}
