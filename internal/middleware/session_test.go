package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveWithSession(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	var seen string
	e.GET("/", func(c echo.Context) error {
		seen = SessionToken(c)
		return c.NoContent(http.StatusOK)
	}, EnsureSession())

	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w, seen
}

func TestEnsureSessionIssuesCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w, seen := serveWithSession(t, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, seen)
	assert.Len(t, seen, 64) // 32 random bytes, hex encoded

	var cookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == SessionCookieName {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, seen, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestEnsureSessionReusesExistingCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "existing-token"})
	w, seen := serveWithSession(t, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "existing-token", seen)
	// No replacement cookie is issued.
	for _, ck := range w.Result().Cookies() {
		assert.NotEqual(t, SessionCookieName, ck.Name)
	}
}

func TestSessionTokenWithoutMiddleware(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Empty(t, SessionToken(c))
}
