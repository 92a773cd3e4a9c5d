package middleware

// session.go gives every shopper an opaque session token carried in a
// cookie. The token is a pure correlation key: it only distinguishes
// "my in-flight booking attempt" from "someone else's" in hold
// conflict checks and has no trust semantics whatsoever. No account,
// no claims, no signature.

import (
    "crypto/rand"
    "encoding/hex"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// SessionCookieName is the cookie carrying the shopper session token.
const SessionCookieName = "lodge_session"

// sessionContextKey is where EnsureSession stores the token in the
// Echo context for handlers and other middleware.
const sessionContextKey = "session_token"

// EnsureSession reads the session cookie and, when absent or empty,
// generates a fresh random token and sets the cookie on the
// response. The token is always placed in the request context so
// handlers never deal with cookies directly.
func EnsureSession() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            token := ""
            if ck, err := c.Cookie(SessionCookieName); err == nil && ck.Value != "" {
                token = ck.Value
            }
            if token == "" {
                t, err := newSessionToken()
                if err != nil {
                    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create session"})
                }
                token = t
                c.SetCookie(&http.Cookie{
                    Name:     SessionCookieName,
                    Value:    token,
                    Path:     "/",
                    HttpOnly: true,
                    SameSite: http.SameSiteLaxMode,
                    Expires:  time.Now().AddDate(0, 0, 30),
                })
            }
            c.Set(sessionContextKey, token)
            return next(c)
        }
    }
}

// SessionToken returns the token stored by EnsureSession, or ""
// when the middleware did not run.
func SessionToken(c echo.Context) string {
    if v := c.Get(sessionContextKey); v != nil {
        if s, ok := v.(string); ok {
            return s
        }
    }
    return ""
}

// newSessionToken generates a 64 character hex token from 32
// cryptographically secure random bytes.
func newSessionToken() (string, error) {
    b := make([]byte, 32)
    if _, err := rand.Read(b); err != nil {
        return "", err
    }
    return hex.EncodeToString(b), nil
}
