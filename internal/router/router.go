package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/lodge-bed-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/lodge-bed-reservation/internal/middleware" // import middleware for sessions, JWT auth and rate limiting
)

// RegisterRoutes registers routes that do not require a session on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterBooking registers the public booking surface: availability
// search, the calendar breakdown and the hold lifecycle.  Every route
// runs behind EnsureSession so each shopper carries an opaque session
// token; the heartbeat endpoint additionally runs behind the rate
// limiter (it polls every 10 seconds per open checkout tab), and the
// calendar sits behind the Redis response cache.  The availability
// search is deliberately NOT cached: its answer depends on live holds.
func RegisterBooking(e *echo.Echo, a *handler.AvailabilityHandler, h *handler.HoldHandler, rateLimit, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.EnsureSession())
	// Whole-stay availability search with guest manifest.
	g.POST("/availability", a.QueryAvailability)
	// Per-night per-room breakdown for calendar display (cached).
	g.GET("/calendar", a.GetCalendar, cache)
	// Commit to a date range: create a session-owned hold.
	g.POST("/holds", h.CreateHold)
	// Keep-alive polling from the checkout page (rate limited).
	g.POST("/holds/:id/heartbeat", h.HeartbeatHold, rateLimit)
	// Explicit lifecycle transitions: ENTER_PAYMENT, CANCEL, HEARTBEAT.
	g.POST("/holds/:id", h.TransitionHold)
}

// RegisterAdmin registers the administrative blocked-date routes.  The
// group validates back-office JWTs and only admits the ADMIN role.
func RegisterAdmin(e *echo.Echo, ah *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))
	g.GET("/blocked-dates", ah.ListBlockedDates)
	g.POST("/blocked-dates", ah.CreateBlockedDate)
	g.DELETE("/blocked-dates/:date", ah.DeleteBlockedDate)
}
