package handler

import (
    "errors"
    "net/http"

    "github.com/iliyamo/lodge-bed-reservation/internal/availability"
    "github.com/iliyamo/lodge-bed-reservation/internal/booking"
    "github.com/iliyamo/lodge-bed-reservation/internal/middleware"
    "github.com/iliyamo/lodge-bed-reservation/internal/model"
    "github.com/labstack/echo/v4"
)

// AvailabilityHandler serves the public availability surface: the
// whole-stay search and the per-night calendar breakdown.  Search is
// read-only with respect to holds; creating a hold is a separate,
// explicit action handled by HoldHandler.
type AvailabilityHandler struct {
    Search *booking.Search
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(search *booking.Search) *AvailabilityHandler {
    if search == nil {
        panic("nil search passed to NewAvailabilityHandler")
    }
    return &AvailabilityHandler{Search: search}
}

// QueryAvailability handles POST /v1/availability.  The body carries
// the stay interval and the guest manifest:
//
//	{"check_in": "2025-07-01", "check_out": "2025-07-05",
//	 "guests": [{"type": "adult", "count": 2}]}
//
// Conflict outcomes (blocked days, another session's booking in
// progress) are 200 responses with available=false and a reason
// code: they are expected results of normal contention, not faults.
func (h *AvailabilityHandler) QueryAvailability(c echo.Context) error {
    var body struct {
        CheckIn  string             `json:"check_in"`
        CheckOut string             `json:"check_out"`
        Guests   []model.GuestCount `json:"guests"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    checkIn, err := parseDay(body.CheckIn)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_in date"})
    }
    checkOut, err := parseDay(body.CheckOut)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_out date"})
    }
    if model.TotalGuests(body.Guests) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "guest manifest is required"})
    }

    result, err := h.Search.Availability(c.Request().Context(), middleware.SessionToken(c), checkIn, checkOut, body.Guests)
    if err != nil {
        if errors.Is(err, availability.ErrInvalidStay) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be after check_in"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability check failed"})
    }

    switch result.Reason {
    case booking.ReasonBlockedDays:
        days := make([]string, 0, len(result.BlockedDays))
        for _, d := range result.BlockedDays {
            days = append(days, dayString(d))
        }
        return c.JSON(http.StatusOK, echo.Map{
            "available":    false,
            "reason":       booking.ReasonBlockedDays,
            "blocked_days": days,
        })
    case booking.ReasonBookingInProgress:
        return c.JSON(http.StatusOK, echo.Map{
            "available": false,
            "reason":    booking.ReasonBookingInProgress,
        })
    }

    av := result.Availability
    rooms := make([]echo.Map, 0, len(av.Rooms))
    for _, ra := range av.Rooms {
        all := make([]echo.Map, 0, len(ra.Room.Beds))
        for _, b := range ra.Room.Beds {
            all = append(all, bedJSON(b))
        }
        free := make([]echo.Map, 0, len(ra.FreeBeds))
        for _, b := range ra.FreeBeds {
            free = append(free, bedJSON(b))
        }
        rooms = append(rooms, echo.Map{
            "room_id":       ra.Room.ID,
            "description":   ra.Room.Description,
            "display_order": ra.Room.DisplayOrder,
            "beds":          all,
            "free_beds":     free,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{
        "available": result.Available,
        "status":    av.Status,
        "free_beds": av.FreeBeds,
        "rooms":     rooms,
        "nights":    nightsJSON(av.Nights),
    })
}

// GetCalendar handles GET /v1/calendar?from=YYYY-MM-DD&to=YYYY-MM-DD.
// It returns the per-night, per-room availability breakdown for
// display purposes.  The route sits behind the Redis response cache:
// the breakdown reflects confirmed occupancy only, so a short TTL is
// harmless, unlike the search endpoint which must see live holds.
func (h *AvailabilityHandler) GetCalendar(c echo.Context) error {
    from, err := parseDay(c.QueryParam("from"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from date"})
    }
    to, err := parseDay(c.QueryParam("to"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to date"})
    }
    nights, err := h.Search.Calendar(c.Request().Context(), from, to)
    if err != nil {
        if errors.Is(err, availability.ErrInvalidStay) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be after from"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load calendar"})
    }
    return c.JSON(http.StatusOK, echo.Map{"nights": nightsJSON(nights)})
}
