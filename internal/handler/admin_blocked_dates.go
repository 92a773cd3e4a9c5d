package handler

import (
    "errors"
    "net/http"
    "time"

    "github.com/iliyamo/lodge-bed-reservation/internal/repository"
    "github.com/labstack/echo/v4"
)

// AdminHandler serves the administrative write side of the calendar
// block store.  All routes sit behind JWT auth with the ADMIN role;
// tokens are issued by the back office, this service only validates
// them.
type AdminHandler struct {
    BlockedDates *repository.BlockedDateRepo
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(blockedDates *repository.BlockedDateRepo) *AdminHandler {
    if blockedDates == nil {
        panic("nil repository passed to NewAdminHandler")
    }
    return &AdminHandler{BlockedDates: blockedDates}
}

// ListBlockedDates handles GET /v1/admin/blocked-dates.  Optional
// from/to query parameters narrow the range; the default is one year
// starting today.
func (h *AdminHandler) ListBlockedDates(c echo.Context) error {
    from := time.Now().UTC()
    to := from.AddDate(1, 0, 0)
    if s := c.QueryParam("from"); s != "" {
        d, err := parseDay(s)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from date"})
        }
        from = d
    }
    if s := c.QueryParam("to"); s != "" {
        d, err := parseDay(s)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to date"})
        }
        to = d
    }
    days, err := h.BlockedDates.ListBetween(c.Request().Context(), from, to)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load blocked dates"})
    }
    items := make([]echo.Map, 0, len(days))
    for _, d := range days {
        items = append(items, echo.Map{"id": d.ID, "day": dayString(d.Day)})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateBlockedDate handles POST /v1/admin/blocked-dates with a body
// of {"day": "2006-01-02"}.  Blocking an already blocked date is a
// 409.
func (h *AdminHandler) CreateBlockedDate(c echo.Context) error {
    var body struct {
        Day string `json:"day"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    day, err := parseDay(body.Day)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid day"})
    }
    blocked, err := h.BlockedDates.Insert(c.Request().Context(), day)
    if err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "date already blocked"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to block date"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": blocked.ID, "day": dayString(blocked.Day)})
}

// DeleteBlockedDate handles DELETE /v1/admin/blocked-dates/:date.
// Deleting a date that is not blocked is a no-op 204.
func (h *AdminHandler) DeleteBlockedDate(c echo.Context) error {
    day, err := parseDay(c.Param("date"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
    }
    if err := h.BlockedDates.Delete(c.Request().Context(), day); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to unblock date"})
    }
    return c.NoContent(http.StatusNoContent)
}
