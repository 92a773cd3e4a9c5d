package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/iliyamo/lodge-bed-reservation/internal/availability"
    "github.com/iliyamo/lodge-bed-reservation/internal/booking"
    "github.com/iliyamo/lodge-bed-reservation/internal/middleware"
    "github.com/iliyamo/lodge-bed-reservation/internal/model"
    "github.com/iliyamo/lodge-bed-reservation/internal/queue"
    queue_publisher "github.com/iliyamo/lodge-bed-reservation/internal/service"
    "github.com/labstack/echo/v4"
)

// Lifecycle actions accepted by TransitionHold.
const (
    actionEnterPayment = "ENTER_PAYMENT"
    actionCancel       = "CANCEL"
    actionHeartbeat    = "HEARTBEAT"
)

// HoldHandler serves the hold lifecycle surface: creating a hold
// when a shopper commits to a date range, the periodic heartbeat
// that keeps it alive, and the explicit transitions into payment or
// cancellation.  Lifecycle events are published to the broker
// best-effort; a broker outage never blocks a shopper.
type HoldHandler struct {
    Holds   *booking.HoldManager
    Publish func(ctx context.Context, ev queue.HoldLifecycleEvent) error
}

// NewHoldHandler constructs a HoldHandler wired to the RabbitMQ
// publisher.
func NewHoldHandler(holds *booking.HoldManager) *HoldHandler {
    if holds == nil {
        panic("nil hold manager passed to NewHoldHandler")
    }
    return &HoldHandler{Holds: holds, Publish: queue_publisher.PublishHoldLifecycle}
}

// CreateHold handles POST /v1/holds.  The body carries the stay
// interval; the owning session comes from the session cookie, which
// the middleware issues when absent.  Responses follow the
// structured-conflict convention: contention is a 200 with
// available=false, only store failures are 5xx.
func (h *HoldHandler) CreateHold(c echo.Context) error {
    var body struct {
        CheckIn  string `json:"check_in"`
        CheckOut string `json:"check_out"`
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

    hold, err := h.Holds.Create(c.Request().Context(), middleware.SessionToken(c), checkIn, checkOut)
    if err != nil {
        switch {
        case errors.Is(err, availability.ErrInvalidStay):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be after check_in"})
        case errors.Is(err, booking.ErrHoldConflict):
            return c.JSON(http.StatusOK, echo.Map{
                "available": false,
                "reason":    booking.ReasonBookingInProgress,
            })
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{
                "available": false,
                "reason":    "ERROR",
            })
        }
    }

    h.publishAsync(holdEvent(queue.EventHoldCreated, hold))
    return c.JSON(http.StatusCreated, echo.Map{
        "available":  true,
        "booking_id": hold.ID,
    })
}

// HeartbeatHold handles POST /v1/holds/:id/heartbeat.  It triggers
// the lazy expiry sweep, refreshes the hold's last-activity
// timestamp and tells the client whether to keep polling.  The
// deadline itself never moves.
func (h *HoldHandler) HeartbeatHold(c echo.Context) error {
    id, err := parseHoldID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hold id"})
    }
    return h.heartbeat(c, id)
}

// TransitionHold handles POST /v1/holds/:id with a body of
// {"action": "ENTER_PAYMENT" | "CANCEL" | "HEARTBEAT"}.
func (h *HoldHandler) TransitionHold(c echo.Context) error {
    id, err := parseHoldID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hold id"})
    }
    var body struct {
        Action string `json:"action"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    ctx := c.Request().Context()
    switch body.Action {
    case actionHeartbeat:
        return h.heartbeat(c, id)
    case actionEnterPayment:
        if err := h.Holds.EnterPayment(ctx, id); err != nil {
            if errors.Is(err, booking.ErrHoldExpired) {
                return c.JSON(http.StatusOK, echo.Map{"valid": false, "reason": "BOOKING_EXPIRED"})
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to enter payment"})
        }
        h.publishAsync(queue.HoldLifecycleEvent{
            Event:      queue.EventHoldPaymentEntered,
            HoldID:     id,
            OccurredAt: time.Now().UTC().Format(time.RFC3339),
        })
        return c.JSON(http.StatusOK, echo.Map{"valid": true})
    case actionCancel:
        if err := h.Holds.Cancel(ctx, id); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel hold"})
        }
        h.publishAsync(queue.HoldLifecycleEvent{
            Event:      queue.EventHoldCancelled,
            HoldID:     id,
            OccurredAt: time.Now().UTC().Format(time.RFC3339),
        })
        return c.JSON(http.StatusOK, echo.Map{"cancelled": true})
    default:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown action"})
    }
}

func (h *HoldHandler) heartbeat(c echo.Context, id uint64) error {
    if err := h.Holds.Heartbeat(c.Request().Context(), id); err != nil {
        if errors.Is(err, booking.ErrHoldExpired) {
            h.publishAsync(queue.HoldLifecycleEvent{
                Event:      queue.EventHoldExpired,
                HoldID:     id,
                OccurredAt: time.Now().UTC().Format(time.RFC3339),
            })
            return c.JSON(http.StatusOK, echo.Map{"valid": false, "reason": "BOOKING_EXPIRED"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "heartbeat failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"valid": true})
}

// publishAsync fires a lifecycle event without blocking the request.
func (h *HoldHandler) publishAsync(ev queue.HoldLifecycleEvent) {
    if h.Publish == nil {
        return
    }
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        _ = h.Publish(ctx, ev)
    }()
}

func holdEvent(event string, hold *model.BookingHold) queue.HoldLifecycleEvent {
    return queue.HoldLifecycleEvent{
        Event:      event,
        HoldID:     hold.ID,
        CheckIn:    dayString(hold.CheckIn),
        CheckOut:   dayString(hold.CheckOut),
        TimeIsUpAt: hold.TimeIsUpAt.UTC().Format(time.RFC3339),
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    }
}

func parseHoldID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid hold id")
    }
    return id, nil
}
