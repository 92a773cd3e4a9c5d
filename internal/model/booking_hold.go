package model

import "time"

// BookingHold is a temporary, session-owned claim on a stay interval
// while a shopper walks through checkout.  It is the unit of
// contention control: two live holds conflict when their intervals
// overlap and they belong to different sessions.  Holds expire on a
// hard deadline (TimeIsUpAt), on heartbeat staleness (UpdatedAt), or
// when explicitly cancelled; EnteredPaymentAt grants a short grace
// window past the deadline for shoppers mid payment redirect.
//
// Fields:
//  ID               – primary key identifier.
//  CheckIn          – first night of the held interval (inclusive).
//  CheckOut         – checkout day of the held interval (exclusive).
//  SessionToken     – opaque token of the owning shopper session.
//  StillOnHold      – stored liveness flag; see EffectivelyLive.
//  TimeIsUpAt       – hard deadline after which the hold lapses.
//  EnteredPaymentAt – when the shopper entered payment, if ever.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last heartbeat timestamp.
type BookingHold struct {
    ID               uint64     // booking_holds.id
    CheckIn          time.Time  // booking_holds.check_in (DATE)
    CheckOut         time.Time  // booking_holds.check_out (DATE, exclusive)
    SessionToken     string     // booking_holds.session_token
    StillOnHold      bool       // booking_holds.still_on_hold
    TimeIsUpAt       time.Time  // booking_holds.time_is_up_at
    EnteredPaymentAt *time.Time // booking_holds.entered_payment_at (nullable)
    CreatedAt        time.Time  // booking_holds.created_at
    UpdatedAt        time.Time  // booking_holds.updated_at
}

// Overlaps reports whether the hold's interval intersects
// [checkIn, checkOut) under half-open semantics.  Abutting intervals
// (one's checkout equals the other's check-in) do not overlap.
func (h *BookingHold) Overlaps(checkIn, checkOut time.Time) bool {
    return h.CheckIn.Before(checkOut) && checkIn.Before(h.CheckOut)
}

// EffectivelyLive derives the true liveness of a hold at the given
// instant.  The stored StillOnHold flag alone cannot be trusted
// because the expiry sweep is lazy; every conflict check must apply
// this full predicate instead.  A hold is live when its flag is set,
// its deadline has not passed (or a payment grace window still
// covers it), and its last heartbeat is fresher than the liveness
// timeout.
func (h *BookingHold) EffectivelyLive(now time.Time, paymentGrace, livenessTimeout time.Duration) bool {
    if !h.StillOnHold {
        return false
    }
    withinDeadline := now.Before(h.TimeIsUpAt)
    if !withinDeadline && h.EnteredPaymentAt != nil {
        withinDeadline = now.Before(h.EnteredPaymentAt.Add(paymentGrace))
    }
    if !withinDeadline {
        return false
    }
    return now.Sub(h.UpdatedAt) < livenessTimeout
}
