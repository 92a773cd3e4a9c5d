// Package queue defines message payloads exchanged over the message broker.
package queue

// Hold lifecycle event names published to the hold.lifecycle queue.
const (
    EventHoldCreated        = "hold.created"
    EventHoldCancelled      = "hold.cancelled"
    EventHoldExpired        = "hold.expired"
    EventHoldPaymentEntered = "hold.payment_entered"
)

// HoldLifecycleEvent is published on hold transitions.  It carries
// enough information for downstream consumers (back-office dashboards,
// analytics) to follow contention on the calendar without querying
// the primary database.  The session token is deliberately omitted:
// it is a client-facing secret.
type HoldLifecycleEvent struct {
    Event      string `json:"event"`
    HoldID     uint64 `json:"hold_id"`
    CheckIn    string `json:"check_in"`
    CheckOut   string `json:"check_out"`
    TimeIsUpAt string `json:"time_is_up_at,omitempty"`
    OccurredAt string `json:"occurred_at"`
}
