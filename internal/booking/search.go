package booking

import (
    "context"
    "time"

    "github.com/iliyamo/lodge-bed-reservation/internal/availability"
    "github.com/iliyamo/lodge-bed-reservation/internal/model"
)

// Machine-readable reasons for an unavailable search outcome.  They
// are structured results, never errors: calendar closures and
// transient contention are frequent, expected outcomes.
const (
    ReasonBlockedDays       = "BLOCKED_DAYS"
    ReasonBookingInProgress = "BOOKING_IN_PROGRESS"
)

// BlockedDateStore is the read side of the administratively closed
// calendar.  *repository.BlockedDateRepo is the production
// implementation.
type BlockedDateStore interface {
    ListBetween(ctx context.Context, from, to time.Time) ([]model.BlockedDate, error)
}

// InventoryStore provides the bed/room/reservation snapshot for a
// date range.  *repository.InventoryRepo is the production
// implementation.
type InventoryStore interface {
    Snapshot(ctx context.Context, from, to time.Time) (availability.Snapshot, error)
}

// SearchResult is one availability answer.  Exactly one of the three
// shapes applies: blocked days (with the offending dates), another
// session's booking in progress, or an availability verdict.
type SearchResult struct {
    Available    bool
    Reason       string
    BlockedDays  []time.Time
    Availability *availability.Result
}

// Search sequences the three independent checks of an availability
// request: administratively blocked nights, live overlapping holds
// from other sessions, and the availability engine.  The checks stay
// sequential and independently failing on purpose — making
// search-then-reserve atomic would need a locking design the rest of
// the system does not have, and the payment-time re-validation is
// the backstop.
type Search struct {
    blocked   BlockedDateStore
    inventory InventoryStore
    holds     *HoldManager
}

// NewSearch constructs the search orchestrator.
func NewSearch(blocked BlockedDateStore, inventory InventoryStore, holds *HoldManager) *Search {
    if blocked == nil || inventory == nil || holds == nil {
        panic("nil dependency passed to NewSearch")
    }
    return &Search{blocked: blocked, inventory: inventory, holds: holds}
}

// Availability answers one search request for the session.  Search
// is read-only with respect to holds: it observes other sessions'
// holds but never creates or mutates one — only an explicit reserve
// action does that.
func (s *Search) Availability(ctx context.Context, sessionToken string, checkIn, checkOut time.Time, guests []model.GuestCount) (*SearchResult, error) {
    checkIn, checkOut = availability.Day(checkIn), availability.Day(checkOut)
    if !checkIn.Before(checkOut) {
        return nil, availability.ErrInvalidStay
    }

    // 1. Any administratively blocked night rejects the stay, and the
    // caller is told exactly which dates are closed.
    blocked, err := s.blocked.ListBetween(ctx, checkIn, checkOut)
    if err != nil {
        return nil, err
    }
    if len(blocked) > 0 {
        days := make([]time.Time, 0, len(blocked))
        for _, b := range blocked {
            days = append(days, availability.Day(b.Day))
        }
        return &SearchResult{Reason: ReasonBlockedDays, BlockedDays: days}, nil
    }

    // 2. Another session mid checkout on an overlapping interval wins.
    conflict, err := s.holds.HasOtherLiveHold(ctx, sessionToken, checkIn, checkOut)
    if err != nil {
        return nil, err
    }
    if conflict {
        return &SearchResult{Reason: ReasonBookingInProgress}, nil
    }

    // 3. Compute the verdict from the inventory snapshot.
    snap, err := s.inventory.Snapshot(ctx, checkIn, checkOut)
    if err != nil {
        return nil, err
    }
    result, err := availability.Compute(snap, checkIn, checkOut, model.TotalGuests(guests))
    if err != nil {
        return nil, err
    }
    return &SearchResult{
        Available:    result.Status == availability.StatusEnough,
        Availability: result,
    }, nil
}

// Calendar returns the per-night, per-room breakdown for a date
// range, for calendar display.  It skips the blocked-day and hold
// checks: the breakdown reflects confirmed occupancy only and is
// safe to cache briefly.
func (s *Search) Calendar(ctx context.Context, from, to time.Time) ([]availability.NightBreakdown, error) {
    from, to = availability.Day(from), availability.Day(to)
    if !from.Before(to) {
        return nil, availability.ErrInvalidStay
    }
    snap, err := s.inventory.Snapshot(ctx, from, to)
    if err != nil {
        return nil, err
    }
    result, err := availability.Compute(snap, from, to, 0)
    if err != nil {
        return nil, err
    }
    return result.Nights, nil
}
