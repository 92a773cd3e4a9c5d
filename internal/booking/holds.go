// Package booking implements the contention-control core of the
// lodge: session-scoped booking holds acting as a soft mutex over
// stay intervals, and the availability search that sequences blocked
// day checks, hold conflict checks and the availability engine.
package booking

import (
    "context"
    "errors"
    "log"
    "time"

    "github.com/iliyamo/lodge-bed-reservation/internal/availability"
    "github.com/iliyamo/lodge-bed-reservation/internal/model"
    "github.com/iliyamo/lodge-bed-reservation/internal/repository"
)

// Default hold timings.  The 20 minute window is the shopping
// budget; EnterPayment extends it by the 7 minute grace so an
// external payment redirect is not pre-empted mid transaction.  The
// client heartbeats every HeartbeatInterval and a hold with no
// heartbeat for LivenessTimeout is presumed abandoned (tab closed,
// network gone) even before its deadline.
const (
    DefaultHoldWindow      = 20 * time.Minute
    DefaultPaymentGrace    = 7 * time.Minute
    DefaultLivenessTimeout = 30 * time.Second
    HeartbeatInterval      = 10 * time.Second
)

// ErrHoldConflict is returned by CreateHold when another session
// already owns a live hold overlapping the requested interval.  It
// is an expected outcome of normal contention, not a fault.
var ErrHoldConflict = errors.New("another booking for these dates is in progress")

// ErrHoldExpired is returned when an operation targets a hold that
// is no longer effectively live: cancelled, swept, past its deadline
// or heartbeat-stale.  Once a hold reaches this state nothing can
// revive it.
var ErrHoldExpired = errors.New("booking hold is no longer valid")

// HoldStore is the persisted table of in-flight holds, the only
// shared mutable state of the contention core.  *repository.HoldRepo
// is the production implementation.  A missing hold surfaces as
// repository.ErrHoldNotFound from FindByID, Touch and
// MarkEnteredPayment.
type HoldStore interface {
    Insert(ctx context.Context, h *model.BookingHold) error
    FindByID(ctx context.Context, id uint64) (*model.BookingHold, error)
    LiveOverlapping(ctx context.Context, checkIn, checkOut time.Time, excludeSession string) ([]model.BookingHold, error)
    RetireBySession(ctx context.Context, sessionToken string, now time.Time) (int64, error)
    Retire(ctx context.Context, id uint64, now time.Time) error
    Touch(ctx context.Context, id uint64, now time.Time) error
    MarkEnteredPayment(ctx context.Context, id uint64, now time.Time) error
    SweepExpired(ctx context.Context, now time.Time, paymentGrace, livenessTimeout time.Duration) (int64, error)
}

// HoldManager orchestrates the lifecycle of booking holds.  All
// policy lives in read-time predicate evaluation: writers flip flags
// with narrow idempotent updates and readers always apply the full
// effective-liveness predicate, so correctness never depends on when
// the lazy sweep happens to run.
type HoldManager struct {
    store           HoldStore
    now             func() time.Time
    holdWindow      time.Duration
    paymentGrace    time.Duration
    livenessTimeout time.Duration
}

// HoldOption customises a HoldManager.
type HoldOption func(*HoldManager)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) HoldOption {
    return func(m *HoldManager) {
        if now != nil {
            m.now = now
        }
    }
}

// WithTimings overrides the hold window, payment grace and liveness
// timeout.  Non-positive values keep the defaults.
func WithTimings(holdWindow, paymentGrace, livenessTimeout time.Duration) HoldOption {
    return func(m *HoldManager) {
        if holdWindow > 0 {
            m.holdWindow = holdWindow
        }
        if paymentGrace > 0 {
            m.paymentGrace = paymentGrace
        }
        if livenessTimeout > 0 {
            m.livenessTimeout = livenessTimeout
        }
    }
}

// NewHoldManager constructs a HoldManager over the given store.
func NewHoldManager(store HoldStore, opts ...HoldOption) *HoldManager {
    if store == nil {
        panic("nil store passed to NewHoldManager")
    }
    m := &HoldManager{
        store:           store,
        now:             time.Now,
        holdWindow:      DefaultHoldWindow,
        paymentGrace:    DefaultPaymentGrace,
        livenessTimeout: DefaultLivenessTimeout,
    }
    for _, opt := range opts {
        opt(m)
    }
    return m
}

// Create retires any live hold the session already owns, checks for
// conflicting live holds from other sessions and inserts a fresh
// hold with a full window.  Returns ErrHoldConflict when another
// session is already working toward an overlapping interval.
//
// The check-then-insert sequence is deliberately not atomic: two
// sessions racing on the same interval can momentarily both hold.
// That narrow window is accepted; the payment-capture step
// re-validates exclusivity before any guest is charged.
func (m *HoldManager) Create(ctx context.Context, sessionToken string, checkIn, checkOut time.Time) (*model.BookingHold, error) {
    checkIn, checkOut = availability.Day(checkIn), availability.Day(checkOut)
    if !checkIn.Before(checkOut) {
        return nil, availability.ErrInvalidStay
    }
    now := m.now()

    // A session may only ever have one active intent; starting a new
    // hold implicitly abandons the previous one.  Failure here is
    // housekeeping, not a reason to block the shopper: the sweep
    // will catch the stale row.
    if _, err := m.store.RetireBySession(ctx, sessionToken, now); err != nil {
        log.Printf("holds: retire previous hold for session failed: %v", err)
    }

    conflict, err := m.hasOtherLiveHold(ctx, sessionToken, checkIn, checkOut, now)
    if err != nil {
        return nil, err
    }
    if conflict {
        return nil, ErrHoldConflict
    }

    h := &model.BookingHold{
        CheckIn:      checkIn,
        CheckOut:     checkOut,
        SessionToken: sessionToken,
        StillOnHold:  true,
        TimeIsUpAt:   now.Add(m.holdWindow),
        CreatedAt:    now,
        UpdatedAt:    now,
    }
    if err := m.store.Insert(ctx, h); err != nil {
        return nil, err
    }
    return h, nil
}

// Heartbeat sweeps expired holds, then refreshes updated_at on the
// hold if it is still effectively live.  The deadline is never
// moved: heartbeats keep a hold from being presumed abandoned, they
// do not buy more shopping time.  Returns ErrHoldExpired when the
// hold cannot be kept alive so the client stops polling.
func (m *HoldManager) Heartbeat(ctx context.Context, id uint64) error {
    now := m.now()
    m.sweep(ctx, now)

    h, err := m.store.FindByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrHoldNotFound) {
            return ErrHoldExpired
        }
        return err
    }
    if !h.EffectivelyLive(now, m.paymentGrace, m.livenessTimeout) {
        return ErrHoldExpired
    }
    if err := m.store.Touch(ctx, id, now); err != nil {
        if errors.Is(err, repository.ErrHoldNotFound) {
            return ErrHoldExpired
        }
        return err
    }
    return nil
}

// EnterPayment records that the shopper moved into the external
// payment flow, granting the grace window past the original
// deadline.  The hold must still be effectively live.
func (m *HoldManager) EnterPayment(ctx context.Context, id uint64) error {
    now := m.now()
    m.sweep(ctx, now)

    h, err := m.store.FindByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrHoldNotFound) {
            return ErrHoldExpired
        }
        return err
    }
    if !h.EffectivelyLive(now, m.paymentGrace, m.livenessTimeout) {
        return ErrHoldExpired
    }
    if err := m.store.MarkEnteredPayment(ctx, id, now); err != nil {
        if errors.Is(err, repository.ErrHoldNotFound) {
            return ErrHoldExpired
        }
        return err
    }
    return nil
}

// Cancel retires a hold on explicit checkout abandonment.  It is
// idempotent: cancelling twice, or cancelling an unknown hold, is a
// no-op.
func (m *HoldManager) Cancel(ctx context.Context, id uint64) error {
    return m.store.Retire(ctx, id, m.now())
}

// Sweep retires every hold that is past its deadline with no valid
// grace window, or heartbeat-stale, in one pass.  It is folded into
// the heartbeat and create paths rather than scheduled; readers
// applying the effective-liveness predicate make its timing
// irrelevant to correctness.
func (m *HoldManager) Sweep(ctx context.Context) (int64, error) {
    return m.store.SweepExpired(ctx, m.now(), m.paymentGrace, m.livenessTimeout)
}

// HasOtherLiveHold reports whether any session other than the given
// one owns an effectively live hold overlapping [checkIn, checkOut).
// Search uses this read-only: observing a hold never mutates one.
func (m *HoldManager) HasOtherLiveHold(ctx context.Context, sessionToken string, checkIn, checkOut time.Time) (bool, error) {
    return m.hasOtherLiveHold(ctx, sessionToken, availability.Day(checkIn), availability.Day(checkOut), m.now())
}

func (m *HoldManager) hasOtherLiveHold(ctx context.Context, sessionToken string, checkIn, checkOut, now time.Time) (bool, error) {
    holds, err := m.store.LiveOverlapping(ctx, checkIn, checkOut, sessionToken)
    if err != nil {
        return false, err
    }
    for i := range holds {
        if holds[i].EffectivelyLive(now, m.paymentGrace, m.livenessTimeout) {
            return true, nil
        }
    }
    return false, nil
}

// sweep is the best-effort lazy sweep run at the top of read paths.
func (m *HoldManager) sweep(ctx context.Context, now time.Time) {
    if _, err := m.store.SweepExpired(ctx, now, m.paymentGrace, m.livenessTimeout); err != nil {
        log.Printf("holds: expiry sweep failed: %v", err)
    }
}
