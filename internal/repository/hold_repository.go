package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/lodge-bed-reservation/internal/model"
)

// HoldRepo provides data access to the booking_holds table.  All
// methods operate on UTC timestamps and DATE-granularity stay
// intervals; callers must pass day-truncated check-in/check-out
// values.  The repository performs only narrow, per-row idempotent
// operations (insert, conditional update, predicate read) — no
// multi-statement transactions, so no request ever holds a lock.
type HoldRepo struct {
    db *sql.DB
}

// NewHoldRepo returns a new HoldRepo bound to the provided database.
func NewHoldRepo(db *sql.DB) *HoldRepo { return &HoldRepo{db: db} }

const holdColumns = `id, check_in, check_out, session_token, still_on_hold,
       time_is_up_at, entered_payment_at, created_at, updated_at`

// Insert persists a new hold and fills in its generated identifier.
// CheckIn/CheckOut are stored as DATE, the rest as DATETIME in UTC.
func (r *HoldRepo) Insert(ctx context.Context, h *model.BookingHold) error {
    const q = `INSERT INTO booking_holds
        (check_in, check_out, session_token, still_on_hold, time_is_up_at, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q,
        h.CheckIn.Format("2006-01-02"),
        h.CheckOut.Format("2006-01-02"),
        h.SessionToken,
        h.StillOnHold,
        h.TimeIsUpAt.UTC(),
        h.CreatedAt.UTC(),
        h.UpdatedAt.UTC(),
    )
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    h.ID = uint64(id)
    return nil
}

// FindByID loads a single hold.  Returns ErrHoldNotFound when no row
// exists for the identifier.
func (r *HoldRepo) FindByID(ctx context.Context, id uint64) (*model.BookingHold, error) {
    const q = `SELECT ` + holdColumns + ` FROM booking_holds WHERE id = ?`
    var h model.BookingHold
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &h.ID, &h.CheckIn, &h.CheckOut, &h.SessionToken, &h.StillOnHold,
        &h.TimeIsUpAt, &h.EnteredPaymentAt, &h.CreatedAt, &h.UpdatedAt,
    )
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrHoldNotFound
    }
    if err != nil {
        return nil, err
    }
    return &h, nil
}

// LiveOverlapping returns every hold whose stored flag is still set,
// whose interval overlaps [checkIn, checkOut) under half-open
// semantics and that belongs to a different session than
// excludeSession.  Callers must still apply the effective-liveness
// predicate to the returned rows: the sweep is lazy, so a stored
// flag alone proves nothing.
func (r *HoldRepo) LiveOverlapping(ctx context.Context, checkIn, checkOut time.Time, excludeSession string) ([]model.BookingHold, error) {
    const q = `SELECT ` + holdColumns + `
        FROM booking_holds
        WHERE still_on_hold = 1
          AND check_in < ? AND ? < check_out
          AND session_token <> ?`
    rows, err := r.db.QueryContext(ctx, q,
        checkOut.Format("2006-01-02"),
        checkIn.Format("2006-01-02"),
        excludeSession,
    )
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var holds []model.BookingHold
    for rows.Next() {
        var h model.BookingHold
        if err := rows.Scan(
            &h.ID, &h.CheckIn, &h.CheckOut, &h.SessionToken, &h.StillOnHold,
            &h.TimeIsUpAt, &h.EnteredPaymentAt, &h.CreatedAt, &h.UpdatedAt,
        ); err != nil {
            return nil, err
        }
        holds = append(holds, h)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return holds, nil
}

// RetireBySession flips still_on_hold off for every live hold owned
// by the session and returns how many rows were affected.  Used when
// a session starts a new hold: one active intent per session.
func (r *HoldRepo) RetireBySession(ctx context.Context, sessionToken string, now time.Time) (int64, error) {
    const q = `UPDATE booking_holds
        SET still_on_hold = 0, updated_at = ?
        WHERE session_token = ? AND still_on_hold = 1`
    res, err := r.db.ExecContext(ctx, q, now.UTC(), sessionToken)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// Retire flips still_on_hold off for one hold.  It is idempotent:
// retiring an already retired or missing hold affects zero rows and
// is not an error.
func (r *HoldRepo) Retire(ctx context.Context, id uint64, now time.Time) error {
    const q = `UPDATE booking_holds
        SET still_on_hold = 0, updated_at = ?
        WHERE id = ? AND still_on_hold = 1`
    _, err := r.db.ExecContext(ctx, q, now.UTC(), id)
    return err
}

// Touch refreshes updated_at for a hold whose flag is still set.
// Returns ErrHoldNotFound when no live row matched, so a heartbeat
// can never revive a retired hold.
func (r *HoldRepo) Touch(ctx context.Context, id uint64, now time.Time) error {
    const q = `UPDATE booking_holds
        SET updated_at = ?
        WHERE id = ? AND still_on_hold = 1`
    res, err := r.db.ExecContext(ctx, q, now.UTC(), id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrHoldNotFound
    }
    return nil
}

// MarkEnteredPayment records the payment-entry timestamp on a live
// hold, keeping still_on_hold set.  Returns ErrHoldNotFound when the
// hold is missing or already retired.
func (r *HoldRepo) MarkEnteredPayment(ctx context.Context, id uint64, now time.Time) error {
    const q = `UPDATE booking_holds
        SET entered_payment_at = ?, updated_at = ?
        WHERE id = ? AND still_on_hold = 1`
    res, err := r.db.ExecContext(ctx, q, now.UTC(), now.UTC(), id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrHoldNotFound
    }
    return nil
}

// SweepExpired flips still_on_hold off, in one pass, for every hold
// whose deadline has passed with no valid payment grace window or
// whose last heartbeat is older than the liveness timeout.  Returns
// the number of holds retired.  The sweep mirrors the Go-side
// effective-liveness predicate exactly; readers never rely on it
// having run.
func (r *HoldRepo) SweepExpired(ctx context.Context, now time.Time, paymentGrace, livenessTimeout time.Duration) (int64, error) {
    const q = `UPDATE booking_holds
        SET still_on_hold = 0
        WHERE still_on_hold = 1
          AND (
            (time_is_up_at <= ?
             AND (entered_payment_at IS NULL
                  OR DATE_ADD(entered_payment_at, INTERVAL ? SECOND) <= ?))
            OR updated_at <= ?
          )`
    nowUTC := now.UTC()
    res, err := r.db.ExecContext(ctx, q,
        nowUTC,
        int64(paymentGrace/time.Second),
        nowUTC,
        nowUTC.Add(-livenessTimeout),
    )
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
