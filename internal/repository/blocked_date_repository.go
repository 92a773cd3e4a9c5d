package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/lodge-bed-reservation/internal/model"
)

// BlockedDateRepo provides data access to the blocked_dates table:
// single calendar dates administratively closed for check-in and
// check-out.  The booking core only reads it; the admin surface
// inserts and deletes rows.
type BlockedDateRepo struct {
    db *sql.DB
}

// NewBlockedDateRepo returns a new BlockedDateRepo bound to the provided database.
func NewBlockedDateRepo(db *sql.DB) *BlockedDateRepo { return &BlockedDateRepo{db: db} }

// ListBetween returns the blocked dates falling inside the night
// range [from, to), ordered by day.  The checkout day is exclusive,
// matching how blocked days are checked against a candidate stay.
func (r *BlockedDateRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.BlockedDate, error) {
    const q = `SELECT id, day, created_at FROM blocked_dates
        WHERE day >= ? AND day < ? ORDER BY day`
    rows, err := r.db.QueryContext(ctx, q, from.Format("2006-01-02"), to.Format("2006-01-02"))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var days []model.BlockedDate
    for rows.Next() {
        var d model.BlockedDate
        if err := rows.Scan(&d.ID, &d.Day, &d.CreatedAt); err != nil {
            return nil, err
        }
        days = append(days, d)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return days, nil
}

// Insert closes a calendar date.  Returns ErrConflict when the date
// is already blocked (the table has a unique index on day).
func (r *BlockedDateRepo) Insert(ctx context.Context, day time.Time) (*model.BlockedDate, error) {
    const q = `INSERT IGNORE INTO blocked_dates (day) VALUES (?)`
    res, err := r.db.ExecContext(ctx, q, day.Format("2006-01-02"))
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    if n == 0 {
        return nil, ErrConflict
    }
    id, err := res.LastInsertId()
    if err != nil {
        return nil, err
    }
    return &model.BlockedDate{ID: uint64(id), Day: day}, nil
}

// Delete reopens a calendar date.  Deleting a date that is not
// blocked affects zero rows and is not an error.
func (r *BlockedDateRepo) Delete(ctx context.Context, day time.Time) error {
    const q = `DELETE FROM blocked_dates WHERE day = ?`
    _, err := r.db.ExecContext(ctx, q, day.Format("2006-01-02"))
    return err
}
