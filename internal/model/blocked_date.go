package model

import "time"

// BlockedDate is a single calendar date administratively closed for
// check-in/check-out.  Blocked dates are independent of reservations
// and are matched against the night range of a candidate stay
// (check-in inclusive, check-out exclusive).
//
// Fields:
//  ID        – primary key identifier.
//  Day       – the closed calendar date.
//  CreatedAt – creation timestamp.
type BlockedDate struct {
    ID        uint64    // blocked_dates.id
    Day       time.Time // blocked_dates.day (DATE)
    CreatedAt time.Time // blocked_dates.created_at
}
