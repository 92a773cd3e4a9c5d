package model

import "time"

// Reservation records a confirmed booking for a stay interval
// [DayFrom, DayTo).  The checkout day is exclusive: a guest leaving
// on DayTo does not occupy a bed on the night of DayTo.  A
// reservation only blocks beds once it has been paid or was created
// by an administrator, and it is permanently excluded from
// availability once cancelled.
//
// Fields:
//  ID             – primary key identifier.
//  DayFrom        – first occupied night (inclusive).
//  DayTo          – checkout day (exclusive).
//  GuestName      – name of the lead guest.
//  Guests         – guest manifest as submitted at checkout.
//  Paid           – whether payment has been captured.
//  AdminCreated   – whether an administrator entered the booking.
//  Cancelled      – whether the reservation has been cancelled.
//  BedAssignments – one entry per guest, each naming one bed.
//  BedBlocks      – per-night privacy/cleaning blocks on specific beds.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Reservation struct {
    ID             uint64          // reservations.id
    DayFrom        time.Time       // reservations.day_from (DATE)
    DayTo          time.Time       // reservations.day_to (DATE, exclusive)
    GuestName      string          // reservations.guest_name
    Guests         []GuestCount    // reservation_guest_counts rows
    Paid           bool            // reservations.paid
    AdminCreated   bool            // reservations.admin_created
    Cancelled      bool            // reservations.cancelled
    BedAssignments []BedAssignment // reservation_beds rows
    BedBlocks      []BedBlock      // reservation_bed_blocks rows
    CreatedAt      time.Time       // reservations.created_at
    UpdatedAt      time.Time       // reservations.updated_at
}

// BedAssignment links one guest of a reservation to exactly one bed
// for the whole stay interval of the reservation.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – owning reservation.
//  BedID         – bed occupied by this guest.
//  GuestName     – guest occupying the bed.
type BedAssignment struct {
    ID            uint64 // reservation_beds.id
    ReservationID uint64 // reservation_beds.reservation_id
    BedID         uint64 // reservation_beds.bed_id
    GuestName     string // reservation_beds.guest_name
}

// BedBlock marks a single bed as occupied on a single calendar night
// for reasons other than a guest sleeping in it, typically privacy
// buffers (a lone guest in a shared room) or cleaning days.  Blocks
// are stored alongside the reservation that caused them.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reservation this block belongs to.
//  BedID         – bed taken out of inventory.
//  Night         – the single calendar night that is blocked.
type BedBlock struct {
    ID            uint64    // reservation_bed_blocks.id
    ReservationID uint64    // reservation_bed_blocks.reservation_id
    BedID         uint64    // reservation_bed_blocks.bed_id
    Night         time.Time // reservation_bed_blocks.night (DATE)
}

// Occupies reports whether this reservation blocks beds on the given
// night.  Cancelled reservations never occupy anything; unpaid
// reservations only count when an administrator created them.  The
// checkout day is exclusive per the half-open stay interval.
func (r *Reservation) Occupies(night time.Time) bool {
    if r.Cancelled {
        return false
    }
    if !r.Paid && !r.AdminCreated {
        return false
    }
    return !night.Before(r.DayFrom) && night.Before(r.DayTo)
}
