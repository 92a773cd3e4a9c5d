package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/lodge-bed-reservation/internal/availability"
    "github.com/iliyamo/lodge-bed-reservation/internal/model"
)

// InventoryRepo assembles the inventory snapshot the availability
// engine works on: the full room/bed reference data plus every
// reservation overlapping a requested range together with its bed
// assignments and per-night bed blocks.  Cancelled reservations and
// unpaid non-admin ones are filtered out in SQL; the engine
// re-checks the flags defensively.
type InventoryRepo struct {
    db *sql.DB
}

// NewInventoryRepo returns a new InventoryRepo bound to the provided database.
func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// Snapshot loads rooms with their beds and all reservations whose
// stay interval overlaps [from, to) under half-open semantics.
func (r *InventoryRepo) Snapshot(ctx context.Context, from, to time.Time) (availability.Snapshot, error) {
    var snap availability.Snapshot

    rooms, err := r.loadRooms(ctx)
    if err != nil {
        return snap, err
    }
    snap.Rooms = rooms

    reservations, err := r.loadReservations(ctx, from, to)
    if err != nil {
        return snap, err
    }
    snap.Reservations = reservations
    return snap, nil
}

// loadRooms returns all rooms ordered by display_order, each with its
// beds ordered by id.
func (r *InventoryRepo) loadRooms(ctx context.Context) ([]model.Room, error) {
    const roomsQ = `SELECT id, description, display_order, created_at, updated_at
        FROM rooms ORDER BY display_order, id`
    rows, err := r.db.QueryContext(ctx, roomsQ)
    if err != nil {
        return nil, err
    }
    var rooms []model.Room
    index := make(map[uint64]int)
    for rows.Next() {
        var room model.Room
        if err := rows.Scan(&room.ID, &room.Description, &room.DisplayOrder, &room.CreatedAt, &room.UpdatedAt); err != nil {
            rows.Close()
            return nil, err
        }
        index[room.ID] = len(rooms)
        rooms = append(rooms, room)
    }
    if err := rows.Close(); err != nil {
        return nil, err
    }

    const bedsQ = `SELECT id, room_id, name, price_half_board_cents, price_bed_only_cents, created_at, updated_at
        FROM beds ORDER BY room_id, id`
    rows, err = r.db.QueryContext(ctx, bedsQ)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        var bed model.Bed
        if err := rows.Scan(&bed.ID, &bed.RoomID, &bed.Name, &bed.PriceHalfBoardCents, &bed.PriceBedOnlyCents, &bed.CreatedAt, &bed.UpdatedAt); err != nil {
            return nil, err
        }
        if i, ok := index[bed.RoomID]; ok {
            rooms[i].Beds = append(rooms[i].Beds, bed)
        }
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return rooms, nil
}

// loadReservations returns the blocking reservations overlapping
// [from, to) with their assignments and bed blocks attached.
func (r *InventoryRepo) loadReservations(ctx context.Context, from, to time.Time) ([]model.Reservation, error) {
    const q = `SELECT id, day_from, day_to, guest_name, paid, admin_created, cancelled, created_at, updated_at
        FROM reservations
        WHERE cancelled = 0
          AND (paid = 1 OR admin_created = 1)
          AND day_from < ? AND ? < day_to`
    rows, err := r.db.QueryContext(ctx, q, to.Format("2006-01-02"), from.Format("2006-01-02"))
    if err != nil {
        return nil, err
    }
    var reservations []model.Reservation
    index := make(map[uint64]int)
    for rows.Next() {
        var res model.Reservation
        if err := rows.Scan(&res.ID, &res.DayFrom, &res.DayTo, &res.GuestName,
            &res.Paid, &res.AdminCreated, &res.Cancelled, &res.CreatedAt, &res.UpdatedAt); err != nil {
            rows.Close()
            return nil, err
        }
        index[res.ID] = len(reservations)
        reservations = append(reservations, res)
    }
    if err := rows.Close(); err != nil {
        return nil, err
    }
    if len(reservations) == 0 {
        return reservations, nil
    }

    if err := r.attachAssignments(ctx, reservations, index, from, to); err != nil {
        return nil, err
    }
    if err := r.attachBedBlocks(ctx, reservations, index, from, to); err != nil {
        return nil, err
    }
    return reservations, nil
}

func (r *InventoryRepo) attachAssignments(ctx context.Context, reservations []model.Reservation, index map[uint64]int, from, to time.Time) error {
    const q = `SELECT rb.id, rb.reservation_id, rb.bed_id, rb.guest_name
        FROM reservation_beds rb
        JOIN reservations res ON res.id = rb.reservation_id
        WHERE res.cancelled = 0
          AND (res.paid = 1 OR res.admin_created = 1)
          AND res.day_from < ? AND ? < res.day_to`
    rows, err := r.db.QueryContext(ctx, q, to.Format("2006-01-02"), from.Format("2006-01-02"))
    if err != nil {
        return err
    }
    defer rows.Close()
    for rows.Next() {
        var a model.BedAssignment
        if err := rows.Scan(&a.ID, &a.ReservationID, &a.BedID, &a.GuestName); err != nil {
            return err
        }
        if i, ok := index[a.ReservationID]; ok {
            reservations[i].BedAssignments = append(reservations[i].BedAssignments, a)
        }
    }
    return rows.Err()
}

func (r *InventoryRepo) attachBedBlocks(ctx context.Context, reservations []model.Reservation, index map[uint64]int, from, to time.Time) error {
    // Blocks outside the requested night range are irrelevant to the
    // engine, so they are filtered here rather than loaded wholesale.
    const q = `SELECT bb.id, bb.reservation_id, bb.bed_id, bb.night
        FROM reservation_bed_blocks bb
        JOIN reservations res ON res.id = bb.reservation_id
        WHERE res.cancelled = 0
          AND (res.paid = 1 OR res.admin_created = 1)
          AND bb.night >= ? AND bb.night < ?`
    rows, err := r.db.QueryContext(ctx, q, from.Format("2006-01-02"), to.Format("2006-01-02"))
    if err != nil {
        return err
    }
    defer rows.Close()
    for rows.Next() {
        var b model.BedBlock
        if err := rows.Scan(&b.ID, &b.ReservationID, &b.BedID, &b.Night); err != nil {
            return err
        }
        if i, ok := index[b.ReservationID]; ok {
            reservations[i].BedBlocks = append(reservations[i].BedBlocks, b)
        }
    }
    return rows.Err()
}
