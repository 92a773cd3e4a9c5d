package model

import "time"

// Bed is a single physical sleeping place inside a Room.  Beds carry
// two nightly price tiers, one per meal plan.  Like rooms they are
// immutable reference data as far as the booking flow is concerned.
//
// Fields:
//  ID                  – primary key identifier.
//  RoomID              – room to which this bed belongs.
//  Name                – display name shown to guests (e.g. "Letto 3").
//  PriceHalfBoardCents – nightly price with half board, in cents.
//  PriceBedOnlyCents   – nightly price without meals, in cents.
//  CreatedAt           – creation timestamp.
//  UpdatedAt           – last update timestamp.
type Bed struct {
    ID                  uint64    // beds.id
    RoomID              uint64    // beds.room_id
    Name                string    // beds.name
    PriceHalfBoardCents uint32    // beds.price_half_board_cents
    PriceBedOnlyCents   uint32    // beds.price_bed_only_cents
    CreatedAt           time.Time // beds.created_at
    UpdatedAt           time.Time // beds.updated_at
}
