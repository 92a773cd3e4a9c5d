package model

import "time"

// Room groups the physical beds of the lodge that share one door.
// Rooms are reference data: administrators create and edit them,
// the booking flow only reads them.  DisplayOrder controls how
// rooms are sorted on the public availability pages.
//
// Fields:
//  ID           – primary key identifier.
//  Description  – human readable room description.
//  DisplayOrder – sort key for presentation (ascending).
//  Beds         – beds belonging to this room, loaded by the repository.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Room struct {
    ID           uint64    // rooms.id
    Description  string    // rooms.description
    DisplayOrder uint32    // rooms.display_order
    Beds         []Bed     // beds with beds.room_id = rooms.id
    CreatedAt    time.Time // rooms.created_at
    UpdatedAt    time.Time // rooms.updated_at
}
