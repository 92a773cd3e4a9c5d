// Package availability computes which beds are free for a requested
// stay.  It is pure computation over an inventory snapshot: all
// calendar logic works on local calendar days (no timezone, no
// instants) and all stay intervals are half-open [checkIn, checkOut)
// with the checkout night excluded from occupancy.
package availability

import (
    "errors"
    "strconv"
    "time"

    "github.com/iliyamo/lodge-bed-reservation/internal/model"
)

// DayFormat is the wire and map-key format for calendar days.
const DayFormat = "2006-01-02"

// Verdict statuses returned by Compute.  TooLittleStatus builds the
// parameterised "too_little_availability:<n>" form.
const (
    StatusEnough  = "enough"
    StatusSoldOut = "sold_out"

    tooLittlePrefix = "too_little_availability:"
)

// ErrInvalidStay is returned when the requested interval contains no
// nights, i.e. checkOut is not strictly after checkIn.
var ErrInvalidStay = errors.New("stay must contain at least one night")

// TooLittleStatus formats the verdict for the case where some beds
// are free but fewer than the requested guest count.
func TooLittleStatus(freeBeds int) string {
    return tooLittlePrefix + strconv.Itoa(freeBeds)
}

// Snapshot is the inventory input to the engine: the full bed/room
// reference data plus every reservation whose stay interval overlaps
// the requested range.  The provider is expected to pre-filter
// cancelled and unpaid non-admin reservations, but the engine
// re-checks those flags so a wider snapshot cannot corrupt the
// verdict.
type Snapshot struct {
    Rooms        []model.Room
    Reservations []model.Reservation
}

// RoomAvailability describes one room in the whole-stay verdict: the
// full bed list for display and the subset free across every night
// of the stay for assignment.
type RoomAvailability struct {
    Room     model.Room
    FreeBeds []model.Bed
}

// NightRoom is one room's per-night bed states inside a NightBreakdown.
type NightRoom struct {
    RoomID uint64
    Beds   []NightBed
}

// NightBed annotates a bed with its availability on a single night.
type NightBed struct {
    Bed  model.Bed
    Free bool
}

// NightBreakdown lists, for one night of the stay, every room's full
// bed list with per-night availability.  This is display data for
// calendars and is deliberately not filtered by the whole-stay
// intersection.
type NightBreakdown struct {
    Night time.Time
    Rooms []NightRoom
}

// Result is the full output of Compute.
//
// Rooms contains only eligible rooms (at least one bed free for the
// whole stay) and is meaningful for every status: empty for
// sold_out, partial for too_little_availability.  Nights always
// covers every night of the requested interval.
type Result struct {
    Status   string
    FreeBeds int
    Rooms    []RoomAvailability
    Nights   []NightBreakdown
}

// Day truncates a timestamp to its calendar day.  All engine
// comparisons go through this so that wall-clock components can
// never influence night arithmetic.
func Day(t time.Time) time.Time {
    y, m, d := t.Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights enumerates the occupied nights of [checkIn, checkOut): every
// day from checkIn up to but excluding checkOut.  An empty slice is
// returned when the interval contains no nights.
func Nights(checkIn, checkOut time.Time) []time.Time {
    from, to := Day(checkIn), Day(checkOut)
    var nights []time.Time
    for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
        nights = append(nights, d)
    }
    return nights
}

// Compute turns a snapshot plus a stay request into the availability
// verdict.  totalGuests is the summed guest manifest; it decides the
// enough / too_little_availability split.
//
// A bed is free for the whole stay only when it is unoccupied on
// every single night of the interval: one occupied night disqualifies
// it entirely.  A reservation abutting the request (its checkout day
// equals the requested check-in, or vice versa) never conflicts.
func Compute(snap Snapshot, checkIn, checkOut time.Time, totalGuests int) (*Result, error) {
    nights := Nights(checkIn, checkOut)
    if len(nights) == 0 {
        return nil, ErrInvalidStay
    }

    occupied := occupiedByNight(snap.Reservations, nights)

    res := &Result{Nights: make([]NightBreakdown, 0, len(nights))}

    // Whole-stay intersection per room.
    for _, room := range snap.Rooms {
        free := make([]model.Bed, 0, len(room.Beds))
        for _, bed := range room.Beds {
            if bedFreeAllNights(occupied, nights, bed.ID) {
                free = append(free, bed)
            }
        }
        res.FreeBeds += len(free)
        if len(free) > 0 {
            res.Rooms = append(res.Rooms, RoomAvailability{Room: room, FreeBeds: free})
        }
    }

    // Per-night breakdown, independent of the whole-stay filter.
    for _, night := range nights {
        taken := occupied[dayKey(night)]
        nb := NightBreakdown{Night: night, Rooms: make([]NightRoom, 0, len(snap.Rooms))}
        for _, room := range snap.Rooms {
            nr := NightRoom{RoomID: room.ID, Beds: make([]NightBed, 0, len(room.Beds))}
            for _, bed := range room.Beds {
                _, isTaken := taken[bed.ID]
                nr.Beds = append(nr.Beds, NightBed{Bed: bed, Free: !isTaken})
            }
            nb.Rooms = append(nb.Rooms, nr)
        }
        res.Nights = append(res.Nights, nb)
    }

    switch {
    case res.FreeBeds == 0:
        res.Status = StatusSoldOut
    case res.FreeBeds < totalGuests:
        res.Status = TooLittleStatus(res.FreeBeds)
    default:
        res.Status = StatusEnough
    }
    return res, nil
}

func dayKey(t time.Time) string { return Day(t).Format(DayFormat) }

// occupiedByNight builds, for every requested night, the set of bed
// IDs taken on that night: beds assigned to guests of a reservation
// covering the night, plus beds named by a bed block falling on it.
func occupiedByNight(reservations []model.Reservation, nights []time.Time) map[string]map[uint64]struct{} {
    occ := make(map[string]map[uint64]struct{}, len(nights))
    for _, n := range nights {
        occ[dayKey(n)] = make(map[uint64]struct{})
    }
    for i := range reservations {
        r := &reservations[i]
        if r.Cancelled || (!r.Paid && !r.AdminCreated) {
            continue
        }
        for _, n := range nights {
            if !r.Occupies(n) {
                continue
            }
            set := occ[dayKey(n)]
            for _, a := range r.BedAssignments {
                set[a.BedID] = struct{}{}
            }
        }
        for _, b := range r.BedBlocks {
            if set, ok := occ[dayKey(b.Night)]; ok {
                set[b.BedID] = struct{}{}
            }
        }
    }
    return occ
}

func bedFreeAllNights(occ map[string]map[uint64]struct{}, nights []time.Time, bedID uint64) bool {
    for _, n := range nights {
        if _, taken := occ[dayKey(n)][bedID]; taken {
            return false
        }
    }
    return true
}
