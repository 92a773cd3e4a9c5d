package model

// GuestCount is one line of a guest manifest: how many guests of a
// given type (adult, child, ...) a stay request is for.  The booking
// core only cares about the total; the types are carried through for
// pricing and display done elsewhere.
type GuestCount struct {
    Type  string `json:"type"`
    Count int    `json:"count"`
}

// TotalGuests sums the counts of a manifest.  Negative counts are
// ignored so a malformed line cannot lower the total.
func TotalGuests(manifest []GuestCount) int {
    total := 0
    for _, g := range manifest {
        if g.Count > 0 {
            total += g.Count
        }
    }
    return total
}
