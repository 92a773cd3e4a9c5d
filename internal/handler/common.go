package handler // handler defines http handlers

import (
    "time"

    "github.com/iliyamo/lodge-bed-reservation/internal/availability"
    "github.com/iliyamo/lodge-bed-reservation/internal/model"
    "github.com/labstack/echo/v4"
)

// parseDay parses a calendar day in 2006-01-02 form into a
// day-truncated UTC time. All stay boundaries arrive in this format.
func parseDay(s string) (time.Time, error) {
    t, err := time.Parse(availability.DayFormat, s)
    if err != nil {
        return time.Time{}, err
    }
    return availability.Day(t), nil
}

// dayString renders a calendar day back into wire format.
func dayString(t time.Time) string {
    return availability.Day(t).Format(availability.DayFormat)
}

// bedJSON shapes one bed for responses, carrying both nightly price tiers.
func bedJSON(b model.Bed) echo.Map {
    return echo.Map{
        "id":                     b.ID,
        "name":                   b.Name,
        "price_half_board_cents": b.PriceHalfBoardCents,
        "price_bed_only_cents":   b.PriceBedOnlyCents,
    }
}

// nightsJSON shapes the per-night, per-room breakdown for calendar display.
func nightsJSON(nights []availability.NightBreakdown) []echo.Map {
    out := make([]echo.Map, 0, len(nights))
    for _, nb := range nights {
        rooms := make([]echo.Map, 0, len(nb.Rooms))
        for _, nr := range nb.Rooms {
            beds := make([]echo.Map, 0, len(nr.Beds))
            for _, b := range nr.Beds {
                m := bedJSON(b.Bed)
                m["free"] = b.Free
                beds = append(beds, m)
            }
            rooms = append(rooms, echo.Map{"room_id": nr.RoomID, "beds": beds})
        }
        out = append(out, echo.Map{"night": dayString(nb.Night), "rooms": rooms})
    }
    return out
}
