package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/lodge-bed-reservation/internal/availability"
	"github.com/iliyamo/lodge-bed-reservation/internal/booking"
	"github.com/iliyamo/lodge-bed-reservation/internal/middleware"
	"github.com/iliyamo/lodge-bed-reservation/internal/model"
	"github.com/iliyamo/lodge-bed-reservation/internal/repository"
)

// memHoldStore is a minimal in-memory booking.HoldStore for
// exercising the HTTP surface end to end without MySQL.
type memHoldStore struct {
	mu     sync.Mutex
	nextID uint64
	holds  map[uint64]*model.BookingHold
}

func newMemHoldStore() *memHoldStore {
	return &memHoldStore{holds: map[uint64]*model.BookingHold{}}
}

func (s *memHoldStore) Insert(ctx context.Context, h *model.BookingHold) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	h.ID = s.nextID
	cp := *h
	s.holds[h.ID] = &cp
	return nil
}

func (s *memHoldStore) FindByID(ctx context.Context, id uint64) (*model.BookingHold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holds[id]
	if !ok {
		return nil, repository.ErrHoldNotFound
	}
	cp := *h
	return &cp, nil
}

func (s *memHoldStore) LiveOverlapping(ctx context.Context, checkIn, checkOut time.Time, excludeSession string) ([]model.BookingHold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.BookingHold
	for _, h := range s.holds {
		if h.StillOnHold && h.SessionToken != excludeSession && h.Overlaps(checkIn, checkOut) {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (s *memHoldStore) RetireBySession(ctx context.Context, sessionToken string, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, h := range s.holds {
		if h.SessionToken == sessionToken && h.StillOnHold {
			h.StillOnHold = false
			h.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (s *memHoldStore) Retire(ctx context.Context, id uint64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.holds[id]; ok && h.StillOnHold {
		h.StillOnHold = false
		h.UpdatedAt = now
	}
	return nil
}

func (s *memHoldStore) Touch(ctx context.Context, id uint64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holds[id]
	if !ok || !h.StillOnHold {
		return repository.ErrHoldNotFound
	}
	h.UpdatedAt = now
	return nil
}

func (s *memHoldStore) MarkEnteredPayment(ctx context.Context, id uint64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holds[id]
	if !ok || !h.StillOnHold {
		return repository.ErrHoldNotFound
	}
	t := now
	h.EnteredPaymentAt = &t
	h.UpdatedAt = now
	return nil
}

func (s *memHoldStore) SweepExpired(ctx context.Context, now time.Time, paymentGrace, livenessTimeout time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, h := range s.holds {
		if h.StillOnHold && !h.EffectivelyLive(now, paymentGrace, livenessTimeout) {
			h.StillOnHold = false
			n++
		}
	}
	return n, nil
}

type memBlockedDates struct{ days []model.BlockedDate }

func (f *memBlockedDates) ListBetween(ctx context.Context, from, to time.Time) ([]model.BlockedDate, error) {
	var out []model.BlockedDate
	for _, d := range f.days {
		day := availability.Day(d.Day)
		if !day.Before(from) && day.Before(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

type memInventory struct{ snap availability.Snapshot }

func (f *memInventory) Snapshot(ctx context.Context, from, to time.Time) (availability.Snapshot, error) {
	return f.snap, nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	echo  *echo.Echo
	clock *testClock
	store *memHoldStore
}

func newTestServer(t *testing.T, blocked *memBlockedDates) *testServer {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := newMemHoldStore()

	snap := availability.Snapshot{
		Rooms: []model.Room{
			{
				ID:          1,
				Description: "Camera 1",
				Beds: []model.Bed{
					{ID: 1, RoomID: 1, Name: "Letto 1"},
					{ID: 2, RoomID: 1, Name: "Letto 2"},
				},
			},
		},
	}

	holds := booking.NewHoldManager(store, booking.WithClock(clock.Now))
	search := booking.NewSearch(blocked, &memInventory{snap: snap}, holds)

	availabilityHandler := NewAvailabilityHandler(search)
	holdHandler := &HoldHandler{Holds: holds} // nil Publish: no broker in tests

	e := echo.New()
	v1 := e.Group("/v1", middleware.EnsureSession())
	v1.POST("/availability", availabilityHandler.QueryAvailability)
	v1.GET("/calendar", availabilityHandler.GetCalendar)
	v1.POST("/holds", holdHandler.CreateHold)
	v1.POST("/holds/:id/heartbeat", holdHandler.HeartbeatHold)
	v1.POST("/holds/:id", holdHandler.TransitionHold)

	return &testServer{echo: e, clock: clock, store: store}
}

// do issues a request as the given session and decodes the JSON body.
func (s *testServer) do(t *testing.T, method, target, session string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if session != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: session})
	}
	w := httptest.NewRecorder()
	s.echo.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func stay(checkIn, checkOut string) map[string]any {
	return map[string]any{"check_in": checkIn, "check_out": checkOut}
}

func searchBody(checkIn, checkOut string, guests int) map[string]any {
	m := stay(checkIn, checkOut)
	m["guests"] = []map[string]any{{"type": "adult", "count": guests}}
	return m
}

func TestQueryAvailability_OK(t *testing.T) {
	s := newTestServer(t, &memBlockedDates{})

	code, resp := s.do(t, http.MethodPost, "/v1/availability", "session-a", searchBody("2025-07-01", "2025-07-05", 2))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["available"])
	assert.Equal(t, "enough", resp["status"])
	assert.Equal(t, float64(2), resp["free_beds"])
}

func TestQueryAvailability_BadDates(t *testing.T) {
	s := newTestServer(t, &memBlockedDates{})

	code, _ := s.do(t, http.MethodPost, "/v1/availability", "session-a", searchBody("not-a-date", "2025-07-05", 2))
	assert.Equal(t, http.StatusBadRequest, code)

	// check_out on or before check_in
	code, _ = s.do(t, http.MethodPost, "/v1/availability", "session-a", searchBody("2025-07-05", "2025-07-05", 2))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestQueryAvailability_MissingGuests(t *testing.T) {
	s := newTestServer(t, &memBlockedDates{})

	code, _ := s.do(t, http.MethodPost, "/v1/availability", "session-a", stay("2025-07-01", "2025-07-05"))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestQueryAvailability_BlockedDays(t *testing.T) {
	blocked := &memBlockedDates{days: []model.BlockedDate{{ID: 1, Day: time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)}}}
	s := newTestServer(t, blocked)

	code, resp := s.do(t, http.MethodPost, "/v1/availability", "session-a", searchBody("2025-07-01", "2025-07-05", 1))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, resp["available"])
	assert.Equal(t, booking.ReasonBlockedDays, resp["reason"])
	assert.Equal(t, []any{"2025-07-03"}, resp["blocked_days"])
}

func TestQueryAvailability_BookingInProgress(t *testing.T) {
	s := newTestServer(t, &memBlockedDates{})

	code, resp := s.do(t, http.MethodPost, "/v1/holds", "session-a", stay("2025-07-01", "2025-07-05"))
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, true, resp["available"])

	code, resp = s.do(t, http.MethodPost, "/v1/availability", "session-b", searchBody("2025-07-03", "2025-07-06", 1))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, resp["available"])
	assert.Equal(t, booking.ReasonBookingInProgress, resp["reason"])
}

func TestCreateHold_ConflictIsStructured(t *testing.T) {
	s := newTestServer(t, &memBlockedDates{})

	code, resp := s.do(t, http.MethodPost, "/v1/holds", "session-a", stay("2025-07-01", "2025-07-05"))
	require.Equal(t, http.StatusCreated, code)
	assert.NotZero(t, resp["booking_id"])

	// Contention is a 200 with a reason, never a 5xx.
	code, resp = s.do(t, http.MethodPost, "/v1/holds", "session-b", stay("2025-07-03", "2025-07-06"))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, resp["available"])
	assert.Equal(t, booking.ReasonBookingInProgress, resp["reason"])
}

func TestHeartbeat_ValidThenExpired(t *testing.T) {
	s := newTestServer(t, &memBlockedDates{})

	code, resp := s.do(t, http.MethodPost, "/v1/holds", "session-a", stay("2025-07-01", "2025-07-05"))
	require.Equal(t, http.StatusCreated, code)
	id := resp["booking_id"].(float64)
	target := "/v1/holds/" + jsonNumber(id) + "/heartbeat"

	code, resp = s.do(t, http.MethodPost, target, "session-a", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["valid"])

	s.clock.Advance(booking.DefaultHoldWindow + time.Minute)

	code, resp = s.do(t, http.MethodPost, target, "session-a", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, resp["valid"])
	assert.Equal(t, "BOOKING_EXPIRED", resp["reason"])
}

func TestHeartbeat_BadID(t *testing.T) {
	s := newTestServer(t, &memBlockedDates{})
	code, _ := s.do(t, http.MethodPost, "/v1/holds/abc/heartbeat", "session-a", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestTransition_EnterPaymentAndCancel(t *testing.T) {
	s := newTestServer(t, &memBlockedDates{})

	code, resp := s.do(t, http.MethodPost, "/v1/holds", "session-a", stay("2025-07-01", "2025-07-05"))
	require.Equal(t, http.StatusCreated, code)
	target := "/v1/holds/" + jsonNumber(resp["booking_id"].(float64))

	code, resp = s.do(t, http.MethodPost, target, "session-a", map[string]any{"action": "ENTER_PAYMENT"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["valid"])

	code, resp = s.do(t, http.MethodPost, target, "session-a", map[string]any{"action": "CANCEL"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["cancelled"])

	// The retired hold no longer blocks anyone.
	code, resp = s.do(t, http.MethodPost, "/v1/holds", "session-b", stay("2025-07-01", "2025-07-05"))
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, true, resp["available"])
}

func TestTransition_UnknownAction(t *testing.T) {
	s := newTestServer(t, &memBlockedDates{})

	code, resp := s.do(t, http.MethodPost, "/v1/holds", "session-a", stay("2025-07-01", "2025-07-05"))
	require.Equal(t, http.StatusCreated, code)
	target := "/v1/holds/" + jsonNumber(resp["booking_id"].(float64))

	code, _ = s.do(t, http.MethodPost, target, "session-a", map[string]any{"action": "PAY_NOW"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetCalendar(t *testing.T) {
	s := newTestServer(t, &memBlockedDates{})

	code, resp := s.do(t, http.MethodGet, "/v1/calendar?from=2025-07-01&to=2025-07-04", "session-a", nil)
	assert.Equal(t, http.StatusOK, code)
	nights, ok := resp["nights"].([]any)
	require.True(t, ok)
	assert.Len(t, nights, 3)

	code, _ = s.do(t, http.MethodGet, "/v1/calendar?from=2025-07-04&to=2025-07-01", "session-a", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func jsonNumber(f float64) string {
	return strconv.FormatUint(uint64(f), 10)
}
