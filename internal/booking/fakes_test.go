package booking

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/lodge-bed-reservation/internal/availability"
	"github.com/iliyamo/lodge-bed-reservation/internal/model"
	"github.com/iliyamo/lodge-bed-reservation/internal/repository"
)

// fakeClock is a manually advanced time source for the hold manager.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock { return &fakeClock{now: start} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeHoldStore is an in-memory HoldStore mirroring the SQL
// semantics of repository.HoldRepo: conditional updates only touch
// rows whose flag is still set, and the sweep applies the same
// predicate as the database UPDATE.
type fakeHoldStore struct {
	mu     sync.Mutex
	nextID uint64
	holds  map[uint64]*model.BookingHold

	insertErr error // returned by Insert when set
	retireErr error // returned by RetireBySession when set

	writes int // counts every mutating call, for read-only assertions
}

func newFakeHoldStore() *fakeHoldStore {
	return &fakeHoldStore{holds: map[uint64]*model.BookingHold{}}
}

func (s *fakeHoldStore) Insert(ctx context.Context, h *model.BookingHold) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.writes++
	s.nextID++
	h.ID = s.nextID
	cp := *h
	s.holds[h.ID] = &cp
	return nil
}

func (s *fakeHoldStore) FindByID(ctx context.Context, id uint64) (*model.BookingHold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holds[id]
	if !ok {
		return nil, repository.ErrHoldNotFound
	}
	cp := *h
	return &cp, nil
}

func (s *fakeHoldStore) LiveOverlapping(ctx context.Context, checkIn, checkOut time.Time, excludeSession string) ([]model.BookingHold, error) {
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

func (s *fakeHoldStore) RetireBySession(ctx context.Context, sessionToken string, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.retireErr != nil {
		return 0, s.retireErr
	}
	var n int64
	for _, h := range s.holds {
		if h.SessionToken == sessionToken && h.StillOnHold {
			h.StillOnHold = false
			h.UpdatedAt = now
			n++
		}
	}
	if n > 0 {
		s.writes++
	}
	return n, nil
}

func (s *fakeHoldStore) Retire(ctx context.Context, id uint64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.holds[id]; ok && h.StillOnHold {
		h.StillOnHold = false
		h.UpdatedAt = now
		s.writes++
	}
	return nil
}

func (s *fakeHoldStore) Touch(ctx context.Context, id uint64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holds[id]
	if !ok || !h.StillOnHold {
		return repository.ErrHoldNotFound
	}
	h.UpdatedAt = now
	s.writes++
	return nil
}

func (s *fakeHoldStore) MarkEnteredPayment(ctx context.Context, id uint64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holds[id]
	if !ok || !h.StillOnHold {
		return repository.ErrHoldNotFound
	}
	t := now
	h.EnteredPaymentAt = &t
	h.UpdatedAt = now
	s.writes++
	return nil
}

func (s *fakeHoldStore) SweepExpired(ctx context.Context, now time.Time, paymentGrace, livenessTimeout time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, h := range s.holds {
		if h.StillOnHold && !h.EffectivelyLive(now, paymentGrace, livenessTimeout) {
			h.StillOnHold = false
			n++
		}
	}
	if n > 0 {
		s.writes++
	}
	return n, nil
}

// get returns the stored hold (not a copy) for assertions.
func (s *fakeHoldStore) get(id uint64) *model.BookingHold {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holds[id]
}

// fakeBlockedDates serves a fixed set of blocked days.
type fakeBlockedDates struct {
	days []model.BlockedDate
}

func (f *fakeBlockedDates) ListBetween(ctx context.Context, from, to time.Time) ([]model.BlockedDate, error) {
	var out []model.BlockedDate
	for _, d := range f.days {
		day := availability.Day(d.Day)
		if !day.Before(from) && day.Before(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

// fakeInventory serves a fixed snapshot regardless of range.
type fakeInventory struct {
	snap availability.Snapshot
}

func (f *fakeInventory) Snapshot(ctx context.Context, from, to time.Time) (availability.Snapshot, error) {
	return f.snap, nil
}
