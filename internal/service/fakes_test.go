package service

import (
	"context"
	"sync"
	"time"

	"github.com/panemexpress/rail-booking/internal/model"
	"github.com/panemexpress/rail-booking/internal/repository"
)

type fakeRoutes map[uint64]model.Route

func (f fakeRoutes) ListAll(ctx context.Context) ([]model.Route, error) {
	out := make([]model.Route, 0, len(f))
	for _, r := range f {
		out = append(out, r)
	}
	return out, nil
}

func (f fakeRoutes) GetByID(ctx context.Context, id uint64) (model.Route, error) {
	r, ok := f[id]
	if !ok {
		return model.Route{}, repository.ErrRouteNotFound
	}
	return r, nil
}

type fakeUsers map[uint64]model.User

func (f fakeUsers) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, ok := f[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

// fakeBookings mirrors the table constraints: unique PNR and at most one
// confirmed booking per seat of a departure.
type fakeBookings struct {
	mu     sync.Mutex
	rows   []model.Booking
	nextID uint64

	// pnrCollisions makes the next n inserts fail with ErrDuplicatePNR.
	pnrCollisions int
	// onInsert, when set, runs under the lock before each insert and may
	// fail it, e.g. to play a concurrent writer that InnoDB let through.
	onInsert func(f *fakeBookings, b *model.Booking) error
	// gate, when set, holds every ListOccupiedSeats caller until all
	// expected callers have arrived.
	gate *sync.WaitGroup
}

func (f *fakeBookings) ListOccupiedSeats(ctx context.Context, routeID uint64, travelDate time.Time, coach model.CoachClass) ([]model.Seat, error) {
	f.mu.Lock()
	var seats []model.Seat
	for _, b := range f.rows {
		if b.RouteID == routeID && b.TravelDate.Equal(travelDate) && b.Coach == coach && b.Status == model.StatusConfirmed {
			seats = append(seats, b.Seat())
		}
	}
	f.mu.Unlock()
	if f.gate != nil {
		f.gate.Done()
		f.gate.Wait()
	}
	return seats, nil
}

func (f *fakeBookings) Insert(ctx context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pnrCollisions > 0 {
		f.pnrCollisions--
		return repository.ErrDuplicatePNR
	}
	if f.onInsert != nil {
		if err := f.onInsert(f, b); err != nil {
			return err
		}
	}
	for _, r := range f.rows {
		if r.PNR == b.PNR {
			return repository.ErrDuplicatePNR
		}
		if r.Status == model.StatusConfirmed && r.RouteID == b.RouteID && r.TravelDate.Equal(b.TravelDate) &&
			r.Coach == b.Coach && r.Seat() == b.Seat() {
			return repository.ErrSeatTaken
		}
	}
	f.nextID++
	b.ID = f.nextID
	b.Status = model.StatusConfirmed
	b.CreatedAt = time.Now().UTC()
	f.rows = append(f.rows, *b)
	return nil
}

// addLocked stores b as a confirmed booking.  Callers hold f.mu.
func (f *fakeBookings) addLocked(b model.Booking) {
	f.nextID++
	b.ID = f.nextID
	b.Status = model.StatusConfirmed
	f.rows = append(f.rows, b)
}

func (f *fakeBookings) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Booking{}, repository.ErrBookingNotFound
}

func (f *fakeBookings) FindByPNR(ctx context.Context, pnr string) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.PNR == pnr {
			return r, nil
		}
	}
	return model.Booking{}, repository.ErrBookingNotFound
}

func (f *fakeBookings) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Booking
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeBookings) UpdateStatus(ctx context.Context, id, userID uint64, from, to model.BookingStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows {
		if r.ID == id && r.UserID == userID && r.Status == from {
			f.rows[i].Status = to
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookings) confirmedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rows {
		if r.Status == model.StatusConfirmed {
			n++
		}
	}
	return n
}

type recordingNotifier struct {
	mu        sync.Mutex
	err       error
	confirmed []model.BookingWithDetails
	cancelled []model.BookingWithDetails
}

func (n *recordingNotifier) NotifyBookingConfirmed(ctx context.Context, d model.BookingWithDetails) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, d)
	return n.err
}

func (n *recordingNotifier) NotifyBookingCancelled(ctx context.Context, d model.BookingWithDetails) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, d)
	return n.err
}

func (n *recordingNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.confirmed), len(n.cancelled)
}
