package service

import (
	"context"
	"time"

	"github.com/panemexpress/rail-booking/internal/model"
)

// RouteStore reads routes.  GetByID returns repository.ErrRouteNotFound for
// unknown IDs.
type RouteStore interface {
	ListAll(ctx context.Context) ([]model.Route, error)
	GetByID(ctx context.Context, id uint64) (model.Route, error)
}

// BookingStore persists bookings.  Insert must reject a second confirmed
// booking on the same seat of a departure with repository.ErrSeatTaken and
// a reused PNR with repository.ErrDuplicatePNR.  A deadlock or lock wait
// timeout surfaces as repository.ErrLockConflict.
type BookingStore interface {
	ListOccupiedSeats(ctx context.Context, routeID uint64, travelDate time.Time, coach model.CoachClass) ([]model.Seat, error)
	Insert(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	FindByPNR(ctx context.Context, pnr string) (model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	UpdateStatus(ctx context.Context, id, userID uint64, from, to model.BookingStatus) (bool, error)
}

// UserStore resolves booking owners.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Notifier delivers booking notifications.  Errors are logged by the
// caller and never reach the user.
type Notifier interface {
	NotifyBookingConfirmed(ctx context.Context, d model.BookingWithDetails) error
	NotifyBookingCancelled(ctx context.Context, d model.BookingWithDetails) error
}
