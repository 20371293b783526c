// Package service holds the booking core: fare pricing, seat availability,
// booking creation and cancellation.  It depends on storage and
// notification only through the interfaces in ports.go.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/panemexpress/rail-booking/internal/fare"
	"github.com/panemexpress/rail-booking/internal/logger"
	"github.com/panemexpress/rail-booking/internal/model"
	"github.com/panemexpress/rail-booking/internal/repository"
)

// Passenger limits.  Children under MinPassengerAge cannot travel on their
// own booking.
const (
	MinPassengerAge     = 7
	MaxPassengerAge     = 125
	MaxPassengerNameLen = 128
	maxInsertAttempts   = 5
)

// CreateBookingInput is the client-supplied part of a booking.  The fare is
// deliberately absent: it is always computed here.
type CreateBookingInput struct {
	RouteID       uint64
	TravelDate    string // YYYY-MM-DD
	Coach         model.CoachClass
	Row           int
	Column        int
	PassengerName string
	PassengerAge  int
}

// SeatSet is the set of occupied seats of one departure.
type SeatSet map[model.Seat]struct{}

// Contains reports whether s is occupied.
func (ss SeatSet) Contains(s model.Seat) bool {
	_, ok := ss[s]
	return ok
}

// Sorted returns the seats ordered by row, then column.
func (ss SeatSet) Sorted() []model.Seat {
	out := make([]model.Seat, 0, len(ss))
	for s := range ss {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Column < out[j].Column
	})
	return out
}

// BookingService implements the booking flow.
type BookingService struct {
	routes   RouteStore
	bookings BookingStore
	users    UserStore
	notifier Notifier
	tasks    *Dispatcher
	now      func() time.Time
	newPNR   func() (string, error)
	log      *logrus.Entry
}

// Option customises a BookingService.
type Option func(*BookingService)

// WithClock overrides the time source used for travel date checks.
func WithClock(now func() time.Time) Option { return func(s *BookingService) { s.now = now } }

// WithPNRGenerator overrides the booking reference generator.
func WithPNRGenerator(fn func() (string, error)) Option {
	return func(s *BookingService) { s.newPNR = fn }
}

// WithDispatcher sets the dispatcher that runs notifications.
func WithDispatcher(d *Dispatcher) Option { return func(s *BookingService) { s.tasks = d } }

// NewBookingService wires the service.  notifier may be nil, in which case
// no notifications are sent.
func NewBookingService(routes RouteStore, bookings BookingStore, users UserStore, notifier Notifier, opts ...Option) *BookingService {
	s := &BookingService{
		routes:   routes,
		bookings: bookings,
		users:    users,
		notifier: notifier,
		now:      time.Now,
		newPNR:   NewPNR,
		log:      logger.Module("booking"),
	}
	for _, o := range opts {
		o(s)
	}
	if s.tasks == nil {
		s.tasks = NewDispatcher(0)
	}
	return s
}

// Dispatcher exposes the task runner so shutdown can drain it.
func (s *BookingService) Dispatcher() *Dispatcher { return s.tasks }

// ListRoutes returns every route.
func (s *BookingService) ListRoutes(ctx context.Context) ([]model.Route, error) {
	routes, err := s.routes.ListAll(ctx)
	if err != nil {
		return nil, internal("list routes", err)
	}
	return routes, nil
}

// ParseTravelDate parses a YYYY-MM-DD date as UTC midnight.
func ParseTravelDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(model.DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, invalid("travelDate", "must be YYYY-MM-DD")
	}
	return d, nil
}

func (s *BookingService) today() time.Time {
	n := s.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// OccupiedSeats returns the seats held by confirmed bookings of the
// departure.  Cancelled bookings never appear.
func (s *BookingService) OccupiedSeats(ctx context.Context, routeID uint64, travelDate time.Time, coach model.CoachClass) (SeatSet, error) {
	if !coach.Valid() {
		return nil, ErrInvalidCoachClass
	}
	seats, err := s.bookings.ListOccupiedSeats(ctx, routeID, travelDate, coach)
	if err != nil {
		return nil, internal("list occupied seats", err)
	}
	set := make(SeatSet, len(seats))
	for _, st := range seats {
		set[st] = struct{}{}
	}
	return set, nil
}

// EstimateFare prices a journey without booking it.  It uses the same
// calculator as CreateBooking.
func (s *BookingService) EstimateFare(ctx context.Context, routeID uint64, coach model.CoachClass, age int) (model.Money, error) {
	route, err := s.route(ctx, routeID)
	if err != nil {
		return 0, err
	}
	if !coach.Valid() {
		return 0, ErrInvalidCoachClass
	}
	if err := checkAge(age); err != nil {
		return 0, err
	}
	amount, err := fare.Compute(route.DistanceKm, coach, age)
	if err != nil {
		return 0, internal("compute fare", err)
	}
	return amount, nil
}

func (s *BookingService) route(ctx context.Context, id uint64) (model.Route, error) {
	if id == 0 {
		return model.Route{}, ErrInvalidRoute
	}
	route, err := s.routes.GetByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrRouteNotFound):
		return model.Route{}, ErrInvalidRoute
	case err != nil:
		return model.Route{}, internal("load route", err)
	}
	return route, nil
}

func checkAge(age int) error {
	if age < MinPassengerAge || age > MaxPassengerAge {
		return invalid("passengerAge", fmt.Sprintf("must be between %d and %d", MinPassengerAge, MaxPassengerAge))
	}
	return nil
}

// CreateBooking validates the request, re-checks the seat, prices it and
// stores a confirmed booking.  Checks run in a fixed order and the first
// failure is returned.  The confirmation notice is sent in the background
// and cannot fail the booking.
func (s *BookingService) CreateBooking(ctx context.Context, userID uint64, in CreateBookingInput) (model.Booking, error) {
	if userID == 0 {
		return model.Booking{}, ErrUnauthenticated
	}
	route, err := s.route(ctx, in.RouteID)
	if err != nil {
		return model.Booking{}, err
	}
	if !in.Coach.Valid() {
		return model.Booking{}, ErrInvalidCoachClass
	}

	name := strings.TrimSpace(in.PassengerName)
	switch {
	case name == "":
		return model.Booking{}, invalid("passengerName", "is required")
	case len([]rune(name)) > MaxPassengerNameLen:
		return model.Booking{}, invalid("passengerName", fmt.Sprintf("must be at most %d characters", MaxPassengerNameLen))
	}
	if err := checkAge(in.PassengerAge); err != nil {
		return model.Booking{}, err
	}
	date, err := ParseTravelDate(in.TravelDate)
	if err != nil {
		return model.Booking{}, err
	}
	if date.Before(s.today()) {
		return model.Booking{}, invalid("travelDate", "must not be in the past")
	}

	seat := model.Seat{Row: in.Row, Column: in.Column}
	if !seat.InGrid() {
		return model.Booking{}, ErrInvalidSeat
	}
	occupied, err := s.OccupiedSeats(ctx, route.ID, date, in.Coach)
	if err != nil {
		return model.Booking{}, err
	}
	if occupied.Contains(seat) {
		return model.Booking{}, ErrSeatAlreadyBooked
	}

	amount, err := fare.Compute(route.DistanceKm, in.Coach, in.PassengerAge)
	if err != nil {
		// Coach and age were checked above; only a corrupt route gets here.
		return model.Booking{}, internal("compute fare", err)
	}

	b := model.Booking{
		UserID:        userID,
		RouteID:       route.ID,
		TravelDate:    date,
		Coach:         in.Coach,
		Row:           seat.Row,
		Column:        seat.Column,
		PassengerName: name,
		PassengerAge:  in.PassengerAge,
		Fare:          amount,
		Status:        model.StatusConfirmed,
	}
	if err := s.insert(ctx, &b); err != nil {
		return model.Booking{}, err
	}

	s.log.WithFields(logrus.Fields{"booking_id": b.ID, "pnr": b.PNR, "user_id": userID}).Info("booking confirmed")
	s.notify(b, route, eventConfirmed)
	return b, nil
}

// insert stores b, drawing a fresh PNR whenever the previous one collides.
// A deadlock or lock timeout means another booking of the departure was
// being written at the same time: if that booking took the seat the caller
// gets ErrSeatAlreadyBooked, otherwise the insert is tried again.
func (s *BookingService) insert(ctx context.Context, b *model.Booking) error {
	var lastErr error
	for attempt := 1; attempt <= maxInsertAttempts; attempt++ {
		pnr, err := s.newPNR()
		if err != nil {
			return internal("generate pnr", err)
		}
		b.PNR = pnr
		err = s.bookings.Insert(ctx, b)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, repository.ErrSeatTaken):
			return ErrSeatAlreadyBooked
		case errors.Is(err, repository.ErrDuplicatePNR):
			s.log.WithField("attempt", attempt).Warn("pnr collision, regenerating")
		case errors.Is(err, repository.ErrLockConflict):
			s.log.WithField("attempt", attempt).Warn("lock conflict on booking insert, re-checking seat")
			occupied, oerr := s.OccupiedSeats(ctx, b.RouteID, b.TravelDate, b.Coach)
			if oerr != nil {
				return oerr
			}
			if occupied.Contains(b.Seat()) {
				return ErrSeatAlreadyBooked
			}
		default:
			return internal("insert booking", err)
		}
		lastErr = err
	}
	return internal("insert booking", lastErr)
}

// CancelBooking cancels a booking owned by userID.  Cancelling an already
// cancelled booking succeeds without side effects.  A confirmed booking
// whose travel date has passed cannot be cancelled.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID uint64) error {
	if userID == 0 {
		return ErrUnauthenticated
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	switch {
	case errors.Is(err, repository.ErrBookingNotFound):
		return ErrNotFound
	case err != nil:
		return internal("load booking", err)
	}
	if b.UserID != userID {
		return ErrForbidden
	}
	if b.Status == model.StatusCancelled {
		return nil
	}
	if b.TravelDate.Before(s.today()) {
		return ErrJourneyDeparted
	}

	changed, err := s.bookings.UpdateStatus(ctx, b.ID, userID, model.StatusConfirmed, model.StatusCancelled)
	if err != nil {
		return internal("cancel booking", err)
	}
	if !changed {
		// Lost a race with another cancel of the same booking.
		cur, err := s.bookings.GetByID(ctx, b.ID)
		if err != nil {
			return internal("reload booking", err)
		}
		if cur.Status == model.StatusCancelled {
			return nil
		}
		return internal("cancel booking", repository.ErrConflict)
	}
	b.Status = model.StatusCancelled

	s.log.WithFields(logrus.Fields{"booking_id": b.ID, "pnr": b.PNR, "user_id": userID}).Info("booking cancelled")
	route, err := s.routes.GetByID(ctx, b.RouteID)
	if err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Warn("cancellation notice skipped: route lookup failed")
		return nil
	}
	s.notify(b, route, eventCancelled)
	return nil
}

const (
	eventConfirmed = "booking.confirmed"
	eventCancelled = "booking.cancelled"
)

// notify resolves the booking owner and hands the notice to the dispatcher.
func (s *BookingService) notify(b model.Booking, route model.Route, event string) {
	if s.notifier == nil {
		return
	}
	fields := logrus.Fields{"event": event, "booking_id": b.ID, "pnr": b.PNR}
	s.tasks.Go("notify", fields, func(ctx context.Context) error {
		user, err := s.users.GetByID(ctx, b.UserID)
		if err != nil {
			return fmt.Errorf("load user %d: %w", b.UserID, err)
		}
		d := model.BookingWithDetails{Booking: b, Route: route, User: user}
		if event == eventCancelled {
			return s.notifier.NotifyBookingCancelled(ctx, d)
		}
		return s.notifier.NotifyBookingConfirmed(ctx, d)
	})
}

// ListUserBookings returns the user's bookings of every status, ordered by
// travel date, each composed with its route and owner.
func (s *BookingService) ListUserBookings(ctx context.Context, userID uint64) ([]model.BookingWithDetails, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.GetByID(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return nil, ErrUnauthenticated
	case err != nil:
		return nil, internal("load user", err)
	}
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, internal("list bookings", err)
	}
	routes, err := s.routes.ListAll(ctx)
	if err != nil {
		return nil, internal("list routes", err)
	}
	byID := make(map[uint64]model.Route, len(routes))
	for _, r := range routes {
		byID[r.ID] = r
	}
	out := make([]model.BookingWithDetails, 0, len(bookings))
	for _, b := range bookings {
		route, ok := byID[b.RouteID]
		if !ok {
			return nil, internal("compose booking", fmt.Errorf("route %d missing", b.RouteID))
		}
		out = append(out, model.BookingWithDetails{Booking: b, Route: route, User: user})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Booking.TravelDate.Before(out[j].Booking.TravelDate)
	})
	return out, nil
}

// GetBookingByPNR looks a booking up by its public reference.
func (s *BookingService) GetBookingByPNR(ctx context.Context, pnr string) (model.BookingWithDetails, error) {
	pnr = NormalizePNR(pnr)
	if !ValidPNR(pnr) {
		return model.BookingWithDetails{}, invalid("pnr", fmt.Sprintf("must be %d letters or digits", PNRLength))
	}
	b, err := s.bookings.FindByPNR(ctx, pnr)
	switch {
	case errors.Is(err, repository.ErrBookingNotFound):
		return model.BookingWithDetails{}, ErrNotFound
	case err != nil:
		return model.BookingWithDetails{}, internal("find booking", err)
	}
	route, err := s.routes.GetByID(ctx, b.RouteID)
	if err != nil {
		return model.BookingWithDetails{}, internal("load route", err)
	}
	user, err := s.users.GetByID(ctx, b.UserID)
	if err != nil {
		return model.BookingWithDetails{}, internal("load user", err)
	}
	return model.BookingWithDetails{Booking: b, Route: route, User: user}, nil
}
