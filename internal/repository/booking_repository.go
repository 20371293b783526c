package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/panemexpress/rail-booking/internal/model"
)

// BookingRepo persists bookings.  Seat exclusivity is enforced twice: a
// locking read inside the insert transaction and the uq_bookings_active_seat
// unique index, which catches inserts that race past the read.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo creates a BookingRepo.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

const bookingColumns = `id, user_id, route_id, travel_date, coach, seat_row, seat_col,
	passenger_name, passenger_age, fare, pnr, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(s rowScanner) (model.Booking, error) {
	var (
		b      model.Booking
		coach  string
		status string
	)
	if err := s.Scan(&b.ID, &b.UserID, &b.RouteID, &b.TravelDate, &coach, &b.Row, &b.Column,
		&b.PassengerName, &b.PassengerAge, &b.Fare, &b.PNR, &status, &b.CreatedAt); err != nil {
		return model.Booking{}, err
	}
	b.Coach = model.CoachClass(coach)
	b.Status = model.BookingStatus(status)
	return b, nil
}

func dateArg(t time.Time) string { return t.Format(model.DateLayout) }

// ListOccupiedSeats returns the seats held by confirmed bookings for one
// departure, ordered by row then column.
func (r *BookingRepo) ListOccupiedSeats(ctx context.Context, routeID uint64, travelDate time.Time, coach model.CoachClass) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT seat_row, seat_col
		FROM bookings
		WHERE route_id = ? AND travel_date = ? AND coach = ? AND status = 'confirmed'
		ORDER BY seat_row, seat_col`,
		routeID, dateArg(travelDate), string(coach))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := []model.Seat{}
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.Row, &s.Column); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// Insert stores a confirmed booking and fills in b.ID and b.CreatedAt.  The
// uq_bookings_active_seat key settles races on a seat: a concurrent insert
// of the same seat waits for the first and then fails with ErrSeatTaken.
// ErrDuplicatePNR reports a reference collision and ErrLockConflict a
// deadlock or lock wait timeout.  No row is written in any of these cases.
func (r *BookingRepo) Insert(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO bookings
			(user_id, route_id, travel_date, coach, seat_row, seat_col,
			 passenger_name, passenger_age, fare, pnr, status)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		b.UserID, b.RouteID, dateArg(b.TravelDate), string(b.Coach), b.Row, b.Column,
		b.PassengerName, b.PassengerAge, b.Fare, b.PNR, string(model.StatusConfirmed))
	if err != nil {
		switch {
		case violates(err, "uq_bookings_active_seat"):
			return ErrSeatTaken
		case violates(err, "uq_bookings_pnr"):
			return ErrDuplicatePNR
		case lockConflict(err):
			return ErrLockConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	var createdAt time.Time
	if err := tx.QueryRowContext(ctx, `SELECT created_at FROM bookings WHERE id = ?`, id).Scan(&createdAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		if lockConflict(err) {
			return ErrLockConflict
		}
		return err
	}
	committed = true

	b.ID = uint64(id)
	b.Status = model.StatusConfirmed
	b.CreatedAt = createdAt
	return nil
}

// GetByID returns a booking or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, err
}

// FindByPNR returns the booking with the given reference or
// ErrBookingNotFound.
func (r *BookingRepo) FindByPNR(ctx context.Context, pnr string) (model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE pnr = ?`, pnr))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, err
}

// ListByUser returns the user's bookings of any status ordered by travel
// date, then ID.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY travel_date, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateStatus moves a booking owned by userID from one status to another.
// It reports whether a row changed; false means the booking was missing, not
// owned by the user, or no longer in the from state.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id, userID uint64, from, to model.BookingStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND user_id = ? AND status = ?`,
		string(to), id, userID, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
