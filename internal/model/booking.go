package model

import "time"

// BookingStatus is the lifecycle state of a booking.  The only allowed
// transition is confirmed -> cancelled.
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking records a single passenger on a single seat of a departure.  A
// departure is the (route, travel date, coach) tuple.  Bookings are never
// deleted; cancelled rows stay as history.
//
// Fields:
//
//	ID            – primary key identifier.
//	UserID        – user who made the booking.
//	RouteID       – route being travelled.
//	TravelDate    – calendar date of travel (UTC midnight).
//	Coach         – coach class key.
//	Row, Column   – seat position in the coach grid.
//	PassengerName – name printed on the ticket.
//	PassengerAge  – age in years, 7..125.
//	Fare          – computed server side at creation, immutable.
//	PNR           – public 10 character booking reference.
//	Status        – confirmed or cancelled.
//	CreatedAt     – creation timestamp.
type Booking struct {
	ID            uint64        // bookings.id
	UserID        uint64        // bookings.user_id
	RouteID       uint64        // bookings.route_id
	TravelDate    time.Time     // bookings.travel_date
	Coach         CoachClass    // bookings.coach
	Row           int           // bookings.seat_row
	Column        int           // bookings.seat_col
	PassengerName string        // bookings.passenger_name
	PassengerAge  int           // bookings.passenger_age
	Fare          Money         // bookings.fare
	PNR           string        // bookings.pnr
	Status        BookingStatus // bookings.status
	CreatedAt     time.Time     // bookings.created_at
}

// Seat returns the booked seat position.
func (b Booking) Seat() Seat { return Seat{Row: b.Row, Column: b.Column} }

// BookingWithDetails is a booking composed at read time with the route and
// user it references.
type BookingWithDetails struct {
	Booking Booking
	Route   Route
	User    User
}

// DateLayout is the wire and storage format of travel dates.
const DateLayout = "2006-01-02"
