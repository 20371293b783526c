// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/panemexpress/rail-booking/internal/model"
)

// Event types.  Each type is also the name of the durable queue it is
// published to.
const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

// Queues lists every queue the publisher and consumer declare.
var Queues = []string{EventBookingConfirmed, EventBookingCancelled}

// BookingEvent is published when a booking is confirmed or cancelled.  It
// carries enough information for consumers to log and send receipts
// without querying the primary database.
type BookingEvent struct {
	Type          string `json:"type"`
	BookingID     uint64 `json:"booking_id"`
	PNR           string `json:"pnr"`
	Status        string `json:"status"`
	UserID        uint64 `json:"user_id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	RouteID       uint64 `json:"route_id"`
	RouteName     string `json:"route_name"`
	FromStation   string `json:"from_station"`
	ToStation     string `json:"to_station"`
	DistanceKm    int    `json:"distance_km"`
	TravelDate    string `json:"travel_date"`
	Coach         string `json:"coach"`
	CoachName     string `json:"coach_name"`
	Seat          string `json:"seat"`
	PassengerName string `json:"passenger_name"`
	PassengerAge  int    `json:"passenger_age"`
	Fare          string `json:"fare"`
	OccurredAt    string `json:"occurred_at"`
}

// NewBookingEvent flattens a booking view into an event of the given type.
func NewBookingEvent(eventType string, d model.BookingWithDetails, at time.Time) BookingEvent {
	b := d.Booking
	return BookingEvent{
		Type:          eventType,
		BookingID:     b.ID,
		PNR:           b.PNR,
		Status:        string(b.Status),
		UserID:        b.UserID,
		Username:      d.User.Username,
		Email:         d.User.Email,
		RouteID:       d.Route.ID,
		RouteName:     d.Route.Name,
		FromStation:   d.Route.FromStation,
		ToStation:     d.Route.ToStation,
		DistanceKm:    d.Route.DistanceKm,
		TravelDate:    b.TravelDate.Format(model.DateLayout),
		Coach:         string(b.Coach),
		CoachName:     b.Coach.DisplayName(),
		Seat:          b.Seat().Label(),
		PassengerName: b.PassengerName,
		PassengerAge:  b.PassengerAge,
		Fare:          b.Fare.String(),
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
}
