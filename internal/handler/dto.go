package handler

import (
	"time"

	"github.com/panemexpress/rail-booking/internal/model"
)

type routeDTO struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	FromStation string `json:"fromStation"`
	ToStation   string `json:"toStation"`
	DistanceKm  int    `json:"distanceKm"`
}

func toRouteDTO(r model.Route) routeDTO {
	return routeDTO{ID: r.ID, Name: r.Name, FromStation: r.FromStation, ToStation: r.ToStation, DistanceKm: r.DistanceKm}
}

type seatDTO struct {
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Label  string `json:"label"`
}

func toSeatDTO(s model.Seat) seatDTO {
	return seatDTO{Row: s.Row, Column: s.Column, Label: s.Label()}
}

type bookingDTO struct {
	ID            uint64      `json:"id"`
	PNR           string      `json:"pnr"`
	Status        string      `json:"status"`
	RouteID       uint64      `json:"routeId"`
	TravelDate    string      `json:"travelDate"`
	Coach         string      `json:"coach"`
	CoachName     string      `json:"coachName"`
	Seat          seatDTO     `json:"seat"`
	PassengerName string      `json:"passengerName"`
	PassengerAge  int         `json:"passengerAge"`
	Fare          model.Money `json:"fare"`
	CreatedAt     time.Time   `json:"createdAt"`
	Route         *routeDTO   `json:"route,omitempty"`
	User          *userPart   `json:"user,omitempty"`
}

func toBookingDTO(b model.Booking) bookingDTO {
	return bookingDTO{
		ID:            b.ID,
		PNR:           b.PNR,
		Status:        string(b.Status),
		RouteID:       b.RouteID,
		TravelDate:    b.TravelDate.Format(model.DateLayout),
		Coach:         string(b.Coach),
		CoachName:     b.Coach.DisplayName(),
		Seat:          toSeatDTO(b.Seat()),
		PassengerName: b.PassengerName,
		PassengerAge:  b.PassengerAge,
		Fare:          b.Fare,
		CreatedAt:     b.CreatedAt,
	}
}

func toBookingDetailsDTO(d model.BookingWithDetails) bookingDTO {
	out := toBookingDTO(d.Booking)
	r := toRouteDTO(d.Route)
	u := toUserPart(d.User)
	out.Route = &r
	out.User = &u
	return out
}
