package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/panemexpress/rail-booking/internal/middleware"
	"github.com/panemexpress/rail-booking/internal/model"
	"github.com/panemexpress/rail-booking/internal/service"
)

// BookingAPI is the booking core as seen by HTTP handlers.
type BookingAPI interface {
	ListRoutes(ctx context.Context) ([]model.Route, error)
	OccupiedSeats(ctx context.Context, routeID uint64, travelDate time.Time, coach model.CoachClass) (service.SeatSet, error)
	EstimateFare(ctx context.Context, routeID uint64, coach model.CoachClass, age int) (model.Money, error)
	CreateBooking(ctx context.Context, userID uint64, in service.CreateBookingInput) (model.Booking, error)
	CancelBooking(ctx context.Context, bookingID, userID uint64) error
	ListUserBookings(ctx context.Context, userID uint64) ([]model.BookingWithDetails, error)
	GetBookingByPNR(ctx context.Context, pnr string) (model.BookingWithDetails, error)
}

// BookingHandler serves the route catalogue and the booking endpoints.
type BookingHandler struct {
	Svc     BookingAPI
	Timeout time.Duration
}

func NewBookingHandler(svc BookingAPI) *BookingHandler {
	return &BookingHandler{Svc: svc, Timeout: 5 * time.Second}
}

func (h *BookingHandler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), h.Timeout)
}

// createBookingReq carries no fare: the server always prices the seat.
// Field checks happen in the service so their order is fixed.
type createBookingReq struct {
	RouteID       uint64 `json:"routeId"`
	TravelDate    string `json:"travelDate"`
	Coach         string `json:"coach"`
	Row           int    `json:"row"`
	Column        int    `json:"column"`
	PassengerName string `json:"passengerName"`
	PassengerAge  int    `json:"passengerAge"`
}

// OccupiedSeats handles GET /v1/bookings/seats?routeId=&travelDate=&coach=.
// The answer reflects committed bookings at the time of the call and is
// never cached.
func (h *BookingHandler) OccupiedSeats(c echo.Context) error {
	routeID, err := parseID(c.QueryParam("routeId"), "routeId")
	if err != nil {
		return writeError(c, err)
	}
	date, err := service.ParseTravelDate(c.QueryParam("travelDate"))
	if err != nil {
		return writeError(c, err)
	}
	coach := parseCoach(c.QueryParam("coach"))

	ctx, cancel := h.ctx(c)
	defer cancel()
	set, err := h.Svc.OccupiedSeats(ctx, routeID, date, coach)
	if err != nil {
		return writeError(c, err)
	}
	occupied := make([]seatDTO, 0, len(set))
	for _, s := range set.Sorted() {
		occupied = append(occupied, toSeatDTO(s))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.JSON(http.StatusOK, echo.Map{
		"routeId":    routeID,
		"travelDate": date.Format(model.DateLayout),
		"coach":      coach,
		"rows":       model.SeatRows,
		"columns":    model.SeatColumns,
		"occupied":   occupied,
	})
}

// Create handles POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid_body", "request body is not valid JSON"))
	}

	ctx, cancel := h.ctx(c)
	defer cancel()
	b, err := h.Svc.CreateBooking(ctx, middleware.CurrentUserID(c), service.CreateBookingInput{
		RouteID:       req.RouteID,
		TravelDate:    req.TravelDate,
		Coach:         parseCoach(req.Coach),
		Row:           req.Row,
		Column:        req.Column,
		PassengerName: req.PassengerName,
		PassengerAge:  req.PassengerAge,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingDTO(b))
}

// ListMine handles GET /v1/bookings.
func (h *BookingHandler) ListMine(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	list, err := h.Svc.ListUserBookings(ctx, middleware.CurrentUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]bookingDTO, 0, len(list))
	for _, d := range list {
		out = append(out, toBookingDetailsDTO(d))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// GetByPNR handles GET /v1/bookings/pnr/:pnr.
func (h *BookingHandler) GetByPNR(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	d, err := h.Svc.GetBookingByPNR(ctx, c.Param("pnr"))
	if err != nil {
		return writeError(c, err)
	}
	out := toBookingDetailsDTO(d)
	out.User.Email = "" // the reference is public; the owner's address is not
	return c.JSON(http.StatusOK, out)
}

// Cancel handles DELETE /v1/bookings/:id.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	if err := h.Svc.CancelBooking(ctx, id, middleware.CurrentUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
