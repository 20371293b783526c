package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/panemexpress/rail-booking/internal/logger"
	"github.com/panemexpress/rail-booking/internal/middleware"
	"github.com/panemexpress/rail-booking/internal/service"
)

func errorBody(code, msg string) echo.Map {
	return echo.Map{"error": code, "message": msg}
}

// writeError maps a booking core failure to its HTTP status and a stable
// error code.  Unknown errors are logged and reported as 500 without
// detail.
func writeError(c echo.Context, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		body := errorBody("validation_error", ve.Error())
		body["field"] = ve.Field
		return c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, service.ErrInvalidRoute):
		return c.JSON(http.StatusBadRequest, errorBody("invalid_route", "route does not exist"))
	case errors.Is(err, service.ErrInvalidCoachClass):
		return c.JSON(http.StatusBadRequest, errorBody("invalid_coach_class", "coach must be one of BUSINESS, FIRST_CLASS, ECONOMY, SECOND_CLASS, NON_AC"))
	case errors.Is(err, service.ErrInvalidSeat):
		return c.JSON(http.StatusBadRequest, errorBody("invalid_seat", "row must be 1-5 and column 1-4"))
	case errors.Is(err, service.ErrSeatAlreadyBooked):
		return c.JSON(http.StatusConflict, errorBody("seat_already_booked", "seat is already booked, pick another seat"))
	case errors.Is(err, service.ErrJourneyDeparted):
		return c.JSON(http.StatusConflict, errorBody("journey_departed", "bookings can only be cancelled before the travel date"))
	case errors.Is(err, service.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, errorBody("unauthenticated", "login required"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, errorBody("forbidden", "booking belongs to another user"))
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorBody("not_found", "booking not found"))
	}
	logger.Module("http").WithError(err).
		WithField("request_id", middleware.RequestIDFrom(c)).
		Error("unhandled error")
	return c.JSON(http.StatusInternalServerError, errorBody("internal_error", "internal error"))
}
