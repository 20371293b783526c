package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/panemexpress/rail-booking/internal/model"
	"github.com/panemexpress/rail-booking/internal/service"
)

// ListRoutes handles GET /v1/routes.
func (h *BookingHandler) ListRoutes(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	routes, err := h.Svc.ListRoutes(ctx)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]routeDTO, 0, len(routes))
	for _, r := range routes {
		out = append(out, toRouteDTO(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"routes": out})
}

type coachDTO struct {
	Key       string  `json:"key"`
	Name      string  `json:"name"`
	RatePerKm float64 `json:"ratePerKm"`
}

// ListCoaches handles GET /v1/coaches.  Classes are listed most expensive
// first, together with the seat grid dimensions.
func (h *BookingHandler) ListCoaches(c echo.Context) error {
	coaches := model.Coaches()
	out := make([]coachDTO, 0, len(coaches))
	for _, ci := range coaches {
		out = append(out, coachDTO{Key: string(ci.Key), Name: ci.Name, RatePerKm: ci.RatePerKm})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"coaches": out,
		"rows":    model.SeatRows,
		"columns": model.SeatColumns,
	})
}

// EstimateFare handles GET /v1/fare?routeId=&coach=&age=.  The estimate
// uses the same calculator as booking creation; the booked fare is always
// recomputed.
func (h *BookingHandler) EstimateFare(c echo.Context) error {
	routeID, err := parseID(c.QueryParam("routeId"), "routeId")
	if err != nil {
		return writeError(c, err)
	}
	coach := parseCoach(c.QueryParam("coach"))
	age, err := strconv.Atoi(strings.TrimSpace(c.QueryParam("age")))
	if err != nil {
		return writeError(c, &service.ValidationError{Field: "age", Msg: "must be a whole number"})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()
	fare, err := h.Svc.EstimateFare(ctx, routeID, coach, age)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"routeId": routeID,
		"coach":   coach,
		"age":     age,
		"fare":    fare,
	})
}

func parseID(raw, field string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, &service.ValidationError{Field: field, Msg: "must be a positive integer"}
	}
	return id, nil
}

func parseCoach(raw string) model.CoachClass {
	return model.CoachClass(strings.ToUpper(strings.TrimSpace(raw)))
}
