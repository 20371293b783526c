package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/panemexpress/rail-booking/internal/config"
	"github.com/panemexpress/rail-booking/internal/handler"
)

func TestRouteTable(t *testing.T) {
	e := echo.New()
	Register(e, Deps{
		JWTSecret: "s",
		Auth:      handler.NewAuthHandler(config.Config{JWTSecret: "s"}, nil, nil),
		Bookings:  handler.NewBookingHandler(nil),
	})

	got := map[string]bool{}
	for _, r := range e.Routes() {
		got[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"POST /v1/auth/register",
		"POST /v1/auth/login",
		"POST /v1/auth/refresh",
		"POST /v1/auth/logout",
		"GET /v1/me",
		"GET /v1/routes",
		"GET /v1/coaches",
		"GET /v1/fare",
		"GET /v1/bookings/seats",
		"GET /v1/bookings/pnr/:pnr",
		"POST /v1/bookings",
		"GET /v1/bookings",
		"DELETE /v1/bookings/:id",
	} {
		assert.True(t, got[want], want)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := echo.New()
	Register(e, Deps{
		JWTSecret: "s",
		Auth:      handler.NewAuthHandler(config.Config{JWTSecret: "s"}, nil, nil),
		Bookings:  handler.NewBookingHandler(nil),
	})

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/v1/bookings"},
		{http.MethodGet, "/v1/bookings"},
		{http.MethodDelete, "/v1/bookings/1"},
		{http.MethodGet, "/v1/me"},
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.method+" "+tc.path)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
