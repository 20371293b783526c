// Package router maps URLs to handlers and attaches per-route middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/panemexpress/rail-booking/internal/config"
	"github.com/panemexpress/rail-booking/internal/handler"
	"github.com/panemexpress/rail-booking/internal/middleware"
)

// Deps is everything the route table needs.  Redis may be nil, in which
// case caching and rate limiting pass requests through.
type Deps struct {
	JWTSecret string
	DB        handler.Pinger
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Auth      *handler.AuthHandler
	Bookings  *handler.BookingHandler
}

// Register mounts every endpoint on e.
func Register(e *echo.Echo, d Deps) {
	RegisterRoutes(e, d.DB)
	RegisterAuth(e, d.Auth, d.JWTSecret)
	RegisterCatalogue(e, d.Bookings, middleware.NewRedisCache(d.Cache, d.Redis))
	RegisterBookings(e, d.Bookings, d.JWTSecret, middleware.NewTokenBucket(d.RateLimit, d.Redis))
}

// RegisterRoutes registers routes that need no authentication and no
// business dependencies.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers account and session endpoints.  Token exchange
// lives under /v1/auth; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterCatalogue registers the read-only reference data.  cache fronts
// routes and coaches only; fares depend on the query and are cheap.
func RegisterCatalogue(e *echo.Echo, h *handler.BookingHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/routes", h.ListRoutes, cache)
	e.GET("/v1/coaches", h.ListCoaches, cache)
	e.GET("/v1/fare", h.EstimateFare)
}

// RegisterBookings registers seat availability and the booking lifecycle.
// Seat availability is public and never cached.  Creating, listing and
// cancelling require a user; limit throttles creation per user.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	e.GET("/v1/bookings/seats", h.OccupiedSeats)
	e.GET("/v1/bookings/pnr/:pnr", h.GetByPNR)

	auth := middleware.JWTAuth(jwtSecret)
	e.POST("/v1/bookings", h.Create, auth, limit)
	e.GET("/v1/bookings", h.ListMine, auth)
	e.DELETE("/v1/bookings/:id", h.Cancel, auth)
}
