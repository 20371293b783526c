package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/panemexpress/rail-booking/internal/utils"
)

// Context keys set by the middlewares in this package.
const (
	CtxUserID    = "user_id"
	CtxUsername  = "username"
	CtxRequestID = "request_id"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and stores the user ID (uint64) and username in the request context.  It
// resolves the identity that booking and cancellation require; requests
// without a valid token stop here with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthenticated(c, "missing bearer token")
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return unauthenticated(c, "invalid token")
			}
			uid, err := claims.UserID()
			if err != nil {
				return unauthenticated(c, "invalid claims")
			}
			c.Set(CtxUserID, uid)
			c.Set(CtxUsername, claims.Username)
			return next(c)
		}
	}
}

func unauthenticated(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated", "message": msg})
}
