package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// CurrentUserID returns the authenticated user's ID, or 0 when JWTAuth did
// not run or rejected the request.
func CurrentUserID(c echo.Context) uint64 {
	if id, ok := c.Get(CtxUserID).(uint64); ok {
		return id
	}
	return 0
}

// identityKey is the user part of rate limit keys: the user ID, or "anon".
func identityKey(c echo.Context) string {
	if id := CurrentUserID(c); id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
