package middleware

// identity.go defines helper functions shared across middleware files.
// Sessions are opaque caller-supplied tokens carried in the
// X-Session-Id header; they are never authenticated, only used to
// attribute requests (e.g. for rate limit keys).

import (
	"github.com/labstack/echo/v4"
)

// currentSessionID extracts the session token from the request. It
// returns "anon" when the header is absent so rate limit keys stay
// well-formed for guests.
func currentSessionID(c echo.Context) string {
	if v := c.Request().Header.Get("X-Session-Id"); v != "" {
		return v
	}
	return "anon"
}
