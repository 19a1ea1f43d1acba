package middleware

// identity.go holds helpers shared across middleware files for pulling
// the caller's identity out of the Echo context. The rate limiter keys
// buckets per user where one is authenticated, falling back to "anon"
// for guests hitting the public endpoints.

import (
	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user's ID as stored by
// JWTAuth, or "anon" when the request is unauthenticated.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if v := c.Get("userID"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "anon"
}
