package middleware

import (
	"github.com/labstack/echo/v4"
)

// Content-Security-Policy values for the two servers. JSON responses load
// nothing; viewer pages load their own inline styles only.
const (
	APIContentPolicy  = "default-src 'none'; frame-ancestors 'none'"
	PageContentPolicy = "default-src 'self'; style-src 'self' 'unsafe-inline'; form-action 'self'; frame-ancestors 'none'"
)

// SecurityHeaders sets security response headers on every request. Patient
// records must never be cached by the browser or a proxy.
func SecurityHeaders(contentPolicy string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-XSS-Protection", "0")
			h.Set("Content-Security-Policy", contentPolicy)
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			h.Set("Cache-Control", "no-store")
			return next(c)
		}
	}
}
