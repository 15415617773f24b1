package server

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// newIPRateLimiter throttles by client IP, in memory. It blunts
// unauthenticated scans of the connect endpoints before they reach the
// Redis-backed per-user limiter, which is the second layer.
func newIPRateLimiter(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(ratePerSecond),
			Burst: burst,
			// Idle IPs age out so scan traffic cannot grow the store
			// without bound.
			ExpiresIn: 5 * time.Minute,
		},
	)
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, _ error) error {
			slog.WarnContext(c.Request().Context(), "IP rate limit exceeded",
				"ip", identifier, "path", c.Path())
			return c.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	})
}
