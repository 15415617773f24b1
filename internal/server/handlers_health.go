package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/recallmail/recall/internal/platform/version"
)

const healthCheckTimeout = 2 * time.Second

func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(200, map[string]any{
		"status":  "alive",
		"version": version.Get(),
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	checks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"postgres", s.checkPostgres},
		{"redis", s.checkRedis},
	}

	for _, check := range checks {
		if err := check.fn(ctx); err != nil {
			return c.JSON(503, map[string]any{
				"status": "unhealthy",
				"failed": check.name,
			})
		}
	}

	return c.JSON(200, map[string]any{"status": "ready"})
}

func (s *Server) checkPostgres(ctx context.Context) error {
	if s.pgHealth == nil {
		return nil
	}
	return s.pgHealth.Ping(ctx)
}

func (s *Server) checkRedis(ctx context.Context) error {
	if s.redisHealth == nil {
		return nil
	}
	return s.redisHealth.Ping(ctx)
}
