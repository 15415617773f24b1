package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Session routes
	s.echo.POST("/auth/login", s.handleLogin)
	s.echo.POST("/auth/logout", s.handleLogout, s.requireAuth)

	// OAuth connect flow. The callback is rate limited by IP only: it
	// carries no session-independent user identity until the state token
	// has been validated.
	connectLimit := newIPRateLimiter(1, s.config.ConnectRateCapacity)
	s.echo.GET("/connect/:source", s.handleConnect, s.requireAuth, connectLimit)
	s.echo.GET("/connect/callback", s.handleCallback, s.requireAuth, connectLimit)

	// Connection management API
	s.echo.GET("/api/connections", s.handleListConnections, s.requireAuth)
	s.echo.DELETE("/api/connections/:source", s.handleDisconnect, s.requireAuth)
}
