package server

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/recallmail/recall/internal/platform/requestid"
)

// requestIDMiddleware assigns every request an ID that follows it
// through the context into log lines. An inbound X-Request-ID (from a
// proxy or a retrying client) is honored so traces line up end to end.
func requestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = requestid.New()
			}
			ctx := requestid.With(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			return next(c)
		}
	}
}

// requireAuth resolves the session cookie into a user ID placed on the
// echo context under "userID".
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, err := s.sessionStore.Get(c.Request(), sessionName)
		if err != nil {
			return c.JSON(401, map[string]string{"error": "not authenticated"})
		}

		raw, ok := session.Values[sessionKeyUserID].(string)
		if !ok || raw == "" {
			return c.JSON(401, map[string]string{"error": "not authenticated"})
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			return c.JSON(401, map[string]string{"error": "not authenticated"})
		}

		c.Set("userID", userID)
		return next(c)
	}
}
