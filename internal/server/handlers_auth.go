package server

import (
	"log/slog"
	"net/mail"

	"github.com/labstack/echo/v4"
)

// handleLogin upserts a user by email and opens a cookie session. This is
// the development stand-in for the real identity flow, which lives in a
// separate service.
func (s *Server) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	email := c.FormValue("email")
	if _, err := mail.ParseAddress(email); err != nil {
		return c.JSON(400, map[string]string{"error": "valid email required"})
	}
	name := c.FormValue("name")

	user, err := s.users.Upsert(ctx, email, name)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upsert user on login", "error", err)
		return c.JSON(500, map[string]string{"error": "internal error"})
	}

	session, _ := s.sessionStore.Get(c.Request(), sessionName)
	session.Values[sessionKeyUserID] = user.ID.String()
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		slog.ErrorContext(ctx, "Failed to save session", "error", err)
		return c.JSON(500, map[string]string{"error": "internal error"})
	}

	return c.JSON(200, map[string]string{"user_id": user.ID.String()})
}

func (s *Server) handleLogout(c echo.Context) error {
	session, _ := s.sessionStore.Get(c.Request(), sessionName)
	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		slog.ErrorContext(c.Request().Context(), "Failed to clear session", "error", err)
		return c.JSON(500, map[string]string{"error": "internal error"})
	}
	return c.NoContent(204)
}
