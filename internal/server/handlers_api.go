package server

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/recallmail/recall/internal/domain"
	"github.com/recallmail/recall/internal/metrics"
)

func (s *Server) handleListConnections(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("userID").(uuid.UUID)

	connections, err := s.connections.ListByUser(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list connections", "error", err)
		return c.JSON(500, map[string]string{"error": "internal error"})
	}

	summaries := make([]domain.ConnectionSummary, 0, len(connections))
	for i := range connections {
		summaries = append(summaries, connections[i].Summary())
	}
	return c.JSON(200, summaries)
}

func (s *Server) handleDisconnect(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("userID").(uuid.UUID)

	source, err := domain.ParseSourceType(c.Param("source"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": "unknown source"})
	}

	if err := s.connections.Delete(ctx, userID, source); err != nil {
		if errors.Is(err, domain.ErrConnectionNotFound) {
			return c.JSON(404, map[string]string{"error": "not connected"})
		}
		slog.ErrorContext(ctx, "Failed to delete connection", "source", source, "error", err)
		return c.JSON(500, map[string]string{"error": "internal error"})
	}

	metrics.ConnectionsActive.WithLabelValues(source.String()).Dec()
	slog.InfoContext(ctx, "Source disconnected", "source", source, "user_id", userID)
	return c.NoContent(204)
}
