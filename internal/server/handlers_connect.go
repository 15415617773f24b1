package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/recallmail/recall/internal/domain"
	"github.com/recallmail/recall/internal/metrics"
	"github.com/recallmail/recall/internal/oauthstate"
)

const exchangeTimeout = 10 * time.Second

// genericStateError is the only thing a client ever learns about a failed
// callback. The precise failure kind would be an oracle for forgery
// attempts; detail goes to the server log alone.
const genericStateError = "state validation failed"

func (s *Server) handleConnect(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("userID").(uuid.UUID)

	source, err := domain.ParseSourceType(c.Param("source"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": "unknown source"})
	}

	allowed, err := s.limiter.Allow(ctx, userID)
	if err != nil {
		// Redis being down should not block account linking; log and
		// proceed with only the IP limiter in effect.
		slog.WarnContext(ctx, "Connect rate limiter unavailable", "error", err)
	} else if !allowed {
		metrics.OAuthFlowFailures.WithLabelValues("rate_limited").Inc()
		return c.JSON(429, map[string]string{"error": "too many connection attempts, try again in a minute"})
	}

	state, err := s.states.Generate(userID.String(), source)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to generate state token", "error", err)
		return c.JSON(500, map[string]string{"error": "internal error"})
	}

	authURL, err := s.oauthClient.AuthCodeURL(source, state)
	if err != nil {
		slog.ErrorContext(ctx, "No provider configured", "source", source, "error", err)
		return c.JSON(404, map[string]string{"error": "source not available"})
	}

	metrics.OAuthFlowsStarted.WithLabelValues(source.String()).Inc()
	return c.Redirect(302, authURL)
}

func (s *Server) handleCallback(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("userID").(uuid.UUID)

	if errParam := c.QueryParam("error"); errParam != "" {
		slog.InfoContext(ctx, "Provider returned error on callback", "provider_error", errParam)
		metrics.OAuthFlowFailures.WithLabelValues("provider_denied").Inc()
		return c.JSON(400, map[string]string{"error": "connection was not authorized, please retry"})
	}

	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(400, map[string]string{"error": "missing code parameter"})
	}

	st, err := s.states.Validate(c.QueryParam("state"))
	if err != nil {
		slog.WarnContext(ctx, "State validation failed", "reason", stateFailureReason(err), "user_id", userID)
		metrics.OAuthFlowFailures.WithLabelValues(stateFailureReason(err)).Inc()
		return c.JSON(400, map[string]string{"error": genericStateError})
	}

	// The token must have been minted for the user holding this session.
	if st.SubjectID != userID.String() {
		slog.WarnContext(ctx, "State subject does not match session user",
			"state_subject", st.SubjectID, "user_id", userID)
		metrics.OAuthFlowFailures.WithLabelValues("subject_mismatch").Inc()
		return c.JSON(400, map[string]string{"error": genericStateError})
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	result, err := s.oauthClient.Exchange(exchangeCtx, st.Source, code)
	if err != nil {
		slog.ErrorContext(ctx, "Token exchange failed", "source", st.Source, "error", err)
		metrics.OAuthFlowFailures.WithLabelValues("exchange_failed").Inc()
		return c.JSON(502, map[string]string{"error": "failed to connect your account, please retry"})
	}

	conn, err := s.connections.Upsert(ctx, userID, st.Source,
		result.AccessToken, result.RefreshToken, result.Scope, result.Expiry)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to store connection", "source", st.Source, "error", err)
		metrics.OAuthFlowFailures.WithLabelValues("store_failed").Inc()
		return c.JSON(500, map[string]string{"error": "failed to connect your account, please retry"})
	}

	metrics.OAuthFlowsCompleted.WithLabelValues(st.Source.String()).Inc()
	// A reconnect replaces the existing row; only a first connect grows
	// the active gauge. Fresh rows have equal timestamps, replaced rows
	// get updated_at bumped.
	if conn.CreatedAt.Equal(conn.UpdatedAt) {
		metrics.ConnectionsActive.WithLabelValues(st.Source.String()).Inc()
	}
	slog.InfoContext(ctx, "Source connected", "source", st.Source, "user_id", userID)

	return c.JSON(200, conn.Summary())
}

// stateFailureReason maps codec errors to metric labels. Server-side only.
func stateFailureReason(err error) string {
	switch {
	case errors.Is(err, oauthstate.ErrExpired):
		return "expired"
	case errors.Is(err, oauthstate.ErrSignatureMismatch):
		return "signature_mismatch"
	default:
		return "invalid_state"
	}
}
