package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Connection is one linked content source for a user. Token fields hold
// plaintext inside the process; the repository layer encrypts them before
// they touch storage and decrypts them on the way back.
type Connection struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Source       SourceType
	AccessToken  string
	RefreshToken string
	Scope        string
	TokenExpiry  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ConnectionRepository interface {
	Get(ctx context.Context, userID uuid.UUID, source SourceType) (*Connection, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Connection, error)
	Upsert(ctx context.Context, userID uuid.UUID, source SourceType, accessToken, refreshToken, scope string, tokenExpiry time.Time) (*Connection, error)
	UpdateTokens(ctx context.Context, userID uuid.UUID, source SourceType, accessToken, refreshToken string, tokenExpiry time.Time) error
	Delete(ctx context.Context, userID uuid.UUID, source SourceType) error
}

// ConnectionSummary is the API-facing view of a connection. It never
// carries token material.
type ConnectionSummary struct {
	Source      SourceType `json:"source"`
	Scope       string     `json:"scope"`
	TokenExpiry time.Time  `json:"token_expiry"`
	ConnectedAt time.Time  `json:"connected_at"`
}

func (c *Connection) Summary() ConnectionSummary {
	return ConnectionSummary{
		Source:      c.Source,
		Scope:       c.Scope,
		TokenExpiry: c.TokenExpiry,
		ConnectedAt: c.CreatedAt,
	}
}
