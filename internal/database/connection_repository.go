package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recallmail/recall/internal/crypto"
	"github.com/recallmail/recall/internal/domain"
)

// connectionColumns must match the Scan order in scanConnection.
const connectionColumns = `id, user_id, source_type, access_token, refresh_token, scope, token_expiry, created_at, updated_at`

// ConnectionRepo implements domain.ConnectionRepository. Token columns
// are encrypted with the injected cipher; a decryption failure on read is
// surfaced, never swallowed, since it means tampering or a key mismatch.
type ConnectionRepo struct {
	pool   *pgxpool.Pool
	cipher crypto.Service
}

func NewConnectionRepo(pool *pgxpool.Pool, cipher crypto.Service) *ConnectionRepo {
	return &ConnectionRepo{pool: pool, cipher: cipher}
}

func (r *ConnectionRepo) Get(ctx context.Context, userID uuid.UUID, source domain.SourceType) (*domain.Connection, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+connectionColumns+` FROM connections WHERE user_id = $1 AND source_type = $2`,
		userID, source)
	return r.scanConnection(row)
}

func (r *ConnectionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Connection, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+connectionColumns+` FROM connections WHERE user_id = $1 ORDER BY source_type`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer rows.Close()

	var connections []domain.Connection
	for rows.Next() {
		conn, err := r.scanConnection(rows)
		if err != nil {
			return nil, err
		}
		connections = append(connections, *conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate connections: %w", err)
	}
	return connections, nil
}

func (r *ConnectionRepo) Upsert(ctx context.Context, userID uuid.UUID, source domain.SourceType, accessToken, refreshToken, scope string, tokenExpiry time.Time) (*domain.Connection, error) {
	encAccess, err := r.cipher.Encrypt(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}
	encRefresh, err := r.encryptRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO connections (user_id, source_type, access_token, refresh_token, scope, token_expiry)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, source_type) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			scope = EXCLUDED.scope,
			token_expiry = EXCLUDED.token_expiry,
			updated_at = NOW()
		RETURNING `+connectionColumns,
		userID, source, encAccess, encRefresh, scope, tokenExpiry)
	return r.scanConnection(row)
}

func (r *ConnectionRepo) UpdateTokens(ctx context.Context, userID uuid.UUID, source domain.SourceType, accessToken, refreshToken string, tokenExpiry time.Time) error {
	encAccess, err := r.cipher.Encrypt(accessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	encRefresh, err := r.encryptRefreshToken(refreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE connections
		SET access_token = $3, refresh_token = $4, token_expiry = $5, updated_at = NOW()
		WHERE user_id = $1 AND source_type = $2`,
		userID, source, encAccess, encRefresh, tokenExpiry)
	if err != nil {
		return fmt.Errorf("failed to update tokens: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConnectionNotFound
	}
	return nil
}

func (r *ConnectionRepo) Delete(ctx context.Context, userID uuid.UUID, source domain.SourceType) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM connections WHERE user_id = $1 AND source_type = $2`,
		userID, source)
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConnectionNotFound
	}
	return nil
}

// encryptRefreshToken treats an empty refresh token as a legal value:
// some providers (notion among them) never issue one, and the empty
// string round-trips as-is instead of being a cipher error.
func (r *ConnectionRepo) encryptRefreshToken(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	return r.cipher.Encrypt(plaintext)
}

func (r *ConnectionRepo) decryptRefreshToken(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	return r.cipher.Decrypt(encoded)
}

func (r *ConnectionRepo) scanConnection(row pgx.Row) (*domain.Connection, error) {
	var c domain.Connection
	var encAccess, encRefresh string
	err := row.Scan(&c.ID, &c.UserID, &c.Source, &encAccess, &encRefresh, &c.Scope, &c.TokenExpiry, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrConnectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan connection: %w", err)
	}

	if c.AccessToken, err = r.cipher.Decrypt(encAccess); err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	if c.RefreshToken, err = r.decryptRefreshToken(encRefresh); err != nil {
		return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}
	return &c, nil
}
