// internal/repository/postgres/refresh_token_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"helpdesk-service/internal/domain/auth"
	xerrors "helpdesk-service/internal/pkg/errors"
)

// RefreshTokenRepository persists hashed rotating refresh tokens. Rows are
// never updated in place: rotation revokes the old row (conditionally, so
// concurrent rotations settle on exactly one winner) and inserts a new one.
type RefreshTokenRepository struct {
	db *pgxpool.Pool
}

func NewRefreshTokenRepository(db *pgxpool.Pool) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Insert stores a new refresh token row and fills in its generated fields.
func (r *RefreshTokenRepository) Insert(ctx context.Context, t *auth.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens
			(user_id, token_hash, device_name, ip_address, user_agent, expires_at, last_used_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		t.UserID, t.TokenHash, t.DeviceName, t.IPAddress, t.UserAgent,
		t.ExpiresAt, t.LastUsedAt,
	).Scan(&t.ID, &t.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert refresh token: %w", err)
	}
	return nil
}

// FindByHash looks up a token row by secret hash, regardless of state. The
// caller inspects revocation/expiry so the distinct causes can be tagged in
// logs while the external error stays uniform.
func (r *RefreshTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	return r.findOne(ctx, `token_hash = $1`, tokenHash)
}

// FindByID looks up a token row by its ID (the external session ID).
func (r *RefreshTokenRepository) FindByID(ctx context.Context, id int64) (*auth.RefreshToken, error) {
	return r.findOne(ctx, `id = $1`, id)
}

func (r *RefreshTokenRepository) findOne(ctx context.Context, where string, arg interface{}) (*auth.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, device_name, ip_address, user_agent,
		       created_at, expires_at, revoked_at, last_used_at
		FROM refresh_tokens
		WHERE ` + where

	var t auth.RefreshToken
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&t.ID, &t.UserID, &t.TokenHash, &t.DeviceName, &t.IPAddress, &t.UserAgent,
		&t.CreatedAt, &t.ExpiresAt, &t.RevokedAt, &t.LastUsedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}

	return &t, nil
}

// RevokeIfActive conditionally revokes a row. The revoked_at IS NULL guard
// is the rotation race arbiter: of any number of concurrent calls for the
// same row, exactly one observes an affected row and wins.
func (r *RefreshTokenRepository) RevokeIfActive(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RevokeAllForUser revokes every active token the user holds and reports
// how many were affected.
func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke user refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListActiveByUser returns the user's unrevoked, unexpired tokens ordered
// by most recent use.
func (r *RefreshTokenRepository) ListActiveByUser(ctx context.Context, userID int64) ([]*auth.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, device_name, ip_address, user_agent,
		       created_at, expires_at, revoked_at, last_used_at
		FROM refresh_tokens
		WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > NOW()
		ORDER BY last_used_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list refresh tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*auth.RefreshToken
	for rows.Next() {
		var t auth.RefreshToken
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.TokenHash, &t.DeviceName, &t.IPAddress, &t.UserAgent,
			&t.CreatedAt, &t.ExpiresAt, &t.RevokedAt, &t.LastUsedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan refresh token: %w", err)
		}
		tokens = append(tokens, &t)
	}

	return tokens, rows.Err()
}

// TouchLastUsed bumps the row's last_used_at timestamp.
func (r *RefreshTokenRepository) TouchLastUsed(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE refresh_tokens SET last_used_at = $1 WHERE id = $2`,
		time.Now(), id)
	return err
}
