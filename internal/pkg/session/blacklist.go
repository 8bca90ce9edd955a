// internal/pkg/session/blacklist.go
package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist tracks revoked access tokens in Redis. Entries live only until
// the token's natural expiry, so the set stays bounded by the access TTL.
//
// Two kinds of marks exist: per-jti (single logout, session revoke) and
// per-user (logout everywhere), the latter stored as a unix timestamp so
// tokens issued before the mark fail while newer ones pass.
type Blacklist struct {
	client *redis.Client
}

func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client}
}

// BlacklistToken marks a single token (by jti) as revoked for ttl.
func (b *Blacklist) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // already past natural expiry
	}
	return b.client.Set(ctx, b.tokenKey(jti), "1", ttl).Err()
}

// IsTokenBlacklisted checks whether a jti has been revoked.
func (b *Blacklist) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	exists, err := b.client.Exists(ctx, b.tokenKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return exists > 0, nil
}

// MarkUserRevoked records a user-wide revocation instant. Any access token
// issued at or before it must be rejected.
func (b *Blacklist) MarkUserRevoked(ctx context.Context, userID int64, at time.Time, ttl time.Duration) error {
	return b.client.Set(ctx, b.userKey(userID), strconv.FormatInt(at.Unix(), 10), ttl).Err()
}

// UserRevokedAt returns the user-wide revocation instant, if one is live.
func (b *Blacklist) UserRevokedAt(ctx context.Context, userID int64) (time.Time, bool, error) {
	val, err := b.client.Get(ctx, b.userKey(userID)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to check user revocation: %w", err)
	}

	unix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt user revocation mark: %w", err)
	}
	return time.Unix(unix, 0), true, nil
}

func (b *Blacklist) tokenKey(jti string) string {
	return fmt.Sprintf("blacklist:jti:%s", jti)
}

func (b *Blacklist) userKey(userID int64) string {
	return fmt.Sprintf("blacklist:user:%d", userID)
}
