// internal/service/auth/service.go
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"helpdesk-service/internal/domain/auth"
	"helpdesk-service/internal/pkg/jwt"
)

// UserStore is the persistence surface for users and role assignments.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	FindByID(ctx context.Context, id int64) (*auth.User, error)
	Create(ctx context.Context, user *auth.User) error
	ListAssignments(ctx context.Context, userID int64) ([]auth.RoleAssignment, error)
	AssignRole(ctx context.Context, userID int64, code string, companyID *int64) error
}

// RefreshTokenStore is the persistence surface for rotating refresh tokens.
// RevokeIfActive must be atomic: concurrent calls for the same row yield
// exactly one true.
type RefreshTokenStore interface {
	Insert(ctx context.Context, t *auth.RefreshToken) error
	FindByHash(ctx context.Context, tokenHash string) (*auth.RefreshToken, error)
	FindByID(ctx context.Context, id int64) (*auth.RefreshToken, error)
	RevokeIfActive(ctx context.Context, id int64) (bool, error)
	RevokeAllForUser(ctx context.Context, userID int64) (int64, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]*auth.RefreshToken, error)
	TouchLastUsed(ctx context.Context, id int64) error
}

// TokenBlacklist marks revoked access tokens until their natural expiry.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
	MarkUserRevoked(ctx context.Context, userID int64, at time.Time, ttl time.Duration) error
	UserRevokedAt(ctx context.Context, userID int64) (time.Time, bool, error)
}

// LoginLimiter throttles credential attempts per (ip, email).
type LoginLimiter interface {
	CheckLoginAttempt(ctx context.Context, ip, email string) (bool, int64, error)
	ResetLoginAttempts(ctx context.Context, ip, email string) error
}

// SessionNotifier pushes session lifecycle events to connected devices.
type SessionNotifier interface {
	ForceLogout(userID int64, sessionID string, reason string)
}

type AuthService struct {
	users      UserStore
	tokens     RefreshTokenStore
	blacklist  TokenBlacklist
	limiter    LoginLimiter
	notifier   SessionNotifier
	jwtManager *jwt.Manager
	refreshTTL time.Duration
	logger     *zap.Logger
}

func NewAuthService(
	users UserStore,
	tokens RefreshTokenStore,
	blacklist TokenBlacklist,
	limiter LoginLimiter,
	notifier SessionNotifier,
	jwtManager *jwt.Manager,
	refreshTTL time.Duration,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		blacklist:  blacklist,
		limiter:    limiter,
		notifier:   notifier,
		jwtManager: jwtManager,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// generateSecret returns a fresh opaque refresh secret and its storage hash.
// The plaintext leaves this process exactly once, in the operation result.
func generateSecret() (string, string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	secret := base64.RawURLEncoding.EncodeToString(buf)
	return secret, hashSecret(secret), nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// issueSession creates a new refresh-token row for the user and returns the
// one-time plaintext secret alongside it.
func (s *AuthService) issueSession(ctx context.Context, userID int64, device auth.DeviceInfo) (string, *auth.RefreshToken, error) {
	secret, hash, err := generateSecret()
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	row := &auth.RefreshToken{
		UserID:     userID,
		TokenHash:  hash,
		DeviceName: nullString(device.DeviceName),
		IPAddress:  nullString(device.IPAddress),
		UserAgent:  nullString(device.UserAgent),
		ExpiresAt:  now.Add(s.refreshTTL),
		LastUsedAt: now,
	}

	if err := s.tokens.Insert(ctx, row); err != nil {
		return "", nil, err
	}
	return secret, row, nil
}

func (s *AuthService) userInfo(user *auth.User, roleSet []auth.RoleAssignment, active *auth.RoleAssignment) *auth.UserInfo {
	return &auth.UserInfo{
		ID:            user.ID,
		Email:         user.Email,
		FullName:      user.FullName.String,
		EmailVerified: user.EmailVerified,
		Roles:         roleSet,
		ActiveRole:    active,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func stringFromNull(s sql.NullString) string {
	if s.Valid {
		return s.String
	}
	return ""
}
