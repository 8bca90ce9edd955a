// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"helpdesk-service/internal/domain/auth"
	xerrors "helpdesk-service/internal/pkg/errors"
	"helpdesk-service/internal/pkg/jwt"
	"helpdesk-service/internal/pkg/roles"
)

// dummyHash keeps the bcrypt comparison on the unknown-email path, so login
// latency does not reveal whether the address exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// ========== Registration ==========

// Register creates a new user account with the default global USER role and
// logs the new user in.
func (s *AuthService) Register(ctx context.Context, req *auth.RegisterRequest) (*auth.AuthPayload, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &auth.User{
		Email:        req.Email,
		PasswordHash: string(hashed),
		FullName:     nullString(req.FullName),
		Status:       auth.StatusActive,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.users.AssignRole(ctx, user.ID, auth.RoleUser, nil); err != nil {
		// the resolver synthesizes USER anyway, so log and continue
		s.logger.Error("failed to assign default role", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	return s.establishSession(ctx, user, req.Device)
}

// ========== Login ==========

// Login authenticates a user with email/password. Suspended accounts fail
// distinctly; an unverified email does not block login.
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.AuthPayload, error) {
	// Lookup is case-insensitive, so the limiter key must be too or casing
	// variants would each get their own attempt budget.
	limiterEmail := strings.ToLower(req.Email)
	if s.limiter != nil {
		allowed, _, err := s.limiter.CheckLoginAttempt(ctx, req.Device.IPAddress, limiterEmail)
		if err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}
		if !allowed {
			return nil, xerrors.ErrRateLimited
		}
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			return nil, xerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, xerrors.ErrInvalidCredentials
	}

	if user.Status == auth.StatusSuspended {
		return nil, xerrors.ErrAccountSuspended
	}

	if s.limiter != nil {
		s.limiter.ResetLoginAttempts(ctx, req.Device.IPAddress, limiterEmail)
	}

	return s.establishSession(ctx, user, req.Device)
}

// establishSession resolves roles, opens a refresh-token session and mints
// the access token. Used by both login and registration.
func (s *AuthService) establishSession(ctx context.Context, user *auth.User, device auth.DeviceInfo) (*auth.AuthPayload, error) {
	assignments, err := s.users.ListAssignments(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load role assignments: %w", err)
	}
	roleSet := roles.Resolve(assignments)

	active, err := roles.ResolveActive(roleSet, nil)
	if err != nil {
		return nil, err
	}

	secret, row, err := s.issueSession(ctx, user.ID, device)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	accessToken, _, err := s.jwtManager.Generator.GenerateAccessToken(user, row.ID, roleSet, active)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &auth.AuthPayload{
		AccessToken:   accessToken,
		TokenType:     "Bearer",
		ExpiresIn:     s.jwtManager.Generator.ExpiresIn(),
		User:          s.userInfo(user, roleSet, active),
		RefreshSecret: secret,
		SessionID:     row.ID,
	}, nil
}

// ========== Refresh ==========

// Refresh rotates the presented refresh secret and mints a fresh access
// token carrying the prior token's active role (role continuity: the active
// role is preserved, not re-resolved). All failure causes collapse into
// ErrInvalidRefreshToken so clients cannot probe token state.
func (s *AuthService) Refresh(ctx context.Context, accessToken, presentedSecret string, device auth.DeviceInfo) (*auth.AuthPayload, error) {
	// The prior access token may already be expired; only its signature and
	// claims matter here.
	var priorActive *auth.RoleAssignment
	var priorResolved bool
	if accessToken != "" {
		if claims, err := s.jwtManager.Verifier.VerifyAllowExpired(accessToken); err == nil {
			priorActive = claims.ActiveRole
			priorResolved = true
		}
	}

	row, err := s.tokens.FindByHash(ctx, hashSecret(presentedSecret))
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			s.logger.Warn("refresh rejected", zap.String("cause", "not_found"))
			return nil, xerrors.ErrInvalidRefreshToken
		}
		return nil, err
	}

	now := time.Now()
	if row.RevokedAt.Valid {
		// A previously rotated secret came back: either a replay or a very
		// late retry. Uniform failure either way.
		s.logger.Warn("refresh rejected",
			zap.String("cause", "reused"),
			zap.Int64("user_id", row.UserID),
			zap.Int64("session_id", row.ID),
		)
		return nil, xerrors.ErrInvalidRefreshToken
	}
	if !now.Before(row.ExpiresAt) {
		s.logger.Warn("refresh rejected",
			zap.String("cause", "expired"),
			zap.Int64("user_id", row.UserID),
			zap.Int64("session_id", row.ID),
		)
		return nil, xerrors.ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			s.logger.Warn("refresh rejected", zap.String("cause", "user_gone"), zap.Int64("user_id", row.UserID))
			return nil, xerrors.ErrInvalidRefreshToken
		}
		return nil, err
	}
	if user.Status == auth.StatusSuspended {
		s.logger.Warn("refresh rejected", zap.String("cause", "suspended"), zap.Int64("user_id", user.ID))
		return nil, xerrors.ErrInvalidRefreshToken
	}

	// Rotation race arbiter: only the caller that actually flips revoked_at
	// proceeds; a concurrent rotation with the same secret loses here.
	won, err := s.tokens.RevokeIfActive(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		s.logger.Warn("refresh rejected",
			zap.String("cause", "rotation_race"),
			zap.Int64("user_id", user.ID),
			zap.Int64("session_id", row.ID),
		)
		return nil, xerrors.ErrInvalidRefreshToken
	}

	// New row preserves the old device metadata unless the request updates it.
	newDevice := auth.DeviceInfo{
		DeviceName: firstNonEmpty(device.DeviceName, stringFromNull(row.DeviceName)),
		IPAddress:  firstNonEmpty(device.IPAddress, stringFromNull(row.IPAddress)),
		UserAgent:  firstNonEmpty(device.UserAgent, stringFromNull(row.UserAgent)),
	}

	secret, newRow, err := s.issueSession(ctx, user.ID, newDevice)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	assignments, err := s.users.ListAssignments(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load role assignments: %w", err)
	}
	roleSet := roles.Resolve(assignments)

	active := priorActive
	if !priorResolved {
		active, _ = roles.ResolveActive(roleSet, nil)
	}

	newToken, _, err := s.jwtManager.Generator.GenerateAccessToken(user, newRow.ID, roleSet, active)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &auth.AuthPayload{
		AccessToken:   newToken,
		TokenType:     "Bearer",
		ExpiresIn:     s.jwtManager.Generator.ExpiresIn(),
		RefreshSecret: secret,
		SessionID:     newRow.ID,
	}, nil
}

// ========== Role Switch ==========

// SelectRole re-mints the access token with a new active role. The refresh
// session is untouched; only the access token changes.
func (s *AuthService) SelectRole(ctx context.Context, claims *jwt.Claims, req *auth.SelectRoleRequest) (*auth.SelectRolePayload, error) {
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.users.ListAssignments(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load role assignments: %w", err)
	}
	roleSet := roles.Resolve(assignments)

	requested := auth.RoleAssignment{Code: req.RoleCode, CompanyID: req.CompanyID}
	active, err := roles.ResolveActive(roleSet, &requested)
	if err != nil {
		return nil, err
	}

	token, _, err := s.jwtManager.Generator.GenerateAccessToken(user, claims.SessionID, roleSet, active)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &auth.SelectRolePayload{
		AccessToken: token,
		ExpiresAt:   time.Now().Add(s.jwtManager.Generator.Ttl),
		ActiveRole:  active,
	}, nil
}

// ========== Logout ==========

// Logout blacklists the presented access token and revokes either the
// session matching the presented refresh secret or, with everywhere, every
// session the user holds. Prior access tokens are cut off by the user-wide
// revocation mark on an everywhere logout.
func (s *AuthService) Logout(ctx context.Context, claims *jwt.Claims, refreshSecret string, everywhere bool) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	if everywhere {
		count, err := s.tokens.RevokeAllForUser(ctx, claims.UserID)
		if err != nil {
			return fmt.Errorf("failed to revoke sessions: %w", err)
		}
		if err := s.blacklist.MarkUserRevoked(ctx, claims.UserID, time.Now(), s.jwtManager.Generator.Ttl); err != nil {
			return fmt.Errorf("failed to mark user revoked: %w", err)
		}
		s.logger.Info("logged out everywhere",
			zap.Int64("user_id", claims.UserID),
			zap.Int64("sessions_revoked", count),
		)
		if s.notifier != nil {
			s.notifier.ForceLogout(claims.UserID, "", "Logged out on all devices")
		}
		return nil
	}

	// Revoke the session behind the presented refresh secret when there is
	// one; otherwise fall back to the session ID baked into the access
	// token, so a logout without the cookie still kills the session.
	sessionID := claims.SessionID
	if refreshSecret != "" {
		if row, err := s.tokens.FindByHash(ctx, hashSecret(refreshSecret)); err == nil && row.UserID == claims.UserID {
			sessionID = row.ID
		}
	}
	if _, err := s.tokens.RevokeIfActive(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	s.logger.Info("logged out", zap.Int64("user_id", claims.UserID), zap.Int64("session_id", sessionID))
	return nil
}

// ========== Token Validation ==========

// ValidateToken verifies an access token and checks both the per-jti
// blacklist and the user-wide revocation mark. Ambiguous state rejects.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.jwtManager.Verifier.Verify(token)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidToken, err.Error())
	}

	blacklisted, err := s.blacklist.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check blacklist: %w", err)
	}
	if blacklisted {
		return nil, xerrors.ErrTokenRevoked
	}

	if at, ok, err := s.blacklist.UserRevokedAt(ctx, claims.UserID); err != nil {
		return nil, fmt.Errorf("failed to check user revocation: %w", err)
	} else if ok && claims.IssuedAt != nil && !claims.IssuedAt.Time.After(at) {
		return nil, xerrors.ErrTokenRevoked
	}

	return claims, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
