// internal/service/auth/sessions.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"helpdesk-service/internal/domain/auth"
	xerrors "helpdesk-service/internal/pkg/errors"
	"helpdesk-service/internal/pkg/jwt"
)

// ListSessions returns the caller's active sessions, most recently used
// first. The session created by the current access token is flagged.
func (s *AuthService) ListSessions(ctx context.Context, claims *jwt.Claims) ([]*auth.SessionView, error) {
	rows, err := s.tokens.ListActiveByUser(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	views := make([]*auth.SessionView, 0, len(rows))
	for _, row := range rows {
		views = append(views, &auth.SessionView{
			SessionID:  row.ID,
			DeviceName: stringFromNull(row.DeviceName),
			IPAddress:  stringFromNull(row.IPAddress),
			UserAgent:  stringFromNull(row.UserAgent),
			LastUsedAt: row.LastUsedAt,
			ExpiresAt:  row.ExpiresAt,
			IsCurrent:  row.ID == claims.SessionID,
		})
	}
	return views, nil
}

// RevokeSession revokes one of the caller's sessions by ID. Revoking the
// session backing the current access token is refused; revoking a session
// that is not the caller's, already revoked, or nonexistent all collapse
// into ErrSessionNotFound.
func (s *AuthService) RevokeSession(ctx context.Context, claims *jwt.Claims, sessionID int64) error {
	if sessionID == claims.SessionID {
		return xerrors.ErrCannotRevokeCurrentSession
	}

	row, err := s.tokens.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return xerrors.ErrSessionNotFound
		}
		return err
	}

	if row.UserID != claims.UserID {
		s.logger.Warn("session revoke rejected",
			zap.String("cause", "not_owned"),
			zap.Int64("user_id", claims.UserID),
			zap.Int64("session_id", sessionID),
		)
		return xerrors.ErrSessionNotFound
	}
	if !row.Active(time.Now()) {
		return xerrors.ErrSessionNotFound
	}

	won, err := s.tokens.RevokeIfActive(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if !won {
		return xerrors.ErrSessionNotFound
	}

	s.logger.Info("session revoked",
		zap.Int64("user_id", claims.UserID),
		zap.Int64("session_id", sessionID),
	)
	if s.notifier != nil {
		s.notifier.ForceLogout(claims.UserID, fmt.Sprintf("%d", sessionID), "Session revoked from another device")
	}
	return nil
}

// Status assembles the authenticated-status payload for a validated token.
func (s *AuthService) Status(ctx context.Context, claims *jwt.Claims) (*auth.StatusPayload, error) {
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	payload := &auth.StatusPayload{
		IsAuthenticated: true,
		User:            s.userInfo(user, claims.Roles, claims.ActiveRole),
		TokenInfo: auth.TokenInfo{
			ExpiresIn: int(time.Until(claims.ExpiresAt.Time).Seconds()),
			TokenType: "Bearer",
		},
	}

	if row, err := s.tokens.FindByID(ctx, claims.SessionID); err == nil {
		payload.CurrentSession = &auth.CurrentSession{
			SessionID:  row.ID,
			DeviceName: stringFromNull(row.DeviceName),
			IsCurrent:  true,
		}
		if err := s.tokens.TouchLastUsed(ctx, row.ID); err != nil {
			s.logger.Warn("failed to touch session", zap.Int64("session_id", row.ID), zap.Error(err))
		}
	}

	return payload, nil
}
