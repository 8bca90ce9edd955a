// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"

	"helpdesk-service/internal/domain/auth"
)

// Claims is the typed access-token claim set. Roles always carries the
// user's full assignment set as of issuance; ActiveRole is nil when a
// multi-role user has not selected one yet.
type Claims struct {
	UserID     int64                 `json:"user_id"`
	Email      string                `json:"email"`
	SessionID  int64                 `json:"session_id"`
	Roles      []auth.RoleAssignment `json:"roles"`
	ActiveRole *auth.RoleAssignment  `json:"active_role"`
	jwt.RegisteredClaims
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(audience string, required bool) bool {
	if len(c.Audience) == 0 {
		return !required
	}
	for _, aud := range c.Audience {
		if aud == audience {
			return true
		}
	}
	return false
}
