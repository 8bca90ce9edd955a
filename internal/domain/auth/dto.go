// internal/domain/auth/dto.go
package auth

import "time"

// DeviceInfo captures per-request client metadata stored on the session.
type DeviceInfo struct {
	DeviceName string `json:"device_name"`
	IPAddress  string `json:"-"`
	UserAgent  string `json:"-"`
}

// RegisterRequest for user registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Device   DeviceInfo `json:"-"`
}

// LoginRequest for user login
type LoginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
	Device     DeviceInfo `json:"-"`
}

// SelectRoleRequest switches the token's active role.
type SelectRoleRequest struct {
	RoleCode  string `json:"role_code" binding:"required"`
	CompanyID *int64 `json:"company_id"`
}

// LogoutRequest for logout
type LogoutRequest struct {
	Everywhere bool `json:"everywhere"`
}

// UserInfo is the user shape embedded in auth responses.
type UserInfo struct {
	ID            int64            `json:"id"`
	Email         string           `json:"email"`
	FullName      string           `json:"full_name,omitempty"`
	EmailVerified bool             `json:"email_verified"`
	Roles         []RoleAssignment `json:"roles"`
	ActiveRole    *RoleAssignment  `json:"active_role"`
}

// AuthPayload is the result of login/register/refresh. RefreshSecret is the
// one-time plaintext rotating secret; it travels to the client as an
// HttpOnly cookie and is never serialized into the JSON body or logged.
type AuthPayload struct {
	AccessToken   string    `json:"accessToken"`
	TokenType     string    `json:"tokenType"`
	ExpiresIn     int       `json:"expiresIn"`
	User          *UserInfo `json:"user,omitempty"`
	RefreshSecret string    `json:"-"`
	SessionID     int64     `json:"-"`
}

// SelectRolePayload is the result of a role switch.
type SelectRolePayload struct {
	AccessToken string          `json:"access_token"`
	ExpiresAt   time.Time       `json:"expires_at"`
	ActiveRole  *RoleAssignment `json:"active_role"`
}

// SessionView is one active device session as listed to the user.
type SessionView struct {
	SessionID  int64     `json:"sessionId"`
	DeviceName string    `json:"deviceName"`
	IPAddress  string    `json:"ipAddress"`
	UserAgent  string    `json:"userAgent"`
	LastUsedAt time.Time `json:"lastUsedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	IsCurrent  bool      `json:"isCurrent"`
}

// TokenInfo summarizes the presented access token.
type TokenInfo struct {
	ExpiresIn int    `json:"expiresIn"`
	TokenType string `json:"tokenType"`
}

// CurrentSession identifies the caller's own session in the status payload.
type CurrentSession struct {
	SessionID  int64  `json:"sessionId"`
	DeviceName string `json:"deviceName"`
	IsCurrent  bool   `json:"isCurrent"`
}

// StatusPayload is the response of GET /api/auth/status.
type StatusPayload struct {
	IsAuthenticated bool            `json:"isAuthenticated"`
	User            *UserInfo       `json:"user"`
	TokenInfo       TokenInfo       `json:"tokenInfo"`
	CurrentSession  *CurrentSession `json:"currentSession,omitempty"`
}
