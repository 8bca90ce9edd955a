// internal/domain/auth/entity.go
package auth

import (
	"database/sql"
	"time"
)

// Role codes. USER and PLATFORM_ADMIN are global (no company); AGENT and
// COMPANY_ADMIN are tenant-scoped and require a company ID.
const (
	RoleUser          = "USER"
	RolePlatformAdmin = "PLATFORM_ADMIN"
	RoleAgent         = "AGENT"
	RoleCompanyAdmin  = "COMPANY_ADMIN"
)

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// User represents the core user identity. Users are never physically
// deleted; deleted_at and status transitions cover the lifecycle.
type User struct {
	ID            int64          `json:"id" db:"id"`
	Email         string         `json:"email" db:"email"`
	PasswordHash  string         `json:"-" db:"password_hash"`
	FullName      sql.NullString `json:"full_name" db:"full_name"`
	Status        string         `json:"status" db:"status"` // active, suspended
	EmailVerified bool           `json:"email_verified" db:"email_verified"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt     sql.NullTime   `json:"-" db:"deleted_at"`
}

// RoleAssignment is one granted (role_code, company_id) pair. CompanyID is
// nil for global roles.
type RoleAssignment struct {
	Code      string `json:"code"`
	CompanyID *int64 `json:"company_id"`
}

// Equal reports whether both the role code and the company scope match.
func (a RoleAssignment) Equal(b RoleAssignment) bool {
	if a.Code != b.Code {
		return false
	}
	if (a.CompanyID == nil) != (b.CompanyID == nil) {
		return false
	}
	return a.CompanyID == nil || *a.CompanyID == *b.CompanyID
}

// TenantScoped reports whether the role requires a company ID.
func (a RoleAssignment) TenantScoped() bool {
	return a.Code == RoleAgent || a.Code == RoleCompanyAdmin
}

// RefreshToken is a persisted rotating session secret. Only the SHA-256 of
// the opaque secret is stored; the row ID doubles as the external session ID.
type RefreshToken struct {
	ID         int64          `json:"id" db:"id"`
	UserID     int64          `json:"user_id" db:"user_id"`
	TokenHash  string         `json:"-" db:"token_hash"`
	DeviceName sql.NullString `json:"device_name" db:"device_name"`
	IPAddress  sql.NullString `json:"ip_address" db:"ip_address"`
	UserAgent  sql.NullString `json:"user_agent" db:"user_agent"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	ExpiresAt  time.Time      `json:"expires_at" db:"expires_at"`
	RevokedAt  sql.NullTime   `json:"revoked_at" db:"revoked_at"`
	LastUsedAt time.Time      `json:"last_used_at" db:"last_used_at"`
}

// Active reports whether the token is unrevoked and unexpired at now.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.RevokedAt.Valid && now.Before(t.ExpiresAt)
}
