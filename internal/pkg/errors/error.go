package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrInternal       = errors.New("internal server error")
	ErrRateLimited    = errors.New("too many requests")
)

// Authentication and token lifecycle errors. The refresh-token error is
// deliberately uniform: not-found, expired, revoked and suspended-owner all
// collapse into it so callers cannot probe token state.
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountSuspended    = errors.New("account is suspended")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrTokenRevoked        = errors.New("token has been revoked")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrForbiddenRole       = errors.New("you do not have the requested role")
	ErrSessionNotFound     = errors.New("session not found")

	// ErrCannotRevokeCurrentSession is intentionally distinct: the caller
	// should use logout for their own session.
	ErrCannotRevokeCurrentSession = errors.New("cannot revoke the current session, use logout instead")
)

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
