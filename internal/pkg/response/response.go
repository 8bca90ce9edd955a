// internal/pkg/response/response.go
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	xerrors "helpdesk-service/internal/pkg/errors"
)

// ErrorBody is the standard error envelope. Code is stable across releases;
// clients branch on it, never on the message.
type ErrorBody struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Stable error codes.
const (
	CodeValidationFailed           = "VALIDATION_FAILED"
	CodeInvalidCredentials         = "INVALID_CREDENTIALS"
	CodeAccountSuspended           = "ACCOUNT_SUSPENDED"
	CodeRateLimited                = "RATE_LIMITED"
	CodeRefreshTokenRequired       = "REFRESH_TOKEN_REQUIRED"
	CodeInvalidRefreshToken        = "INVALID_REFRESH_TOKEN"
	CodeTokenRevoked               = "TOKEN_REVOKED"
	CodeInvalidToken               = "INVALID_TOKEN"
	CodeForbiddenRole              = "FORBIDDEN_ROLE"
	CodeSessionNotFound            = "SESSION_NOT_FOUND"
	CodeCannotRevokeCurrentSession = "CANNOT_REVOKE_CURRENT_SESSION"
	CodeDuplicateEmail             = "DUPLICATE_EMAIL"
	CodeInternalError              = "INTERNAL_ERROR"
)

// JSON sends a success payload as-is. Auth responses are flat objects, not
// wrapped in an envelope.
func JSON(c *gin.Context, status int, payload interface{}) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, payload)
}

// Error sends the error envelope and aborts the chain.
func Error(c *gin.Context, status int, code, message string) {
	c.Abort()
	c.JSON(status, ErrorBody{Success: false, Code: code, Message: message})
}

// ValidationError sends a 400 for malformed input.
func ValidationError(c *gin.Context, err error) {
	msg := "invalid request"
	if err != nil {
		msg = err.Error()
	}
	Error(c, http.StatusBadRequest, CodeValidationFailed, msg)
}

// FromError maps a domain error to its HTTP status and stable code. Unknown
// errors become a 500 without leaking internals.
func FromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, xerrors.ErrInvalidCredentials):
		Error(c, http.StatusUnauthorized, CodeInvalidCredentials, "invalid email or password")
	case errors.Is(err, xerrors.ErrAccountSuspended):
		Error(c, http.StatusForbidden, CodeAccountSuspended, "account is suspended")
	case errors.Is(err, xerrors.ErrRateLimited):
		Error(c, http.StatusTooManyRequests, CodeRateLimited, "too many attempts, try again later")
	case errors.Is(err, xerrors.ErrInvalidRefreshToken):
		Error(c, http.StatusUnauthorized, CodeInvalidRefreshToken, "invalid refresh token")
	case errors.Is(err, xerrors.ErrTokenRevoked):
		Error(c, http.StatusUnauthorized, CodeTokenRevoked, "token has been revoked")
	case errors.Is(err, xerrors.ErrInvalidToken):
		Error(c, http.StatusUnauthorized, CodeInvalidToken, "invalid or expired token")
	case errors.Is(err, xerrors.ErrForbiddenRole):
		Error(c, http.StatusForbidden, CodeForbiddenRole, "you do not have the requested role")
	case errors.Is(err, xerrors.ErrSessionNotFound):
		Error(c, http.StatusNotFound, CodeSessionNotFound, "session not found")
	case errors.Is(err, xerrors.ErrCannotRevokeCurrentSession):
		Error(c, http.StatusConflict, CodeCannotRevokeCurrentSession, "use logout to end the current session")
	case errors.Is(err, xerrors.ErrDuplicateEntry):
		Error(c, http.StatusConflict, CodeDuplicateEmail, "email is already registered")
	default:
		Error(c, http.StatusInternalServerError, CodeInternalError, "internal server error")
	}
}
