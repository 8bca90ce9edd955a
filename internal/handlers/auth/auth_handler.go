// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"helpdesk-service/internal/domain/auth"
	"helpdesk-service/internal/middleware"
	"helpdesk-service/internal/pkg/response"
	authUsecase "helpdesk-service/internal/service/auth"
)

const refreshCookieName = "refresh_token"

// CookieConfig controls the refresh-token cookie attributes.
type CookieConfig struct {
	Path   string
	Domain string
	Secure bool
	MaxAge int // seconds; applied only when the session should persist
}

type AuthHandler struct {
	authService *authUsecase.AuthService
	cookies     CookieConfig
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, cookies CookieConfig, logger *zap.Logger) *AuthHandler {
	if cookies.Path == "" {
		cookies.Path = "/api/auth"
	}
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		logger:      logger,
	}
}

// ========== Registration ==========

// Register handles user registration (public endpoint).
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}
	req.Device = deviceInfo(c)

	payload, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("registration failed", zap.String("email", req.Email), zap.Error(err))
		response.FromError(c, err)
		return
	}

	h.setRefreshCookie(c, payload.RefreshSecret, true)
	response.JSON(c, http.StatusCreated, payload)
}

// ========== Login ==========

// Login handles user login. The refresh secret never appears in the JSON
// body; it travels only in the HttpOnly cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}
	req.Device = deviceInfo(c)

	payload, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("login failed",
			zap.String("email", req.Email),
			zap.String("ip", req.Device.IPAddress),
			zap.Error(err),
		)
		response.FromError(c, err)
		return
	}

	h.logger.Info("user logged in",
		zap.Int64("user_id", payload.User.ID),
		zap.Int64("session_id", payload.SessionID),
	)

	h.setRefreshCookie(c, payload.RefreshSecret, req.RememberMe)
	response.JSON(c, http.StatusOK, payload)
}

// ========== Refresh ==========

// Refresh rotates the refresh token. Public route: the access token may be
// expired, so it is read straight from the header rather than via Auth().
func (h *AuthHandler) Refresh(c *gin.Context) {
	secret := h.refreshSecret(c)
	if secret == "" {
		response.Error(c, http.StatusUnauthorized, response.CodeRefreshTokenRequired, "refresh token required")
		return
	}

	accessToken := middleware.ExtractToken(c)

	payload, err := h.authService.Refresh(c.Request.Context(), accessToken, secret, deviceInfo(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	h.setRefreshCookie(c, payload.RefreshSecret, true)
	response.JSON(c, http.StatusOK, payload)
}

// ========== Logout ==========

// Logout ends the current session, or every session with everywhere=true.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.MustGetClaims(c)

	var req auth.LogoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ValidationError(c, err)
			return
		}
	}

	if err := h.authService.Logout(c.Request.Context(), claims, h.refreshSecret(c), req.Everywhere); err != nil {
		h.logger.Error("logout failed", zap.Int64("user_id", claims.UserID), zap.Error(err))
		response.FromError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	response.JSON(c, http.StatusOK, gin.H{"success": true})
}

// ========== Status ==========

// Status reports whether the presented token is valid. Public route: an
// absent or bad token yields isAuthenticated=false rather than a 401.
func (h *AuthHandler) Status(c *gin.Context) {
	token := middleware.ExtractToken(c)
	if token == "" {
		response.JSON(c, http.StatusOK, &auth.StatusPayload{IsAuthenticated: false})
		return
	}

	claims, err := h.authService.ValidateToken(c.Request.Context(), token)
	if err != nil {
		response.JSON(c, http.StatusOK, &auth.StatusPayload{IsAuthenticated: false})
		return
	}

	payload, err := h.authService.Status(c.Request.Context(), claims)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payload)
}

// ========== Sessions ==========

// ListSessions lists the caller's active device sessions.
func (h *AuthHandler) ListSessions(c *gin.Context) {
	claims := middleware.MustGetClaims(c)

	views, err := h.authService.ListSessions(c.Request.Context(), claims)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"sessions": views})
}

// RevokeSession revokes one of the caller's other sessions.
func (h *AuthHandler) RevokeSession(c *gin.Context) {
	claims := middleware.MustGetClaims(c)

	sessionID, err := strconv.ParseInt(c.Param("session_id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "session not found")
		return
	}

	if err := h.authService.RevokeSession(c.Request.Context(), claims, sessionID); err != nil {
		response.FromError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true})
}

// ========== Role Switch ==========

// SelectRole switches the caller's active role.
func (h *AuthHandler) SelectRole(c *gin.Context) {
	claims := middleware.MustGetClaims(c)

	var req auth.SelectRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	payload, err := h.authService.SelectRole(c.Request.Context(), claims, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payload)
}

// ========== Helpers ==========

// refreshSecret reads the rotating secret from the cookie, falling back to
// the X-Refresh-Token header for non-browser clients.
func (h *AuthHandler) refreshSecret(c *gin.Context) string {
	if v, err := c.Cookie(refreshCookieName); err == nil && v != "" {
		return v
	}
	return c.GetHeader("X-Refresh-Token")
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, secret string, persist bool) {
	maxAge := 0 // session cookie
	if persist {
		maxAge = h.cookies.MaxAge
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, secret, maxAge, h.cookies.Path, h.cookies.Domain, h.cookies.Secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, h.cookies.Path, h.cookies.Domain, h.cookies.Secure, true)
}

func deviceInfo(c *gin.Context) auth.DeviceInfo {
	name := c.GetHeader("X-Device-Name")
	if name == "" {
		name = c.GetHeader("User-Agent")
	}
	return auth.DeviceInfo{
		DeviceName: name,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
	}
}
