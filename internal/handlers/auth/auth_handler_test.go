package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler() *AuthHandler {
	return NewAuthHandler(nil, CookieConfig{Secure: true, MaxAge: 3600}, zap.NewNop())
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("POST", "/api/auth/refresh", nil)
	return c, rec
}

func TestRefreshSecretPrefersCookie(t *testing.T) {
	h := newTestHandler()
	c, _ := newTestContext()
	c.Request.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "from-cookie"})
	c.Request.Header.Set("X-Refresh-Token", "from-header")

	assert.Equal(t, "from-cookie", h.refreshSecret(c))
}

func TestRefreshSecretHeaderFallback(t *testing.T) {
	h := newTestHandler()
	c, _ := newTestContext()
	c.Request.Header.Set("X-Refresh-Token", "from-header")

	assert.Equal(t, "from-header", h.refreshSecret(c))
}

func TestRefreshSecretAbsent(t *testing.T) {
	h := newTestHandler()
	c, _ := newTestContext()

	assert.Equal(t, "", h.refreshSecret(c))
}

func TestSetRefreshCookieAttributes(t *testing.T) {
	h := newTestHandler()
	c, rec := newTestContext()

	h.setRefreshCookie(c, "secret-value", true)

	header := rec.Header().Get("Set-Cookie")
	require.NotEmpty(t, header)
	assert.Contains(t, header, refreshCookieName+"=secret-value")
	assert.Contains(t, header, "HttpOnly")
	assert.Contains(t, header, "Secure")
	assert.Contains(t, header, "SameSite=Strict")
	assert.Contains(t, header, "Path=/api/auth")
	assert.Contains(t, header, "Max-Age=3600")
}

func TestSetRefreshCookieSessionScoped(t *testing.T) {
	h := newTestHandler()
	c, rec := newTestContext()

	// Without rememberMe the cookie must not persist across browser restarts.
	h.setRefreshCookie(c, "secret-value", false)

	header := rec.Header().Get("Set-Cookie")
	require.NotEmpty(t, header)
	assert.NotContains(t, header, "Max-Age")
	assert.NotContains(t, header, "Expires")
}

func TestClearRefreshCookieExpires(t *testing.T) {
	h := newTestHandler()
	c, rec := newTestContext()

	h.clearRefreshCookie(c)

	header := rec.Header().Get("Set-Cookie")
	require.NotEmpty(t, header)
	assert.True(t, strings.Contains(header, "Max-Age=0") || strings.Contains(header, "Expires="))
}
