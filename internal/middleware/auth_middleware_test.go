package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func contextWithAuthHeader(value string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/auth/status", nil)
	if value != "" {
		c.Request.Header.Set("Authorization", value)
	}
	return c
}

func TestExtractTokenBearerPrefix(t *testing.T) {
	c := contextWithAuthHeader("Bearer abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", ExtractToken(c))
}

func TestExtractTokenCaseInsensitivePrefix(t *testing.T) {
	c := contextWithAuthHeader("bearer abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", ExtractToken(c))
}

func TestExtractTokenBareToken(t *testing.T) {
	// Some clients send the raw token without a scheme.
	c := contextWithAuthHeader("abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", ExtractToken(c))
}

func TestExtractTokenMissingHeader(t *testing.T) {
	c := contextWithAuthHeader("")
	assert.Equal(t, "", ExtractToken(c))
}

func TestExtractTokenUnknownScheme(t *testing.T) {
	c := contextWithAuthHeader("Basic dXNlcjpwYXNz")
	assert.Equal(t, "", ExtractToken(c))
}
