// internal/middleware/helpers.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"helpdesk-service/internal/pkg/jwt"
)

// GetClaims gets the validated token claims from context.
func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

// MustGetClaims gets claims from context or panics. Only for handlers
// mounted behind Auth().
func MustGetClaims(c *gin.Context) *jwt.Claims {
	claims, ok := GetClaims(c)
	if !ok {
		panic("claims not found in context")
	}
	return claims
}
