// internal/app/router.go
package app

import (
	"github.com/gin-gonic/gin"

	authHandler "helpdesk-service/internal/handlers/auth"
	wsHandler "helpdesk-service/internal/handlers/websocket"
	"helpdesk-service/internal/middleware"
)

type Handlers struct {
	AuthHandler    *authHandler.AuthHandler
	WSHandler      *wsHandler.WebSocketHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/register", h.AuthHandler.Register)
		authPublic.POST("/login", h.AuthHandler.Login)
		// Refresh and status accept expired or absent access tokens, so
		// they sit outside the Auth() chain.
		authPublic.POST("/refresh", h.AuthHandler.Refresh)
		authPublic.GET("/status", h.AuthHandler.Status)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.POST("/select-role", h.AuthHandler.SelectRole)
		authProtected.GET("/sessions", h.AuthHandler.ListSessions)
		authProtected.DELETE("/sessions/:session_id", h.AuthHandler.RevokeSession)
	}
}
