// internal/handlers/websocket/websocket.go
package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"helpdesk-service/internal/middleware"
	"helpdesk-service/internal/pkg/response"
	ws "helpdesk-service/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the configured web origin once the frontend
		// domain is settled
		return true
	},
}

type WebSocketHandler struct {
	hub    *ws.Hub
	logger *zap.Logger
}

func NewWebSocketHandler(hub *ws.Hub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
	}
}

// HandleConnection authenticates and upgrades a websocket connection.
// Browsers cannot set headers on websocket dials, so the token also comes
// via the token query parameter.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = middleware.ExtractToken(c)
	}
	if token == "" {
		response.Error(c, http.StatusUnauthorized, response.CodeInvalidToken, "missing authentication token")
		return
	}

	claims, err := h.hub.Authenticate(c.Request.Context(), token)
	if err != nil {
		h.logger.Warn("websocket authentication failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		response.FromError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		return
	}

	client := ws.NewClient(h.hub, conn, claims.UserID, claims.SessionID)
	h.hub.Attach(client)

	go client.WritePump()
	go client.ReadPump()
}
