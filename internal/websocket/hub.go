// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"helpdesk-service/internal/pkg/jwt"
)

// Event types pushed to connected devices.
const (
	EventConnected      = "connected"
	EventForceLogout    = "force_logout"
	EventSessionRevoked = "session_revoked"
)

// Message is the wire format for session events.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewMessage(eventType string, data interface{}) *Message {
	return &Message{Type: eventType, Data: data, Timestamp: time.Now()}
}

// SessionEventData is the payload of force-logout and session-revoked events.
type SessionEventData struct {
	SessionID string `json:"session_id,omitempty"`
	Reason    string `json:"reason"`
}

// TokenValidator authenticates websocket connections. Satisfied by the auth
// service so revoked tokens cannot open a socket.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*jwt.Claims, error)
}

type broadcastMessage struct {
	userIDs []int64
	message *Message
}

// Hub tracks connected clients per user and fans session events out to them.
type Hub struct {
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage

	validator TokenValidator
	logger    *zap.Logger
}

func NewHub(validator TokenValidator, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMessage, 256),
		validator:  validator,
		logger:     logger,
	}
}

// SetValidator wires the token validator in after construction. The hub and
// the auth service reference each other, so one side is set late.
func (h *Hub) SetValidator(v TokenValidator) {
	h.validator = v
}

// Authenticate validates the presented access token for a new connection.
func (h *Hub) Authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	if h.validator == nil {
		return nil, errNoValidator
	}
	return h.validator.ValidateToken(ctx, token)
}

// Attach hands a newly upgraded connection to the hub loop.
func (h *Hub) Attach(client *Client) {
	h.register <- client
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// ForceLogout notifies every connected device of the user that their
// sessions ended. sessionID narrows the event to one session when set.
func (h *Hub) ForceLogout(userID int64, sessionID string, reason string) {
	eventType := EventForceLogout
	if sessionID != "" {
		eventType = EventSessionRevoked
	}
	select {
	case h.broadcast <- &broadcastMessage{
		userIDs: []int64{userID},
		message: NewMessage(eventType, SessionEventData{SessionID: sessionID, Reason: reason}),
	}:
	default:
		h.logger.Warn("session event dropped, broadcast buffer full", zap.Int64("user_id", userID))
	}
}

// ConnectedClients reports how many sockets a user currently holds.
func (h *Hub) ConnectedClients(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Info("websocket client connected",
		zap.Int64("user_id", client.userID),
		zap.Int64("session_id", client.sessionID),
	)

	if !client.trySend(NewMessage(EventConnected, map[string]interface{}{
		"user_id":    client.userID,
		"session_id": client.sessionID,
	})) {
		h.evictLocked(client)
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()
			if len(clients) == 0 {
				delete(h.clients, client.userID)
			}
			h.logger.Info("websocket client disconnected",
				zap.Int64("user_id", client.userID),
				zap.Int64("session_id", client.sessionID),
			)
		}
	}
}

// deliver runs on the hub loop. A client whose send buffer is full is
// evicted inline; routing the eviction through the unregister channel
// would have the loop waiting on itself.
func (h *Hub) deliver(msg *broadcastMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, userID := range msg.userIDs {
		for client := range h.clients[userID] {
			if !client.trySend(msg.message) {
				h.evictLocked(client)
			}
		}
	}
}

// evictLocked removes a slow client. Caller must hold h.mu.
func (h *Hub) evictLocked(client *Client) {
	clients := h.clients[client.userID]
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
	client.Close()
	h.logger.Warn("websocket client evicted, send buffer full",
		zap.Int64("user_id", client.userID),
		zap.Int64("session_id", client.sessionID),
	)
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
	}
	h.clients = make(map[int64]map[*Client]bool)
}
