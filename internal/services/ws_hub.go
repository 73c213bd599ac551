package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"dateflix-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp,omitempty"`
	UserID    string      `json:"user_id,omitempty"`
	Online    *bool       `json:"online,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// wsConn serializes writes; gorilla connections allow one concurrent writer
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages WebSocket connections and forwards domain events to them
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*wsConn
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*wsConn),
	}
}

// Register registers a new WebSocket connection for a user.
// An existing connection for the same user is closed.
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, exists := h.connections[userID]; exists {
		existing.conn.Close()
	}
	h.connections[userID] = &wsConn{conn: conn}

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes the user's connection if it is still conn.
// A nil conn removes whatever is registered.
func (h *WSHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	existing, exists := h.connections[userID]
	if !exists {
		return
	}
	if conn != nil && existing.conn != conn {
		return
	}
	existing.conn.Close()
	delete(h.connections, userID)
	log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	c, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := c.write(data); err != nil {
		h.Unregister(userID, c.conn)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}

// NotifyPartnerStatus tells partnerID whether userID is online
func (h *WSHub) NotifyPartnerStatus(userID, partnerID string, online bool) {
	if partnerID == "" || !h.IsOnline(partnerID) {
		return
	}

	message := WSMessage{
		Type:   "partner_status",
		UserID: userID,
		Online: &online,
	}

	if err := h.SendToUser(partnerID, message); err != nil {
		log.Error().
			Err(err).
			Str("user_id", partnerID).
			Msg("Failed to notify partner status")
	}
}

// MatchCreated sends the match to both members who are connected
func (h *WSHub) MatchCreated(_ context.Context, match *models.Match, _ string) {
	message := WSMessage{
		Type:      "match_created",
		Timestamp: match.MatchedAt.UnixMilli(),
		Data:      match,
	}
	for _, userID := range []string{match.User1ID, match.User2ID} {
		if !h.IsOnline(userID) {
			continue
		}
		if err := h.SendToUser(userID, message); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Failed to send match_created")
		}
	}
}

// SessionCreated sends the new session to both members who are connected
func (h *WSHub) SessionCreated(_ context.Context, session *models.Session, _ string) {
	message := WSMessage{
		Type:      "session_created",
		Timestamp: session.CreatedAt.UnixMilli(),
		Data:      session,
	}
	for _, userID := range []string{session.User1ID, session.User2ID} {
		if !h.IsOnline(userID) {
			continue
		}
		if err := h.SendToUser(userID, message); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Failed to send session_created")
		}
	}
}
