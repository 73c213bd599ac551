package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"dateflix-backend/internal/apperrors"
	"dateflix-backend/internal/middleware"
	"dateflix-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // mobile clients send no Origin
	},
}

// PartnerLookup lists the partners of a user's active sessions
type PartnerLookup interface {
	PartnerIDs(ctx context.Context, userID string) ([]string, error)
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub      *services.WSHub
	tokens   middleware.TokenValidator
	partners PartnerLookup
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub, tokens middleware.TokenValidator, partners PartnerLookup) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		tokens:   tokens,
		partners: partners,
	}
}

// HandleWebSocket handles GET /ws?token=
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.ValidateWebSocketToken(r.URL.Query().Get("token"), h.tokens)
	if err != nil {
		respondError(w, apperrors.CodeUnauthenticated, apperrors.MessageOf(err), http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(userID, conn)

	ctx := r.Context()
	partners := h.partnerIDs(ctx, userID)
	h.announce(userID, partners, true)
	defer func() {
		h.hub.Unregister(userID, conn)
		// a newer connection for the same user keeps them online
		if !h.hub.IsOnline(userID) {
			h.announce(userID, h.partnerIDs(context.WithoutCancel(ctx), userID), false)
		}
	}()

	log.Info().Str("user_id", userID).Int("partners", len(partners)).Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to parse WebSocket message")
			h.sendError(userID, "Invalid message format")
			continue
		}

		h.handleMessage(ctx, userID, msg)
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, userID string, msg services.WSMessage) {
	switch msg.Type {
	case "ping":
		if err := h.hub.SendToUser(userID, services.WSMessage{Type: "pong", Timestamp: time.Now().UnixMilli()}); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to send pong")
		}
	case "partner_status":
		h.sendPartnerStatus(userID, h.partnerIDs(ctx, userID))
	default:
		h.sendError(userID, "Unknown message type")
	}
}

func (h *WebSocketHandler) partnerIDs(ctx context.Context, userID string) []string {
	partners, err := h.partners.PartnerIDs(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to load partners")
		return nil
	}
	return partners
}

// announce tells every partner that userID came online or went offline,
// and on connect tells userID which partners are online
func (h *WebSocketHandler) announce(userID string, partners []string, online bool) {
	for _, partnerID := range partners {
		h.hub.NotifyPartnerStatus(userID, partnerID, online)
	}
	if online {
		h.sendPartnerStatus(userID, partners)
	}
}

func (h *WebSocketHandler) sendPartnerStatus(userID string, partners []string) {
	for _, partnerID := range partners {
		online := h.hub.IsOnline(partnerID)
		msg := services.WSMessage{
			Type:   "partner_status",
			UserID: partnerID,
			Online: &online,
		}
		if err := h.hub.SendToUser(userID, msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to send partner_status message")
			return
		}
	}
}

func (h *WebSocketHandler) sendError(userID, message string) {
	msg := services.WSMessage{
		Type:    "error",
		Message: message,
	}
	if err := h.hub.SendToUser(userID, msg); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send error message")
	}
}
