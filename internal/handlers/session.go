package handlers

import (
	"context"
	"net/http"

	"dateflix-backend/internal/middleware"
	"dateflix-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// SessionBook is what the session endpoints need from the session service
type SessionBook interface {
	ListActive(ctx context.Context, userID string) ([]*models.Session, error)
	Deactivate(ctx context.Context, sessionID, userID string) (*models.Session, error)
}

// SessionHandler handles pairing requests
type SessionHandler struct {
	sessions SessionBook
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions SessionBook) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sessions, err := h.sessions.ListActive(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list sessions")
		sessions = nil
	}
	if sessions == nil {
		sessions = []*models.Session{}
	}
	respondJSON(w, http.StatusOK, sessions)
}

// Deactivate handles DELETE /api/v1/sessions/{session_id}
func (h *SessionHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	sessionID := chi.URLParam(r, "session_id")

	session, err := h.sessions.Deactivate(r.Context(), sessionID, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("session_id", sessionID).
			Msg("Failed to deactivate session")
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("session_id", sessionID).
		Msg("Session deactivated")
	respondJSON(w, http.StatusOK, session)
}
