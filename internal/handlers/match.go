package handlers

import (
	"context"
	"net/http"

	"dateflix-backend/internal/middleware"
	"dateflix-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MatchBook is what the match endpoints need from the match service
type MatchBook interface {
	ListForUser(ctx context.Context, userID string) ([]*models.Match, error)
	SetWatched(ctx context.Context, userID, matchID string, watched bool) (*models.Match, error)
}

// MatchHandler serves the match list
type MatchHandler struct {
	matches MatchBook
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matches MatchBook) *MatchHandler {
	return &MatchHandler{matches: matches}
}

// List handles GET /api/v1/matches
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	matches, err := h.matches.ListForUser(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list matches")
		matches = nil
	}
	if matches == nil {
		matches = []*models.Match{}
	}
	respondJSON(w, http.StatusOK, matches)
}

// WatchedRequest sets the watched flag of a match
type WatchedRequest struct {
	Watched *bool `json:"watched" validate:"required"`
}

// SetWatched handles PATCH /api/v1/matches/{match_id}/watched
func (h *MatchHandler) SetWatched(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	matchID := chi.URLParam(r, "match_id")

	var req WatchedRequest
	if !decodeBody(w, r, &req) {
		return
	}

	match, err := h.matches.SetWatched(r.Context(), userID, matchID, *req.Watched)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("match_id", matchID).
			Msg("Failed to update match")
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, match)
}
