package handlers

import (
	"context"
	"net/http"

	"dateflix-backend/internal/middleware"
	"dateflix-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// StatsSource is what the stats endpoint needs from the stats service
type StatsSource interface {
	Get(ctx context.Context, userID string) (*models.Stats, error)
}

// StatsHandler serves the profile counters
type StatsHandler struct {
	stats StatsSource
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(stats StatsSource) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Get handles GET /api/v1/stats. Read failures render zero counts.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	stats, err := h.stats.Get(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load stats")
		stats = &models.Stats{}
	}
	respondJSON(w, http.StatusOK, stats)
}
