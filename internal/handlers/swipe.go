package handlers

import (
	"context"
	"net/http"

	"dateflix-backend/internal/apperrors"
	"dateflix-backend/internal/middleware"
	"dateflix-backend/internal/models"
	"dateflix-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// SwipeRecorder is what the swipe endpoint needs from the swipe service
type SwipeRecorder interface {
	Record(ctx context.Context, userID string, movieID int64, liked bool, movie models.Movie) (*services.SwipeResult, error)
}

// SwipeHandler handles swipe requests
type SwipeHandler struct {
	swipes SwipeRecorder
}

// NewSwipeHandler creates a new swipe handler
func NewSwipeHandler(swipes SwipeRecorder) *SwipeHandler {
	return &SwipeHandler{swipes: swipes}
}

// SwipeRequest is a like or pass on one movie
type SwipeRequest struct {
	MovieID   int64         `json:"movie_id" validate:"required,gt=0"`
	Liked     *bool         `json:"liked" validate:"required"`
	MovieData *models.Movie `json:"movie_data" validate:"omitempty"`
}

// SwipeResponse reports the stored swipe and the outcome of the match check
type SwipeResponse struct {
	Swipe      *models.Swipe  `json:"swipe"`
	IsMatch    bool           `json:"is_match"`
	Match      *models.Match  `json:"match,omitempty"`
	MatchError *ErrorResponse `json:"match_error,omitempty"`
}

// Create handles POST /api/v1/swipes
func (h *SwipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req SwipeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var movie models.Movie
	if req.MovieData != nil {
		movie = *req.MovieData
	}

	result, err := h.swipes.Record(r.Context(), userID, req.MovieID, *req.Liked, movie)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Int64("movie_id", req.MovieID).
			Msg("Failed to record swipe")
		respondAppError(w, err)
		return
	}

	resp := SwipeResponse{
		Swipe:   result.Swipe,
		IsMatch: result.Match != nil,
		Match:   result.Match,
	}
	if result.MatchErr != nil {
		resp.MatchError = &ErrorResponse{
			Code:  apperrors.CodeOf(result.MatchErr),
			Error: apperrors.MessageOf(result.MatchErr),
		}
	}
	respondJSON(w, http.StatusCreated, resp)
}
