package services

import (
	"context"
	"time"

	"dateflix-backend/internal/apperrors"
	"dateflix-backend/internal/metrics"
	"dateflix-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Reconciler checks a like against the user's partners
type Reconciler interface {
	Reconcile(ctx context.Context, userID string, movieID int64, movie models.Movie) (*models.Match, error)
}

// SwipeResult reports the two steps of recording a swipe separately.
// Swipe is always set when Record returns no error; MatchErr is set when the
// swipe was stored but the match check failed.
type SwipeResult struct {
	Swipe    *models.Swipe
	Match    *models.Match
	MatchErr error
}

// SwipeService appends swipes and triggers match reconciliation on likes
type SwipeService struct {
	users      UserStore
	swipes     SwipeStore
	reconciler Reconciler
	now        func() time.Time
}

// NewSwipeService creates a new swipe service
func NewSwipeService(users UserStore, swipes SwipeStore, reconciler Reconciler) *SwipeService {
	return &SwipeService{
		users:      users,
		swipes:     swipes,
		reconciler: reconciler,
		now:        time.Now,
	}
}

// Record appends a swipe. A like is followed by reconciliation whose failure
// is reported in the result without undoing the swipe.
func (s *SwipeService) Record(ctx context.Context, userID string, movieID int64, liked bool, movie models.Movie) (*SwipeResult, error) {
	if movieID <= 0 {
		return nil, apperrors.InvalidArg("movie_id must be positive")
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, apperrors.Upstream("failed to check user", err)
	}
	if !exists {
		return nil, apperrors.ErrUserNotFound
	}

	if movie.ID == 0 {
		movie.ID = movieID
	}

	swipe := &models.Swipe{
		ID:        uuid.New().String(),
		UserID:    userID,
		MovieID:   movieID,
		Liked:     liked,
		MovieData: movie,
		CreatedAt: s.now().UTC(),
	}
	if err := s.swipes.Create(ctx, swipe); err != nil {
		return nil, apperrors.StoreError("failed to save swipe", err)
	}
	metrics.SwipesTotal.WithLabelValues(verdict(liked)).Inc()

	result := &SwipeResult{Swipe: swipe}
	if !liked {
		return result, nil
	}

	match, err := s.reconciler.Reconcile(ctx, userID, movieID, movie)
	if err != nil {
		metrics.MatchCheckFailures.Inc()
		log.Warn().
			Err(err).
			Str("user_id", userID).
			Int64("movie_id", movieID).
			Msg("Swipe saved but match check failed")
		result.MatchErr = err
		return result, nil
	}
	result.Match = match
	return result, nil
}

func verdict(liked bool) string {
	if liked {
		return "like"
	}
	return "pass"
}
