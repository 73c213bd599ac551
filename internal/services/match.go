package services

import (
	"context"
	"errors"
	"time"

	"dateflix-backend/internal/apperrors"
	"dateflix-backend/internal/metrics"
	"dateflix-backend/internal/models"
	"dateflix-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PosterSigner turns an archived poster key into a temporary download URL
type PosterSigner interface {
	PosterURL(ctx context.Context, key string) (string, error)
}

// MatchService reconciles likes into matches and serves the match views
type MatchService struct {
	sessions   SessionStore
	swipes     SwipeStore
	matches    MatchStore
	listeners  EventListener
	posters    PosterSigner
	background *Background
	now        func() time.Time
}

// MatchDependencies groups the collaborators of MatchService.
// Listeners and Posters are optional.
type MatchDependencies struct {
	Sessions   SessionStore
	Swipes     SwipeStore
	Matches    MatchStore
	Listeners  EventListener
	Posters    PosterSigner
	Background *Background
}

// NewMatchService creates a new match service
func NewMatchService(deps MatchDependencies) *MatchService {
	background := deps.Background
	if background == nil {
		background = NewBackground()
	}
	return &MatchService{
		sessions:   deps.Sessions,
		swipes:     deps.Swipes,
		matches:    deps.Matches,
		listeners:  deps.Listeners,
		posters:    deps.Posters,
		background: background,
		now:        time.Now,
	}
}

// Reconcile looks for a partner in any active session who already liked the
// movie and records a match for the first one found. It returns nil when no
// partner liked it. Lookup and insert failures are returned without retry.
func (s *MatchService) Reconcile(ctx context.Context, userID string, movieID int64, movie models.Movie) (*models.Match, error) {
	sessions, err := s.sessions.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Upstream("failed to load active sessions", err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	for _, session := range sessions {
		partnerID := session.PartnerOf(userID)

		liked, err := s.swipes.HasLiked(ctx, partnerID, movieID)
		if err != nil {
			return nil, apperrors.Upstream("failed to check partner swipe", err)
		}
		if !liked {
			continue
		}

		match := &models.Match{
			ID:        uuid.New().String(),
			MovieID:   movieID,
			User1ID:   session.User1ID,
			User2ID:   session.User2ID,
			MovieData: movie,
			MatchedAt: s.now().UTC(),
		}
		if err := s.matches.Create(ctx, match); err != nil {
			return nil, apperrors.StoreError("failed to create match", err)
		}

		metrics.MatchesTotal.Inc()
		log.Info().
			Str("match_id", match.ID).
			Str("session_id", session.ID).
			Int64("movie_id", movieID).
			Msg("Match created")

		s.announce(ctx, match, userID)
		return match, nil
	}

	return nil, nil
}

func (s *MatchService) announce(ctx context.Context, match *models.Match, actorID string) {
	if s.listeners == nil {
		return
	}
	s.background.Go(ctx, "match_created", func(ctx context.Context) {
		s.listeners.MatchCreated(ctx, match, actorID)
	})
}

// ListForUser returns the user's matches, newest first, with both profiles
func (s *MatchService) ListForUser(ctx context.Context, userID string) ([]*models.Match, error) {
	matches, err := s.matches.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Upstream("failed to list matches", err)
	}

	if s.posters != nil {
		for _, m := range matches {
			if m.PosterKey == nil {
				continue
			}
			url, err := s.posters.PosterURL(ctx, *m.PosterKey)
			if err != nil {
				log.Warn().Err(err).Str("match_id", m.ID).Msg("Failed to sign poster URL")
				continue
			}
			m.PosterURL = url
		}
	}
	return matches, nil
}

// SetWatched marks a match as watched or unwatched. Only members may change it.
func (s *MatchService) SetWatched(ctx context.Context, userID, matchID string, watched bool) (*models.Match, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrMatchNotFound
		}
		return nil, apperrors.Upstream("failed to load match", err)
	}
	if !match.HasMember(userID) {
		return nil, apperrors.ErrNotMatchMember
	}

	if err := s.matches.SetWatched(ctx, matchID, watched); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrMatchNotFound
		}
		return nil, apperrors.StoreError("failed to update match", err)
	}
	match.Watched = watched
	return match, nil
}

// Wait blocks until match follow-ups have finished
func (s *MatchService) Wait() {
	s.background.Wait()
}
