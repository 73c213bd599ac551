package services

import (
	"context"

	"dateflix-backend/internal/apperrors"
	"dateflix-backend/internal/models"

	"golang.org/x/sync/errgroup"
)

// StatsService aggregates counts for the profile screen. Nothing is cached.
type StatsService struct {
	swipes   SwipeStore
	matches  MatchStore
	sessions SessionStore
}

// NewStatsService creates a new stats service
func NewStatsService(swipes SwipeStore, matches MatchStore, sessions SessionStore) *StatsService {
	return &StatsService{swipes: swipes, matches: matches, sessions: sessions}
}

// Get counts the user's swipes, matches and active sessions concurrently
func (s *StatsService) Get(ctx context.Context, userID string) (*models.Stats, error) {
	var stats models.Stats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.swipes.CountByUser(gctx, userID)
		stats.TotalSwipes = n
		return err
	})
	g.Go(func() error {
		n, err := s.matches.CountByUser(gctx, userID)
		stats.TotalMatches = n
		return err
	})
	g.Go(func() error {
		n, err := s.sessions.CountActiveByUser(gctx, userID)
		stats.ActiveSessions = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, apperrors.Upstream("failed to load stats", err)
	}
	return &stats, nil
}
