package services

import (
	"context"
	"errors"

	"dateflix-backend/internal/apperrors"
	"dateflix-backend/internal/models"
	"dateflix-backend/internal/repository"
)

// SessionService serves pairing views and deactivation
type SessionService struct {
	sessions SessionStore
}

// NewSessionService creates a new session service
func NewSessionService(sessions SessionStore) *SessionService {
	return &SessionService{sessions: sessions}
}

// ListActive returns the user's active sessions with both profiles, newest first
func (s *SessionService) ListActive(ctx context.Context, userID string) ([]*models.Session, error) {
	sessions, err := s.sessions.ListActiveWithUsers(ctx, userID)
	if err != nil {
		return nil, apperrors.Upstream("failed to list sessions", err)
	}
	return sessions, nil
}

// PartnerIDs returns the partners of every active session of the user
func (s *SessionService) PartnerIDs(ctx context.Context, userID string) ([]string, error) {
	sessions, err := s.sessions.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Upstream("failed to load active sessions", err)
	}
	partners := make([]string, 0, len(sessions))
	for _, session := range sessions {
		partners = append(partners, session.PartnerOf(userID))
	}
	return partners, nil
}

// Deactivate turns a session off if the user is a member.
// Deactivated sessions no longer take part in match reconciliation.
func (s *SessionService) Deactivate(ctx context.Context, sessionID, userID string) (*models.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, apperrors.Upstream("failed to load session", err)
	}

	if !session.HasMember(userID) {
		return nil, apperrors.ErrNotSessionMember
	}

	if err := s.sessions.Deactivate(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, apperrors.StoreError("failed to deactivate session", err)
	}
	session.IsActive = false
	return session, nil
}
