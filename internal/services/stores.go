package services

import (
	"context"
	"time"

	"dateflix-backend/internal/models"
)

// UserStore is the persistence surface the user directory needs
type UserStore interface {
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// SwipeStore is the append-only swipe ledger
type SwipeStore interface {
	Create(ctx context.Context, swipe *models.Swipe) error
	HasLiked(ctx context.Context, userID string, movieID int64) (bool, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

// SessionStore persists pairings
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	ListActiveByUser(ctx context.Context, userID string) ([]*models.Session, error)
	ListActiveWithUsers(ctx context.Context, userID string) ([]*models.Session, error)
	Deactivate(ctx context.Context, id string) error
	CountActiveByUser(ctx context.Context, userID string) (int, error)
}

// InvitationStore persists invite codes
type InvitationStore interface {
	Create(ctx context.Context, inv *models.Invitation) error
	GetPendingByCode(ctx context.Context, code string) (*models.Invitation, error)
	MarkExpired(ctx context.Context, id string) error
	MarkAccepted(ctx context.Context, id, recipientID string, at time.Time) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Invitation, error)
}

// MatchStore persists matches
type MatchStore interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Match, error)
	SetWatched(ctx context.Context, id string, watched bool) error
	SetPosterKey(ctx context.Context, id, key string) error
	CountByUser(ctx context.Context, userID string) (int, error)
}
