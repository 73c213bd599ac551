package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"dateflix-backend/internal/apperrors"
	"dateflix-backend/internal/metrics"
	"dateflix-backend/internal/models"
	"dateflix-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultCodeLength    = 8
	defaultInvitationTTL = 7 * 24 * time.Hour
	codeChars            = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteLinkPrefix     = "movieapp://invite/"
)

// InvitationService issues and redeems invite codes
type InvitationService struct {
	invitations InvitationStore
	sessions    SessionStore
	listeners   EventListener
	background  *Background
	codeLength  int
	ttl         time.Duration
	now         func() time.Time
}

// InvitationDependencies groups the collaborators of InvitationService
type InvitationDependencies struct {
	Invitations InvitationStore
	Sessions    SessionStore
	Listeners   EventListener
	Background  *Background
	CodeLength  int
	TTL         time.Duration
}

// NewInvitationService creates a new invitation service
func NewInvitationService(deps InvitationDependencies) *InvitationService {
	if deps.CodeLength <= 0 {
		deps.CodeLength = defaultCodeLength
	}
	if deps.TTL <= 0 {
		deps.TTL = defaultInvitationTTL
	}
	if deps.Background == nil {
		deps.Background = NewBackground()
	}
	return &InvitationService{
		invitations: deps.Invitations,
		sessions:    deps.Sessions,
		listeners:   deps.Listeners,
		background:  deps.Background,
		codeLength:  deps.CodeLength,
		ttl:         deps.TTL,
		now:         time.Now,
	}
}

// CreatedInvitation is a new invitation with the text the client shares
type CreatedInvitation struct {
	*models.Invitation
	InviteLink   string `json:"invite_link"`
	ShareMessage string `json:"share_message"`
}

// Create issues a pending invitation that expires after the configured TTL.
// Codes are not checked for collisions.
func (s *InvitationService) Create(ctx context.Context, senderID string, recipientEmail *string) (*CreatedInvitation, error) {
	if recipientEmail != nil && strings.TrimSpace(*recipientEmail) == "" {
		recipientEmail = nil
	}

	now := s.now().UTC()
	inv := &models.Invitation{
		ID:             uuid.New().String(),
		SenderID:       senderID,
		RecipientEmail: recipientEmail,
		InviteCode:     generateCode(s.codeLength),
		Status:         models.InvitationPending,
		ExpiresAt:      now.Add(s.ttl),
		CreatedAt:      now,
	}

	if err := s.invitations.Create(ctx, inv); err != nil {
		metrics.InvitationsTotal.WithLabelValues("failed").Inc()
		return nil, apperrors.StoreError("failed to create invitation", err)
	}
	metrics.InvitationsTotal.WithLabelValues("created").Inc()

	link := inviteLinkPrefix + inv.InviteCode
	return &CreatedInvitation{
		Invitation:   inv,
		InviteLink:   link,
		ShareMessage: fmt.Sprintf("Join me on Movie Circle! Use code: %s\n\nOr use this link: %s", inv.InviteCode, link),
	}, nil
}

// Accept redeems a pending code and pairs the sender with the accepter.
//
// The accept update only applies while the invitation is still pending, so of
// two concurrent redemptions only one can pass it; the other observes
// ErrInvalidOrExpiredInvitation. If the session insert fails afterwards the
// invitation stays accepted without a session.
func (s *InvitationService) Accept(ctx context.Context, code, accepterID string) (*models.Session, error) {
	code = NormalizeCode(code)
	if code == "" {
		metrics.InvitationsTotal.WithLabelValues("not_found").Inc()
		return nil, apperrors.ErrInvalidOrExpiredInvitation
	}

	inv, err := s.invitations.GetPendingByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.InvitationsTotal.WithLabelValues("not_found").Inc()
			return nil, apperrors.ErrInvalidOrExpiredInvitation
		}
		return nil, apperrors.Upstream("failed to look up invitation", err)
	}

	now := s.now().UTC()
	if inv.ExpiresAt.Before(now) {
		if err := s.invitations.MarkExpired(ctx, inv.ID); err != nil {
			log.Error().Err(err).Str("invitation_id", inv.ID).Msg("Failed to mark invitation expired")
		}
		metrics.InvitationsTotal.WithLabelValues("expired").Inc()
		return nil, apperrors.ErrInvitationExpired
	}

	if inv.SenderID == accepterID {
		return nil, apperrors.ErrSelfInvitation
	}

	accepted, err := s.invitations.MarkAccepted(ctx, inv.ID, accepterID, now)
	if err != nil {
		metrics.InvitationsTotal.WithLabelValues("failed").Inc()
		return nil, apperrors.WithCause(apperrors.ErrUpdateFailed, err)
	}
	if !accepted {
		metrics.InvitationsTotal.WithLabelValues("not_found").Inc()
		return nil, apperrors.ErrInvalidOrExpiredInvitation
	}

	session := &models.Session{
		ID:        uuid.New().String(),
		User1ID:   inv.SenderID,
		User2ID:   accepterID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		metrics.InvitationsTotal.WithLabelValues("failed").Inc()
		log.Error().
			Err(err).
			Str("invitation_id", inv.ID).
			Str("invite_code", code).
			Msg("Invitation accepted but session creation failed")
		return nil, apperrors.WithCause(apperrors.ErrSessionCreationFailed, err)
	}
	metrics.InvitationsTotal.WithLabelValues("accepted").Inc()

	if s.listeners != nil {
		s.background.Go(ctx, "session_created", func(ctx context.Context) {
			s.listeners.SessionCreated(ctx, session, accepterID)
		})
	}

	return session, nil
}

// ListForUser returns invitations the user sent or accepted, newest first
func (s *InvitationService) ListForUser(ctx context.Context, userID string) ([]*models.Invitation, error) {
	invitations, err := s.invitations.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Upstream("failed to list invitations", err)
	}
	return invitations, nil
}

// Wait blocks until invitation follow-ups have finished
func (s *InvitationService) Wait() {
	s.background.Wait()
}

// NormalizeCode trims and upper-cases a user-typed code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// generateCode draws a random uppercase alphanumeric code
func generateCode(length int) string {
	code := make([]byte, length)
	for i := range code {
		code[i] = codeChars[rand.Intn(len(codeChars))]
	}
	return string(code)
}
