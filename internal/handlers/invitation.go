package handlers

import (
	"context"
	"net/http"

	"dateflix-backend/internal/middleware"
	"dateflix-backend/internal/models"
	"dateflix-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// InvitationDesk is what the invitation endpoints need from the invitation service
type InvitationDesk interface {
	Create(ctx context.Context, senderID string, recipientEmail *string) (*services.CreatedInvitation, error)
	Accept(ctx context.Context, code, accepterID string) (*models.Session, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Invitation, error)
}

// InvitationHandler handles invitation requests
type InvitationHandler struct {
	invitations InvitationDesk
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(invitations InvitationDesk) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

// CreateInvitationRequest optionally names who the code is meant for
type CreateInvitationRequest struct {
	RecipientEmail *string `json:"recipient_email" validate:"omitempty,email"`
}

// Create handles POST /api/v1/invitations
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateInvitationRequest
	if r.ContentLength != 0 {
		if !decodeBody(w, r, &req) {
			return
		}
	}

	created, err := h.invitations.Create(r.Context(), userID, req.RecipientEmail)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create invitation")
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("invite_code", created.InviteCode).
		Msg("Invitation created")
	respondJSON(w, http.StatusCreated, created)
}

// List handles GET /api/v1/invitations
func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	invitations, err := h.invitations.ListForUser(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list invitations")
		invitations = nil
	}
	if invitations == nil {
		invitations = []*models.Invitation{}
	}
	respondJSON(w, http.StatusOK, invitations)
}

// AcceptInvitationRequest carries the code the user typed or followed
type AcceptInvitationRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

// Accept handles POST /api/v1/invitations/accept
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req AcceptInvitationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := h.invitations.Accept(r.Context(), req.Code, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("invite_code", services.NormalizeCode(req.Code)).
			Msg("Failed to accept invitation")
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("session_id", session.ID).
		Msg("Invitation accepted")
	respondJSON(w, http.StatusOK, session)
}
