package handlers

import (
	"context"
	"net/http"

	"dateflix-backend/internal/apperrors"
	"dateflix-backend/internal/middleware"
	"dateflix-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// UserDirectory is what the user endpoints need from the user service
type UserDirectory interface {
	Sync(ctx context.Context, identity models.Identity) (*models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdatePushToken(ctx context.Context, userID, pushToken string) error
	GenerateJWT(userID string) (string, error)
}

// IdentityVerifier resolves an identity provider session token to its user id
type IdentityVerifier interface {
	VerifyIdentity(token string) (string, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	users      UserDirectory
	identities IdentityVerifier
}

// NewUserHandler creates a new user handler
func NewUserHandler(users UserDirectory, identities IdentityVerifier) *UserHandler {
	return &UserHandler{users: users, identities: identities}
}

// SyncResponse is the synced user and a bearer token for later calls
type SyncResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Sync handles POST /api/v1/users/sync. The caller presents the identity
// provider's session token as a bearer token; the user id comes from its subject.
func (h *UserHandler) Sync(w http.ResponseWriter, r *http.Request) {
	providerToken, err := middleware.BearerToken(r)
	if err != nil {
		respondError(w, apperrors.CodeUnauthenticated, apperrors.MessageOf(err), http.StatusUnauthorized)
		return
	}
	externalID, err := h.identities.VerifyIdentity(providerToken)
	if err != nil {
		log.Warn().Err(err).Msg("Rejected identity token")
		respondError(w, apperrors.CodeUnauthenticated, "Invalid identity token", http.StatusUnauthorized)
		return
	}

	var identity models.Identity
	if !decodeBody(w, r, &identity) {
		return
	}
	identity.ExternalID = externalID

	user, err := h.users.Sync(r.Context(), identity)
	if err != nil {
		log.Error().Err(err).Str("user_id", identity.ExternalID).Msg("Failed to sync user")
		respondAppError(w, err)
		return
	}

	token, err := h.users.GenerateJWT(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		respondError(w, apperrors.CodeInternal, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User synced")
	respondJSON(w, http.StatusOK, SyncResponse{User: user, Token: token})
}

// Me handles GET /api/v1/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load user")
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// PushTokenRequest carries the device token for push notifications
type PushTokenRequest struct {
	PushToken string `json:"push_token" validate:"max=256"`
}

// UpdatePushToken handles PUT /api/v1/me/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req PushTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.users.UpdatePushToken(r.Context(), userID, req.PushToken); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update push token")
		respondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
