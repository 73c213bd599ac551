package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dateflix-backend/internal/apperrors"
	"dateflix-backend/internal/models"
	"dateflix-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

// UserService handles the user directory and bearer tokens
type UserService struct {
	users     UserStore
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewUserService creates a new user service
func NewUserService(users UserStore, jwtSecret string, tokenTTL time.Duration) *UserService {
	return &UserService{
		users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// Sync upserts the identity provider's profile into the local user record.
// Repeating it with unchanged input only refreshes updated_at.
func (s *UserService) Sync(ctx context.Context, identity models.Identity) (*models.User, error) {
	externalID := strings.TrimSpace(identity.ExternalID)
	if externalID == "" {
		return nil, apperrors.InvalidArg("external_id is required")
	}

	user := &models.User{
		ID:        externalID,
		Email:     strings.TrimSpace(identity.Email),
		Username:  strings.TrimSpace(identity.Username),
		FirstName: strings.TrimSpace(identity.FirstName),
		LastName:  strings.TrimSpace(identity.LastName),
		ImageURL:  strings.TrimSpace(identity.ImageURL),
		UpdatedAt: s.now().UTC(),
	}

	saved, err := s.users.Upsert(ctx, user)
	if err != nil {
		return nil, apperrors.StoreError("failed to sync user", err)
	}
	return saved, nil
}

// GetUser retrieves a user by id
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Upstream("failed to load user", err)
	}
	return user, nil
}

// UpdatePushToken stores the device token used for push notifications.
// An empty token clears it.
func (s *UserService) UpdatePushToken(ctx context.Context, userID, pushToken string) error {
	var token *string
	if trimmed := strings.TrimSpace(pushToken); trimmed != "" {
		token = &trimmed
	}
	if err := s.users.UpdatePushToken(ctx, userID, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.StoreError("failed to update push token", err)
	}
	return nil
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", apperrors.WithCause(apperrors.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperrors.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", apperrors.WithCause(apperrors.ErrInvalidToken, errors.New("user_id not found in token"))
	}

	return userID, nil
}
