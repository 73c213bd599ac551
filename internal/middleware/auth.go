package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"dateflix-backend/internal/apperrors"
)

type contextKey string

const userIDKey contextKey = "user_id"

// TokenValidator resolves a bearer token to a user id
type TokenValidator interface {
	ValidateJWT(token string) (string, error)
}

// AuthMiddleware creates a middleware for JWT authentication
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				respondError(w, apperrors.MessageOf(err), http.StatusUnauthorized)
				return
			}

			userID, err := validator.ValidateJWT(token)
			if err != nil {
				respondError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", apperrors.Unauthorized("Authorization header required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperrors.Unauthorized("Invalid authorization header format")
	}
	return strings.TrimSpace(parts[1]), nil
}

// WithUserID returns a context carrying the authenticated user id
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// ValidateWebSocketToken validates JWT token from WebSocket query parameter
func ValidateWebSocketToken(token string, validator TokenValidator) (string, error) {
	if token == "" {
		return "", apperrors.Unauthorized("token required")
	}
	userID, err := validator.ValidateJWT(token)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidToken) {
			return "", err
		}
		return "", apperrors.WithCause(apperrors.ErrInvalidToken, err)
	}
	return userID, nil
}

func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"code":  string(apperrors.CodeUnauthenticated),
		"error": message,
	})
}
