package services

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"dateflix-backend/internal/apperrors"
	"dateflix-backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

const identityLeeway = 5 * time.Second

// IdentityVerifier checks session tokens issued by the external identity
// provider. The provider signs them with RS256; the subject is the user id.
type IdentityVerifier struct {
	key    *rsa.PublicKey
	issuer string
	now    func() time.Time
}

// NewIdentityVerifier loads the provider's PEM public key from cfg.PublicKeyPath
func NewIdentityVerifier(cfg config.IdentityConfig) (*IdentityVerifier, error) {
	pem, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read identity public key: %w", err)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("failed to parse identity public key: %w", err)
	}
	return newIdentityVerifier(key, cfg.Issuer), nil
}

func newIdentityVerifier(key *rsa.PublicKey, issuer string) *IdentityVerifier {
	return &IdentityVerifier{key: key, issuer: issuer, now: time.Now}
}

// VerifyIdentity validates a provider session token and returns its subject
func (v *IdentityVerifier) VerifyIdentity(tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(identityLeeway),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return "", apperrors.WithCause(apperrors.ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return "", apperrors.WithCause(apperrors.ErrInvalidToken, errors.New("sub not found in token"))
	}
	return claims.Subject, nil
}
