package services

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dateflix-backend/internal/apperrors"
	"dateflix-backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://clerk.example.com"

func providerToken(t *testing.T, key *rsa.PrivateKey, claims jwt.RegisteredClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func validClaims(subject string) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    testIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}
}

func TestVerifyIdentity(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	verifier := newIdentityVerifier(&key.PublicKey, testIssuer)

	subject, err := verifier.VerifyIdentity(providerToken(t, key, validClaims("user_abc")))
	require.NoError(t, err)
	assert.Equal(t, "user_abc", subject)

	expired := validClaims("user_abc")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	noExpiry := validClaims("user_abc")
	noExpiry.ExpiresAt = nil
	wrongIssuer := validClaims("user_abc")
	wrongIssuer.Issuer = "https://evil.example.com"

	hmac, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims("user_abc")).SignedString([]byte("guess"))
	require.NoError(t, err)

	rejected := map[string]string{
		"foreign key":  providerToken(t, other, validClaims("user_abc")),
		"expired":      providerToken(t, key, expired),
		"no expiry":    providerToken(t, key, noExpiry),
		"wrong issuer": providerToken(t, key, wrongIssuer),
		"no subject":   providerToken(t, key, validClaims("")),
		"hmac":         hmac,
		"garbage":      "not-a-token",
	}
	for name, token := range rejected {
		_, err := verifier.VerifyIdentity(token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken, name)
	}
}

func TestNewIdentityVerifierLoadsPEM(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "identity.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600))

	verifier, err := NewIdentityVerifier(config.IdentityConfig{PublicKeyPath: path, Issuer: testIssuer})
	require.NoError(t, err)

	subject, err := verifier.VerifyIdentity(providerToken(t, key, validClaims("user_abc")))
	require.NoError(t, err)
	assert.Equal(t, "user_abc", subject)

	_, err = NewIdentityVerifier(config.IdentityConfig{PublicKeyPath: filepath.Join(t.TempDir(), "missing.pem")})
	assert.Error(t, err)
}
