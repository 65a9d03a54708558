package stubserver

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenManager issues and verifies HS256 access tokens for the stub backend.
type TokenManager struct {
	signKey   []byte
	accessTTL time.Duration
}

func NewTokenManager(signKey []byte, accessTTL time.Duration) *TokenManager {
	return &TokenManager{signKey: signKey, accessTTL: accessTTL}
}

// Issue creates a signed token for the given subject.
func (t *TokenManager) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.signKey)
}

// Verify checks the signature and expiry and returns the subject.
func (t *TokenManager) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.signKey, nil
	})
	if err != nil || !parsed.Valid {
		return "", errors.Join(err, errors.New("invalid token"))
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}
