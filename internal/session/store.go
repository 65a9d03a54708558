// Package session persists the access token and user profile across restarts.
package session

import (
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lookapp/look-cli/internal/model"
)

// Store reads and writes the persisted session and the theme preference.
//
// Load never fails on malformed content: anything unreadable is reported as
// absence so a corrupt file degrades to a logged-out state instead of an error
// the caller has to interpret.
type Store interface {
	// Load returns the persisted token and user, or ("", nil) for either
	// value that is absent, malformed, or (for the token) expired.
	Load() (token string, user *model.SessionUser, err error)
	// Save persists both values together.
	Save(token string, user *model.SessionUser) error
	// Clear removes both persisted values. Idempotent.
	Clear() error

	Theme() string
	SaveTheme(theme string) error
}

// TokenExpiry extracts the exp claim from a JWT access token without
// verifying the signature. ok is false when the token has no parseable exp.
func TokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// DefaultDir resolves the per-user config directory for session files.
func DefaultDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "lookapp")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "lookapp")
}
