package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lookapp/look-cli/internal/model"
)

const (
	tokenFileName = "token.json"
	userFileName  = "user.json"
	themeFileName = "theme"
)

// tokenFile is the on-disk shape of the persisted access token.
type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// FileStore keeps the session as plain JSON files under a config directory.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore builds a store rooted at dir; empty dir means DefaultDir.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = DefaultDir()
	}
	return &FileStore{dir: dir}
}

func (s *FileStore) tokenPath() string { return filepath.Join(s.dir, tokenFileName) }
func (s *FileStore) userPath() string  { return filepath.Join(s.dir, userFileName) }
func (s *FileStore) themePath() string { return filepath.Join(s.dir, themeFileName) }

// Load reads both persisted values. A token past its recorded expiry reads as
// absent; the user record is returned as persisted so the caller can detect
// the mismatch and tear the session down.
func (s *FileStore) Load() (string, *model.SessionUser, error) {
	var token string
	if b, err := os.ReadFile(s.tokenPath()); err == nil {
		var tf tokenFile
		if json.Unmarshal(b, &tf) == nil && tf.AccessToken != "" {
			if tf.ExpiresAt.IsZero() || time.Now().Before(tf.ExpiresAt) {
				token = tf.AccessToken
			}
		}
	}

	var user *model.SessionUser
	if b, err := os.ReadFile(s.userPath()); err == nil {
		var u model.SessionUser
		if json.Unmarshal(b, &u) == nil && u.ID != "" {
			user = &u
		}
	}
	return token, user, nil
}

// Save writes both files; expiry is taken from the token's exp claim when present.
func (s *FileStore) Save(token string, user *model.SessionUser) error {
	if token == "" || user == nil {
		return errors.New("session: token and user must be saved together")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("session: create dir: %w", err)
	}

	tf := tokenFile{AccessToken: token}
	if exp, ok := TokenExpiry(token); ok {
		tf.ExpiresAt = exp
	}
	tb, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.tokenPath(), tb, 0o600); err != nil {
		return fmt.Errorf("session: write token: %w", err)
	}

	ub, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.userPath(), ub, 0o600); err != nil {
		return fmt.Errorf("session: write user: %w", err)
	}
	return nil
}

// Clear removes both session files. Missing files are not an error.
func (s *FileStore) Clear() error {
	for _, p := range []string{s.tokenPath(), s.userPath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("session: clear: %w", err)
		}
	}
	return nil
}

// Theme returns the persisted theme preference, or "" when unset.
func (s *FileStore) Theme() string {
	b, err := os.ReadFile(s.themePath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// SaveTheme persists the theme preference.
func (s *FileStore) SaveTheme(theme string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.themePath(), []byte(theme+"\n"), 0o600)
}
