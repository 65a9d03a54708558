package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/lookapp/look-cli/internal/model"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func testUser() *model.SessionUser {
	return &model.SessionUser{
		ID:       "u1",
		Username: "pepe",
		Email:    "p@p.com",
		Roles:    []string{"user"},
	}
}

func TestFileStore_SaveLoadRoundtrip(t *testing.T) {
	s := NewFileStore(t.TempDir())
	tok := signedToken(t, time.Now().Add(time.Hour))

	require.NoError(t, s.Save(tok, testUser()))

	got, user, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, tok, got)
	require.Equal(t, testUser(), user)
}

func TestFileStore_LoadAbsent(t *testing.T) {
	s := NewFileStore(t.TempDir())

	tok, user, err := s.Load()
	require.NoError(t, err)
	require.Empty(t, tok)
	require.Nil(t, user)
}

func TestFileStore_MalformedReadsAsAbsence(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, tokenFileName), []byte("{not json"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, userFileName), []byte("also not json"), 0o600))

	tok, user, err := s.Load()
	require.NoError(t, err)
	require.Empty(t, tok)
	require.Nil(t, user)
}

func TestFileStore_ExpiredTokenReadsAsAbsent(t *testing.T) {
	s := NewFileStore(t.TempDir())
	require.NoError(t, s.Save(signedToken(t, time.Now().Add(-time.Minute)), testUser()))

	tok, user, err := s.Load()
	require.NoError(t, err)
	require.Empty(t, tok)
	require.NotNil(t, user) // stale profile stays visible so the manager can force a logout
}

func TestFileStore_SaveRequiresBothValues(t *testing.T) {
	s := NewFileStore(t.TempDir())
	require.Error(t, s.Save("", testUser()))
	require.Error(t, s.Save("tok", nil))
}

func TestFileStore_ClearIdempotent(t *testing.T) {
	s := NewFileStore(t.TempDir())
	require.NoError(t, s.Save(signedToken(t, time.Now().Add(time.Hour)), testUser()))

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())

	tok, user, err := s.Load()
	require.NoError(t, err)
	require.Empty(t, tok)
	require.Nil(t, user)
}

func TestFileStore_Theme(t *testing.T) {
	s := NewFileStore(t.TempDir())
	require.Empty(t, s.Theme())
	require.NoError(t, s.SaveTheme("dark"))
	require.Equal(t, "dark", s.Theme())
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	got, ok := TokenExpiry(signedToken(t, exp))
	require.True(t, ok)
	require.WithinDuration(t, exp, got, time.Second)

	_, ok = TokenExpiry("garbage")
	require.False(t, ok)
}
