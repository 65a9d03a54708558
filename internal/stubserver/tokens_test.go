package stubserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueVerify(t *testing.T) {
	tm := NewTokenManager([]byte("k"), time.Hour)
	tok, err := tm.Issue("u1")
	require.NoError(t, err)

	sub, err := tm.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "u1", sub)
}

func TestTokenManager_RejectsForeignAndExpired(t *testing.T) {
	tm := NewTokenManager([]byte("k"), time.Hour)
	other := NewTokenManager([]byte("other"), time.Hour)

	tok, err := other.Issue("u1")
	require.NoError(t, err)
	_, err = tm.Verify(tok)
	require.Error(t, err)

	expired := NewTokenManager([]byte("k"), -time.Minute)
	tok, err = expired.Issue("u1")
	require.NoError(t, err)
	_, err = tm.Verify(tok)
	require.Error(t, err)

	_, err = tm.Verify("garbage")
	require.Error(t, err)
}
