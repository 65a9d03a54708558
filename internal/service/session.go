// Package service contains the session manager and the optimistic mutation flows.
package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lookapp/look-cli/internal/errs"
	"github.com/lookapp/look-cli/internal/model"
	"github.com/lookapp/look-cli/internal/session"
)

// State describes the session lifecycle.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// AuthAPI is the slice of the backend client the session manager needs.
type AuthAPI interface {
	Login(ctx context.Context, usernameOrEmail, password string) (model.TokenResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (model.User, error)
	EditProfile(ctx context.Context, req model.EditProfileRequest) (model.TokenResponse, error)
}

// SessionManager orchestrates login/register/logout, persists the session,
// and exposes the current token to the transport. It is the sole writer of
// session state; ops are serialized so login/logout never race.
type SessionManager struct {
	api   AuthAPI
	store session.Store
	log   *zap.Logger

	opMu sync.Mutex // serializes Login/Logout/Restore/EditProfile

	mu    sync.Mutex // guards state and sess
	state State
	sess  *model.Session
}

// NewSessionManager constructs a manager in the unauthenticated state.
func NewSessionManager(api AuthAPI, store session.Store, log *zap.Logger) *SessionManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionManager{api: api, store: store, log: log}
}

// State reports the current lifecycle state.
func (m *SessionManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns a copy of the current session, if any.
func (m *SessionManager) Session() (model.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return model.Session{}, false
	}
	return *m.sess, true
}

// Token implements api.TokenSource. Returns "" while logged out.
func (m *SessionManager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return ""
	}
	return m.sess.AccessToken
}

// Restore loads the persisted session at startup. A token without a paired
// user record (or the reverse) is treated as corrupt and cleared.
func (m *SessionManager) Restore() error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	token, user, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if token == "" || user == nil {
		if token != "" || user != nil {
			m.log.Warn("partial session in storage, forcing logout")
			return m.logoutLocked()
		}
		return nil
	}

	sess := &model.Session{User: *user, AccessToken: token}
	if exp, ok := session.TokenExpiry(token); ok {
		sess.ExpiresAt = exp
	}
	m.setSession(sess, StateAuthenticated)
	m.log.Debug("session restored", zap.String("user_id", user.ID))
	return nil
}

// Login authenticates and persists the session. On failure the store is
// cleared, the state returns to unauthenticated, and the error is re-raised.
func (m *SessionManager) Login(ctx context.Context, usernameOrEmail, password string) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.setSession(nil, StateAuthenticating)

	tok, err := m.api.Login(ctx, usernameOrEmail, password)
	if err != nil {
		if cerr := m.logoutLocked(); cerr != nil {
			m.log.Warn("clearing session after failed login", zap.Error(cerr))
		}
		return fmt.Errorf("login: %w", err)
	}

	user := tok.SessionUser()
	if err := m.store.Save(tok.AccessToken, &user); err != nil {
		if cerr := m.logoutLocked(); cerr != nil {
			m.log.Warn("clearing session after failed save", zap.Error(cerr))
		}
		return fmt.Errorf("persist session: %w", err)
	}

	sess := &model.Session{User: user, AccessToken: tok.AccessToken}
	if exp, ok := session.TokenExpiry(tok.AccessToken); ok {
		sess.ExpiresAt = exp
	}
	m.setSession(sess, StateAuthenticated)
	m.log.Info("logged in", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return nil
}

// Register creates an account without touching session state; callers follow
// up with an explicit Login.
func (m *SessionManager) Register(ctx context.Context, email, username, password string) (model.User, error) {
	u, err := m.api.Register(ctx, model.RegisterRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return model.User{}, fmt.Errorf("register: %w", err)
	}
	m.log.Info("registered", zap.String("user_id", u.ID))
	return u, nil
}

// Logout clears the persisted and in-memory session. Idempotent.
func (m *SessionManager) Logout() error {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	return m.logoutLocked()
}

func (m *SessionManager) logoutLocked() error {
	m.setSession(nil, StateUnauthenticated)
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// UpdateUser replaces the in-memory and persisted profile without touching
// the token. Only valid while authenticated.
func (m *SessionManager) UpdateUser(user model.SessionUser) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	if m.state != StateAuthenticated || m.sess == nil {
		m.mu.Unlock()
		return fmt.Errorf("update user: %w", errs.ErrUnauthorized)
	}
	token := m.sess.AccessToken
	m.sess.User = user
	m.mu.Unlock()

	return m.store.Save(token, &user)
}

// EditProfile updates the profile on the backend and swaps in the refreshed
// token and user record from the response.
func (m *SessionManager) EditProfile(ctx context.Context, req model.EditProfileRequest) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.State() != StateAuthenticated {
		return fmt.Errorf("edit profile: %w", errs.ErrUnauthorized)
	}

	tok, err := m.api.EditProfile(ctx, req)
	if err != nil {
		return fmt.Errorf("edit profile: %w", err)
	}

	user := tok.SessionUser()
	token := tok.AccessToken
	if token == "" {
		// backend kept the old token; only the profile changed
		token = m.Token()
	}
	if err := m.store.Save(token, &user); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	sess := &model.Session{User: user, AccessToken: token}
	if exp, ok := session.TokenExpiry(token); ok {
		sess.ExpiresAt = exp
	}
	m.setSession(sess, StateAuthenticated)
	return nil
}

func (m *SessionManager) setSession(sess *model.Session, state State) {
	m.mu.Lock()
	m.sess = sess
	m.state = state
	m.mu.Unlock()
}
