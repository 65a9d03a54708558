package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/lookapp/look-cli/internal/errs"
	"github.com/lookapp/look-cli/internal/model"
)

// Login authenticates with a username or email. Failures propagate so the
// session manager can react.
func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) (model.TokenResponse, error) {
	if strings.TrimSpace(usernameOrEmail) == "" || password == "" {
		return model.TokenResponse{}, errs.ErrValidation
	}
	req := model.LoginRequest{Username: usernameOrEmail, Password: password}
	return call[model.TokenResponse](ctx, c, http.MethodPost, "/auth/login", req)
}

// Register creates an account. It does not log the new user in.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return model.User{}, errs.ErrValidation
	}
	return call[model.User](ctx, c, http.MethodPost, "/auth/register", req)
}

// EditProfile updates the authenticated user's own profile and returns the
// refreshed token response.
func (c *Client) EditProfile(ctx context.Context, req model.EditProfileRequest) (model.TokenResponse, error) {
	if strings.TrimSpace(req.Username) == "" {
		return model.TokenResponse{}, errs.ErrValidation
	}
	return call[model.TokenResponse](ctx, c, http.MethodPut, "/v1/users/me", req)
}

// UserByID returns the user, or an empty record when the fetch fails.
func (c *Client) UserByID(ctx context.Context, userID string) model.User {
	u, err := call[model.User](ctx, c, http.MethodGet, "/v1/users/"+url.PathEscape(userID), nil)
	if err != nil {
		c.log.Warn("get user failed", zap.String("user_id", userID), zap.Error(err))
		return model.User{}
	}
	return u
}

// Users returns all users, or an empty list when the fetch fails.
func (c *Client) Users(ctx context.Context) []model.User {
	us, err := call[[]model.User](ctx, c, http.MethodGet, "/v1/users", nil)
	if err != nil {
		c.log.Warn("list users failed", zap.Error(err))
		return []model.User{}
	}
	return us
}

// FollowerIDs returns the ids of users following userID.
func (c *Client) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	us, err := call[[]model.User](ctx, c, http.MethodGet, "/v1/users/"+url.PathEscape(userID)+"/followers", nil)
	if err != nil {
		return nil, err
	}
	return userIDs(us), nil
}

// FollowingIDs returns the ids of users that userID follows.
func (c *Client) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	us, err := call[[]model.User](ctx, c, http.MethodGet, "/v1/users/"+url.PathEscape(userID)+"/following", nil)
	if err != nil {
		return nil, err
	}
	return userIDs(us), nil
}

func userIDs(users []model.User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

// Follow follows userID. Failures are absorbed; the next authoritative fetch
// reconciles any divergence.
func (c *Client) Follow(ctx context.Context, userID string) {
	if err := ack(ctx, c, http.MethodPost, "/v1/users/"+url.PathEscape(userID)+"/follow"); err != nil {
		c.log.Warn("follow failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// Unfollow unfollows userID. Failures are absorbed like Follow.
func (c *Client) Unfollow(ctx context.Context, userID string) {
	if err := ack(ctx, c, http.MethodDelete, "/v1/users/"+url.PathEscape(userID)+"/follow"); err != nil {
		c.log.Warn("unfollow failed", zap.String("user_id", userID), zap.Error(err))
	}
}
