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

// PostsByUser returns a user's posts, or an empty list when the fetch fails.
func (c *Client) PostsByUser(ctx context.Context, userID string) []model.Post {
	ps, err := call[[]model.Post](ctx, c, http.MethodGet, "/v1/users/"+url.PathEscape(userID)+"/posts", nil)
	if err != nil {
		c.log.Warn("get posts failed", zap.String("user_id", userID), zap.Error(err))
		return []model.Post{}
	}
	return ps
}

// PostByID returns the post, or an empty record when the fetch fails.
func (c *Client) PostByID(ctx context.Context, postID string) model.Post {
	p, err := call[model.Post](ctx, c, http.MethodGet, "/v1/posts/"+url.PathEscape(postID), nil)
	if err != nil {
		c.log.Warn("get post failed", zap.String("post_id", postID), zap.Error(err))
		return model.Post{}
	}
	return p
}

// CreatePost publishes a post. The caller surfaces failures to the user.
func (c *Client) CreatePost(ctx context.Context, req model.CreatePostRequest) (model.Post, error) {
	if strings.TrimSpace(req.Title) == "" {
		return model.Post{}, errs.ErrValidation
	}
	return call[model.Post](ctx, c, http.MethodPost, "/v1/posts", req)
}

// LikePost likes a post. Failures propagate so the caller can roll back its
// optimistic state.
func (c *Client) LikePost(ctx context.Context, postID string) error {
	return ack(ctx, c, http.MethodPost, "/v1/posts/"+url.PathEscape(postID)+"/like")
}

// UnlikePost removes a like. Failures propagate like LikePost.
func (c *Client) UnlikePost(ctx context.Context, postID string) error {
	return ack(ctx, c, http.MethodDelete, "/v1/posts/"+url.PathEscape(postID)+"/like")
}

// PostLikes returns a post's likes. On failure the result is nil; a
// successful fetch always yields a non-nil slice, so callers that need to
// distinguish "no likes" from "fetch failed" can check for nil.
func (c *Client) PostLikes(ctx context.Context, postID string) []model.Like {
	ls, err := call[[]model.Like](ctx, c, http.MethodGet, "/v1/posts/"+url.PathEscape(postID)+"/likes", nil)
	if err != nil {
		c.log.Warn("get likes failed", zap.String("post_id", postID), zap.Error(err))
		return nil
	}
	if ls == nil {
		ls = []model.Like{}
	}
	return ls
}
