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

// Comments returns a post's comments, or an empty list when the fetch fails.
func (c *Client) Comments(ctx context.Context, postID string) []model.Comment {
	cs, err := call[[]model.Comment](ctx, c, http.MethodGet, "/v1/posts/"+url.PathEscape(postID)+"/comments", nil)
	if err != nil {
		c.log.Warn("get comments failed", zap.String("post_id", postID), zap.Error(err))
		return []model.Comment{}
	}
	return cs
}

// CreateComment posts a comment. Empty content is rejected before any
// network I/O.
func (c *Client) CreateComment(ctx context.Context, postID, content string) (model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return model.Comment{}, errs.ErrValidation
	}
	req := model.CommentRequest{Content: content}
	return call[model.Comment](ctx, c, http.MethodPost, "/v1/posts/"+url.PathEscape(postID)+"/comments", req)
}

// DeleteComment removes a comment by id.
func (c *Client) DeleteComment(ctx context.Context, commentID string) error {
	return ack(ctx, c, http.MethodDelete, "/v1/comments/"+url.PathEscape(commentID))
}
