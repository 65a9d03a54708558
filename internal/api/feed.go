package api

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lookapp/look-cli/internal/model"
)

// feedConcurrency bounds parallel per-user fetches during feed aggregation.
const feedConcurrency = 4

// FeedPosts fetches posts for every followed user id and concatenates the
// results. Sub-fetches that fail are skipped; the aggregate never fails as a
// whole, and result order is unspecified.
func (c *Client) FeedPosts(ctx context.Context, userIDs []string) []model.Post {
	if len(userIDs) == 0 {
		return []model.Post{}
	}

	var (
		mu  sync.Mutex
		all []model.Post
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(feedConcurrency)
	for _, userID := range userIDs {
		g.Go(func() error {
			ps, err := call[[]model.Post](gctx, c, http.MethodGet, "/v1/users/"+url.PathEscape(userID)+"/posts", nil)
			if err != nil {
				c.log.Warn("feed sub-fetch skipped", zap.String("user_id", userID), zap.Error(err))
				return nil
			}
			mu.Lock()
			all = append(all, ps...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // sub-fetch errors are absorbed above

	if all == nil {
		all = []model.Post{}
	}
	return all
}
