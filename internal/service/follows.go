package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/lookapp/look-cli/internal/model"
)

// FollowAPI is the slice of the backend client the follow flow needs.
// Follow/Unfollow absorb their own failures; UserByID returns an empty record
// (ID == "") when the fetch fails.
type FollowAPI interface {
	Follow(ctx context.Context, userID string)
	Unfollow(ctx context.Context, userID string)
	UserByID(ctx context.Context, userID string) model.User
}

// FollowState is the local view of a profile's follow relationship.
type FollowState struct {
	FollowersCount int
	IsFollowing    bool
}

// Follows applies the optimistic +-1 follower adjustment; the counts stay
// provisional until the next authoritative profile fetch.
type Follows struct {
	api FollowAPI
	log *zap.Logger
}

func NewFollows(api FollowAPI, log *zap.Logger) *Follows {
	if log == nil {
		log = zap.NewNop()
	}
	return &Follows{api: api, log: log}
}

// Toggle flips the follow relationship and adjusts the local follower count.
func (f *Follows) Toggle(ctx context.Context, st *FollowState, targetID string) {
	if st.IsFollowing {
		// the count is provisional and may have been seeded from a failed
		// fetch, so never show a negative number
		if st.FollowersCount > 0 {
			st.FollowersCount--
		}
		st.IsFollowing = false
		f.api.Unfollow(ctx, targetID)
	} else {
		st.FollowersCount++
		st.IsFollowing = true
		f.api.Follow(ctx, targetID)
	}
}

// Reconcile replaces the provisional count with the server's when the profile
// fetch succeeds.
func (f *Follows) Reconcile(ctx context.Context, st *FollowState, targetID string) {
	u := f.api.UserByID(ctx, targetID)
	if u.ID == "" {
		f.log.Debug("follow reconcile skipped, profile fetch failed", zap.String("user_id", targetID))
		return
	}
	st.FollowersCount = u.FollowersCount
}
