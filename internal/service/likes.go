package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/lookapp/look-cli/internal/model"
)

// LikeAPI is the slice of the backend client the like flow needs. PostLikes
// follows the api.Client contract: nil means the fetch failed, a non-nil
// slice is authoritative.
type LikeAPI interface {
	LikePost(ctx context.Context, postID string) error
	UnlikePost(ctx context.Context, postID string) error
	PostLikes(ctx context.Context, postID string) []model.Like
}

// LikeState is the local view of one post's likes.
type LikeState struct {
	Likes    []model.Like
	HasLiked bool
}

// NewLikeState derives the local view from a fetched like list.
func NewLikeState(likes []model.Like, viewerID string) LikeState {
	st := LikeState{Likes: likes}
	for _, l := range likes {
		if l.UserID == viewerID {
			st.HasLiked = true
			break
		}
	}
	return st
}

// Likes runs the optimistic like/unlike flow: apply locally, confirm over the
// network, roll back on failure, then reconcile against the authoritative
// list after a short delay.
type Likes struct {
	api            LikeAPI
	log            *zap.Logger
	reconcileDelay time.Duration
}

// NewLikes constructs the flow; a zero delay disables the pre-reconcile wait
// (used by tests).
func NewLikes(api LikeAPI, log *zap.Logger, reconcileDelay time.Duration) *Likes {
	if log == nil {
		log = zap.NewNop()
	}
	return &Likes{api: api, log: log, reconcileDelay: reconcileDelay}
}

// Toggle likes the post when the viewer has not liked it yet, unlikes it
// otherwise. On network failure the state is restored exactly as it was and
// the error propagates for user-visible messaging. On success the local list
// is reconciled best-effort against the backend.
func (l *Likes) Toggle(ctx context.Context, st *LikeState, postID, viewerID string) (liked bool, err error) {
	if st.HasLiked {
		err = optimistic(st,
			func(s LikeState) LikeState { return removeLike(s, viewerID) },
			func() error { return l.api.UnlikePost(ctx, postID) },
		)
		if err != nil {
			return true, fmt.Errorf("unlike post %s: %w", postID, err)
		}
		liked = false
	} else {
		err = optimistic(st,
			func(s LikeState) LikeState { return addLike(s, postID, viewerID) },
			func() error { return l.api.LikePost(ctx, postID) },
		)
		if err != nil {
			return false, fmt.Errorf("like post %s: %w", postID, err)
		}
		liked = true
	}

	l.Reconcile(ctx, st, postID, viewerID)
	return liked, nil
}

// Reconcile replaces the local like list with the backend's once a fetch
// succeeds, retrying briefly with backoff. Divergence is tolerated when every
// attempt fails; the next screen visit re-fetches anyway.
func (l *Likes) Reconcile(ctx context.Context, st *LikeState, postID, viewerID string) {
	if l.reconcileDelay > 0 {
		select {
		case <-time.After(l.reconcileDelay):
		case <-ctx.Done():
			return
		}
	}

	backoff := retry.WithMaxRetries(3, retry.NewExponential(l.reconcileDelay/2+50*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		likes := l.api.PostLikes(ctx, postID)
		if likes == nil {
			return retry.RetryableError(errors.New("likes fetch failed"))
		}
		*st = NewLikeState(likes, viewerID)
		return nil
	})
	if err != nil {
		l.log.Warn("like reconcile gave up", zap.String("post_id", postID), zap.Error(err))
	}
}

func addLike(s LikeState, postID, viewerID string) LikeState {
	id, _ := uuid.NewV4()
	s.Likes = append(append([]model.Like(nil), s.Likes...), model.Like{
		ID:        "local-" + id.String(),
		PostID:    postID,
		UserID:    viewerID,
		CreatedAt: time.Now(),
	})
	s.HasLiked = true
	return s
}

func removeLike(s LikeState, viewerID string) LikeState {
	kept := make([]model.Like, 0, len(s.Likes))
	for _, like := range s.Likes {
		if like.UserID != viewerID {
			kept = append(kept, like)
		}
	}
	s.Likes = kept
	s.HasLiked = false
	return s
}
