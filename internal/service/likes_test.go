package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/lookapp/look-cli/internal/model"
)

type fakeLikeAPI struct {
	likeErr     error
	unlikeErr   error
	serverLikes []model.Like // nil simulates a failed fetch

	likeCalls   int
	unlikeCalls int
	fetchCalls  int
}

var _ LikeAPI = (*fakeLikeAPI)(nil)

func (f *fakeLikeAPI) LikePost(context.Context, string) error {
	f.likeCalls++
	return f.likeErr
}
func (f *fakeLikeAPI) UnlikePost(context.Context, string) error {
	f.unlikeCalls++
	return f.unlikeErr
}
func (f *fakeLikeAPI) PostLikes(context.Context, string) []model.Like {
	f.fetchCalls++
	return f.serverLikes
}

func likeBy(userID string) model.Like {
	return model.Like{ID: "l-" + userID, PostID: "p1", UserID: userID, CreatedAt: time.Unix(100, 0)}
}

func TestNewLikeState(t *testing.T) {
	st := NewLikeState([]model.Like{likeBy("a"), likeBy("b")}, "b")
	if !st.HasLiked {
		t.Fatal("viewer b has liked, HasLiked = false")
	}
	st = NewLikeState([]model.Like{likeBy("a")}, "b")
	if st.HasLiked {
		t.Fatal("viewer b has not liked, HasLiked = true")
	}
}

func TestLikes_ToggleLikeFailureRollsBackExactly(t *testing.T) {
	api := &fakeLikeAPI{likeErr: errors.New("boom")}
	l := NewLikes(api, nil, 0)

	before := NewLikeState([]model.Like{likeBy("other")}, "me")
	st := before
	st.Likes = append([]model.Like(nil), before.Likes...)

	liked, err := l.Toggle(context.Background(), &st, "p1", "me")
	if err == nil {
		t.Fatal("want error from failed like")
	}
	if liked {
		t.Fatal("liked = true after failure")
	}
	if st.HasLiked {
		t.Fatal("HasLiked not rolled back")
	}
	if !reflect.DeepEqual(st.Likes, before.Likes) {
		t.Fatalf("likes list not restored: got %+v want %+v", st.Likes, before.Likes)
	}
	if api.fetchCalls != 0 {
		t.Fatal("no reconcile expected after rollback")
	}
}

func TestLikes_ToggleUnlikeFailureRollsBackExactly(t *testing.T) {
	api := &fakeLikeAPI{unlikeErr: errors.New("boom")}
	l := NewLikes(api, nil, 0)

	before := NewLikeState([]model.Like{likeBy("me"), likeBy("other")}, "me")
	st := before
	st.Likes = append([]model.Like(nil), before.Likes...)

	liked, err := l.Toggle(context.Background(), &st, "p1", "me")
	if err == nil {
		t.Fatal("want error from failed unlike")
	}
	if !liked {
		t.Fatal("liked must remain true after rollback")
	}
	if !st.HasLiked || !reflect.DeepEqual(st.Likes, before.Likes) {
		t.Fatalf("state not restored: %+v", st)
	}
}

func TestLikes_ToggleLikeSuccessReconciles(t *testing.T) {
	server := []model.Like{likeBy("other"), likeBy("me")}
	api := &fakeLikeAPI{serverLikes: server}
	l := NewLikes(api, nil, 0)

	st := NewLikeState([]model.Like{likeBy("other")}, "me")
	liked, err := l.Toggle(context.Background(), &st, "p1", "me")
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !liked || !st.HasLiked {
		t.Fatal("like not applied")
	}
	if api.likeCalls != 1 {
		t.Fatalf("likeCalls = %d", api.likeCalls)
	}
	// reconciled against the authoritative list, placeholder replaced
	if !reflect.DeepEqual(st.Likes, server) {
		t.Fatalf("likes = %+v, want server list", st.Likes)
	}
}

func TestLikes_ToggleUnlikeSuccess(t *testing.T) {
	api := &fakeLikeAPI{serverLikes: []model.Like{likeBy("other")}}
	l := NewLikes(api, nil, 0)

	st := NewLikeState([]model.Like{likeBy("me"), likeBy("other")}, "me")
	liked, err := l.Toggle(context.Background(), &st, "p1", "me")
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if liked || st.HasLiked {
		t.Fatal("unlike not applied")
	}
	if api.unlikeCalls != 1 {
		t.Fatalf("unlikeCalls = %d", api.unlikeCalls)
	}
}

func TestLikes_ReconcileToleratesPersistentFailure(t *testing.T) {
	api := &fakeLikeAPI{serverLikes: nil} // every fetch fails
	l := NewLikes(api, nil, 0)

	st := NewLikeState([]model.Like{likeBy("me")}, "me")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	l.Reconcile(ctx, &st, "p1", "me")

	// local state kept, divergence tolerated
	if !st.HasLiked || len(st.Likes) != 1 {
		t.Fatalf("state clobbered by failed reconcile: %+v", st)
	}
	if api.fetchCalls < 2 {
		t.Fatalf("expected retries, fetchCalls = %d", api.fetchCalls)
	}
}

func TestOptimisticHelper(t *testing.T) {
	state := 10
	err := optimistic(&state, func(s int) int { return s + 1 }, func() error { return nil })
	if err != nil || state != 11 {
		t.Fatalf("commit: state=%d err=%v", state, err)
	}
	err = optimistic(&state, func(s int) int { return s * 100 }, func() error { return errors.New("no") })
	if err == nil || state != 11 {
		t.Fatalf("rollback: state=%d err=%v", state, err)
	}
}
