package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lookapp/look-cli/internal/errs"
	"github.com/lookapp/look-cli/internal/model"
	"github.com/lookapp/look-cli/internal/service"
)

func (a *app) currentSession() (model.Session, error) {
	sess, ok := a.mgr.Session()
	if !ok {
		return model.Session{}, fmt.Errorf("not logged in: %w", errs.ErrUnauthorized)
	}
	return sess, nil
}

// --- auth ---

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	u := fs.String("u", "", "username")
	e := fs.String("e", "", "email")
	p := fs.String("p", "", "password")
	_ = fs.Parse(args)
	if *u == "" || *e == "" || *p == "" {
		return fmt.Errorf("need -u, -e and -p: %w", errs.ErrValidation)
	}

	user, err := a.mgr.Register(ctx, *e, *u, *p)
	if err != nil {
		return err
	}
	fmt.Println("registered, now run: look login -u", *u, "-p <password>")
	printJSON(user)
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	u := fs.String("u", "", "username or email")
	p := fs.String("p", "", "password")
	_ = fs.Parse(args)
	if *u == "" || *p == "" {
		return fmt.Errorf("need -u and -p: %w", errs.ErrValidation)
	}

	if err := a.mgr.Login(ctx, *u, *p); err != nil {
		return err
	}
	sess, _ := a.mgr.Session()
	fmt.Println("logged in as", sess.User.Username)
	return nil
}

func (a *app) cmdWhoami() error {
	sess, err := a.currentSession()
	if err != nil {
		return err
	}
	printJSON(sess.User)
	return nil
}

func (a *app) cmdTheme(args []string) error {
	fs := flag.NewFlagSet("theme", flag.ExitOnError)
	set := fs.String("set", "", "theme to persist (light|dark)")
	_ = fs.Parse(args)

	if *set == "" {
		theme := a.store.Theme()
		if theme == "" {
			theme = "light"
		}
		fmt.Println(theme)
		return nil
	}
	if *set != "light" && *set != "dark" {
		return fmt.Errorf("theme must be light or dark: %w", errs.ErrValidation)
	}
	return a.store.SaveTheme(*set)
}

// --- users and follow graph ---

func (a *app) cmdUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("user", flag.ExitOnError)
	id := fs.String("id", "", "user id")
	_ = fs.Parse(args)
	if *id == "" {
		return fmt.Errorf("need -id: %w", errs.ErrValidation)
	}
	printJSON(a.client.UserByID(ctx, *id))
	return nil
}

func (a *app) cmdFollowList(ctx context.Context, args []string, fetch func(context.Context, string) ([]string, error)) error {
	fs := flag.NewFlagSet("follow-list", flag.ExitOnError)
	id := fs.String("id", "", "user id (defaults to the logged-in user)")
	_ = fs.Parse(args)

	target := *id
	if target == "" {
		sess, err := a.currentSession()
		if err != nil {
			return err
		}
		target = sess.User.ID
	}

	ids, err := fetch(ctx, target)
	if err != nil {
		return err
	}
	printJSON(ids)
	return nil
}

func (a *app) cmdFollow(ctx context.Context, args []string, follow bool) error {
	fs := flag.NewFlagSet("follow", flag.ExitOnError)
	id := fs.String("id", "", "user id")
	_ = fs.Parse(args)
	if *id == "" {
		return fmt.Errorf("need -id: %w", errs.ErrValidation)
	}
	if _, err := a.currentSession(); err != nil {
		return err
	}

	target := a.client.UserByID(ctx, *id)
	st := service.FollowState{FollowersCount: target.FollowersCount, IsFollowing: !follow}
	a.follows.Toggle(ctx, &st, *id)
	a.follows.Reconcile(ctx, &st, *id)

	verb := "following"
	if !follow {
		verb = "unfollowed"
	}
	fmt.Printf("%s %s (followers: %d)\n", verb, *id, st.FollowersCount)
	return nil
}

// --- posts ---

func (a *app) cmdFeed(ctx context.Context) error {
	sess, err := a.currentSession()
	if err != nil {
		return err
	}
	following, err := a.client.FollowingIDs(ctx, sess.User.ID)
	if err != nil {
		return fmt.Errorf("load following list: %w", err)
	}
	printJSON(a.client.FeedPosts(ctx, following))
	return nil
}

func (a *app) cmdPosts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("posts", flag.ExitOnError)
	user := fs.String("user", "", "user id (defaults to the logged-in user)")
	_ = fs.Parse(args)

	target := *user
	if target == "" {
		sess, err := a.currentSession()
		if err != nil {
			return err
		}
		target = sess.User.ID
	}
	printJSON(a.client.PostsByUser(ctx, target))
	return nil
}

func (a *app) cmdPost(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	id := fs.String("id", "", "post id")
	_ = fs.Parse(args)
	if *id == "" {
		return fmt.Errorf("need -id: %w", errs.ErrValidation)
	}

	post := a.client.PostByID(ctx, *id)
	likes := a.client.PostLikes(ctx, *id)
	comments := a.client.Comments(ctx, *id)
	printJSON(map[string]any{
		"post":     post,
		"likes":    len(likes),
		"comments": comments,
	})
	return nil
}

func (a *app) cmdCreatePost(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-post", flag.ExitOnError)
	title := fs.String("title", "", "post title")
	content := fs.String("content", "", "post content")
	image := fs.String("image", "", "already hosted image URL")
	file := fs.String("file", "", "local image to upload first")
	_ = fs.Parse(args)
	if *title == "" {
		return fmt.Errorf("need -title: %w", errs.ErrValidation)
	}
	if _, err := a.currentSession(); err != nil {
		return err
	}

	imageURI := *image
	if *file != "" {
		var err error
		if imageURI, err = a.uploadFile(ctx, *file); err != nil {
			return err
		}
	}

	post, err := a.client.CreatePost(ctx, model.CreatePostRequest{
		Title:    *title,
		Content:  *content,
		ImageURI: imageURI,
	})
	if err != nil {
		return err
	}
	printJSON(post)
	return nil
}

// --- likes ---

func (a *app) cmdLike(ctx context.Context, args []string, like bool) error {
	fs := flag.NewFlagSet("like", flag.ExitOnError)
	id := fs.String("id", "", "post id")
	_ = fs.Parse(args)
	if *id == "" {
		return fmt.Errorf("need -id: %w", errs.ErrValidation)
	}
	sess, err := a.currentSession()
	if err != nil {
		return err
	}

	st := service.NewLikeState(a.client.PostLikes(ctx, *id), sess.User.ID)
	if st.HasLiked == like {
		if like {
			fmt.Println("already liked")
		} else {
			fmt.Println("not liked")
		}
		return nil
	}

	liked, err := a.likes.Toggle(ctx, &st, *id, sess.User.ID)
	if err != nil {
		return err
	}
	if liked {
		fmt.Printf("liked (%d likes)\n", len(st.Likes))
	} else {
		fmt.Printf("unliked (%d likes)\n", len(st.Likes))
	}
	return nil
}

func (a *app) cmdLikes(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("likes", flag.ExitOnError)
	id := fs.String("id", "", "post id")
	_ = fs.Parse(args)
	if *id == "" {
		return fmt.Errorf("need -id: %w", errs.ErrValidation)
	}
	printJSON(a.client.PostLikes(ctx, *id))
	return nil
}

// --- comments ---

func (a *app) cmdComments(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("comments", flag.ExitOnError)
	id := fs.String("id", "", "post id")
	_ = fs.Parse(args)
	if *id == "" {
		return fmt.Errorf("need -id: %w", errs.ErrValidation)
	}
	printJSON(a.client.Comments(ctx, *id))
	return nil
}

func (a *app) cmdComment(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("comment", flag.ExitOnError)
	id := fs.String("id", "", "post id")
	text := fs.String("text", "", "comment content")
	_ = fs.Parse(args)
	if *id == "" || *text == "" {
		return fmt.Errorf("need -id and -text: %w", errs.ErrValidation)
	}

	cm, err := a.client.CreateComment(ctx, *id, *text)
	if err != nil {
		return err
	}
	printJSON(cm)
	return nil
}

func (a *app) cmdDeleteComment(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rm-comment", flag.ExitOnError)
	id := fs.String("id", "", "comment id")
	_ = fs.Parse(args)
	if *id == "" {
		return fmt.Errorf("need -id: %w", errs.ErrValidation)
	}
	if err := a.client.DeleteComment(ctx, *id); err != nil {
		return err
	}
	fmt.Println("comment deleted")
	return nil
}

// --- profile and media ---

func (a *app) cmdEditProfile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit-profile", flag.ExitOnError)
	u := fs.String("u", "", "new username")
	e := fs.String("e", "", "new email")
	picture := fs.String("picture", "", "already hosted picture URL")
	file := fs.String("file", "", "local picture to upload first")
	_ = fs.Parse(args)

	sess, err := a.currentSession()
	if err != nil {
		return err
	}

	username := *u
	if username == "" {
		username = sess.User.Username
	}
	email := *e
	if email == "" {
		email = sess.User.Email
	}
	pictureURI := *picture
	if *file != "" {
		if pictureURI, err = a.uploadFile(ctx, *file); err != nil {
			return err
		}
	}
	if pictureURI == "" {
		pictureURI = sess.User.ProfilePictureURI
	}

	if err := a.mgr.EditProfile(ctx, model.EditProfileRequest{
		Username:          username,
		Email:             email,
		ProfilePictureURI: pictureURI,
	}); err != nil {
		return err
	}
	sess, _ = a.mgr.Session()
	printJSON(sess.User)
	return nil
}

func (a *app) cmdUpload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	file := fs.String("file", "", "image path")
	_ = fs.Parse(args)
	if *file == "" {
		return fmt.Errorf("need -file: %w", errs.ErrValidation)
	}
	url, err := a.uploadFile(ctx, *file)
	if err != nil {
		return err
	}
	fmt.Println(url)
	return nil
}

func (a *app) uploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return a.uploader.Upload(ctx, filepath.Base(path), f)
}
