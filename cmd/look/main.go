// Command look is a CLI client for the Look social backend.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/lookapp/look-cli/internal/api"
	"github.com/lookapp/look-cli/internal/config"
	"github.com/lookapp/look-cli/internal/errs"
	"github.com/lookapp/look-cli/internal/service"
	"github.com/lookapp/look-cli/internal/session"
	"github.com/lookapp/look-cli/internal/upload"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// app bundles the wired client stack for the subcommand handlers.
type app struct {
	cfg      config.Config
	store    session.Store
	client   *api.Client
	mgr      *service.SessionManager
	likes    *service.Likes
	follows  *service.Follows
	uploader *upload.Uploader
	log      *zap.Logger
}

// lazyToken breaks the construction cycle between the client (which reads the
// token) and the manager (which calls the client).
type lazyToken struct {
	mgr *service.SessionManager
}

func (l *lazyToken) Token() string {
	if l.mgr == nil {
		return ""
	}
	return l.mgr.Token()
}

func newApp(cfg config.Config, log *zap.Logger) (*app, error) {
	store := session.NewFileStore(cfg.DataDir)
	httpClient := &http.Client{Timeout: cfg.Timeout}

	lt := &lazyToken{}
	client, err := api.New(cfg.BaseURL, httpClient, lt, log)
	if err != nil {
		return nil, err
	}
	mgr := service.NewSessionManager(client, store, log)
	lt.mgr = mgr

	return &app{
		cfg:      cfg,
		store:    store,
		client:   client,
		mgr:      mgr,
		likes:    service.NewLikes(client, log, 400*time.Millisecond),
		follows:  service.NewFollows(client, log),
		uploader: upload.New(cfg.Media.Endpoint, cfg.Media.APIKey, httpClient, log),
		log:      log,
	}, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `look CLI
Usage:
  look [-config file] [-base-url URL] [-data-dir dir] [-dev] <cmd> [args]

Commands:
  version
  register     -u <username> -e <email> -p <password>
  login        -u <username|email> -p <password>
  logout
  whoami
  theme        [-set light|dark]

  feed
  users
  user         -id <userID>
  followers    [-id <userID>]
  following    [-id <userID>]
  follow       -id <userID>
  unfollow     -id <userID>

  posts        [-user <userID>]
  post         -id <postID>
  create-post  -title <t> [-content <c>] [-image <url> | -file <path>]
  like         -id <postID>
  unlike       -id <postID>
  likes        -id <postID>

  comments     -id <postID>
  comment      -id <postID> -text <content>
  rm-comment   -id <commentID>

  edit-profile -u <username> [-e <email>] [-picture <url> | -file <path>]
  upload       -file <path>
`)
	os.Exit(2)
}

func newLogger(dev bool) *zap.Logger {
	if dev {
		l, _ := zap.NewDevelopment()
		return l
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	l, _ := cfg.Build()
	return l
}

func main() {
	cfgPath := flag.String("config", "", "config file (YAML)")
	baseURL := flag.String("base-url", "", "backend base URL (overrides config)")
	dataDir := flag.String("data-dir", "", "session data dir (overrides config)")
	dev := flag.Bool("dev", false, "development logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	logger := newLogger(*dev)
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fatal(err)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		fatal(err)
	}
	if err := a.mgr.Restore(); err != nil {
		logger.Warn("session restore failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout+10*time.Second)
	defer cancel()

	if err := a.run(ctx, cmd, args); err != nil {
		a.fail(err)
	}
}

// run dispatches one subcommand.
func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "version":
		fmt.Printf("look %s (%s)\n", version, buildDate)
		return nil
	case "register":
		return a.cmdRegister(ctx, args)
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		return a.mgr.Logout()
	case "whoami":
		return a.cmdWhoami()
	case "theme":
		return a.cmdTheme(args)
	case "feed":
		return a.cmdFeed(ctx)
	case "users":
		printJSON(a.client.Users(ctx))
		return nil
	case "user":
		return a.cmdUser(ctx, args)
	case "followers":
		return a.cmdFollowList(ctx, args, a.client.FollowerIDs)
	case "following":
		return a.cmdFollowList(ctx, args, a.client.FollowingIDs)
	case "follow":
		return a.cmdFollow(ctx, args, true)
	case "unfollow":
		return a.cmdFollow(ctx, args, false)
	case "posts":
		return a.cmdPosts(ctx, args)
	case "post":
		return a.cmdPost(ctx, args)
	case "create-post":
		return a.cmdCreatePost(ctx, args)
	case "like":
		return a.cmdLike(ctx, args, true)
	case "unlike":
		return a.cmdLike(ctx, args, false)
	case "likes":
		return a.cmdLikes(ctx, args)
	case "comments":
		return a.cmdComments(ctx, args)
	case "comment":
		return a.cmdComment(ctx, args)
	case "rm-comment":
		return a.cmdDeleteComment(ctx, args)
	case "edit-profile":
		return a.cmdEditProfile(ctx, args)
	case "upload":
		return a.cmdUpload(ctx, args)
	default:
		usage()
		return nil
	}
}

// fail reports an error; an authorization failure additionally tears the
// session down so the next command starts from the login flow.
func (a *app) fail(err error) {
	if errors.Is(err, errs.ErrUnauthorized) {
		if lerr := a.mgr.Logout(); lerr != nil {
			a.log.Warn("logout after auth failure", zap.Error(lerr))
		}
		fmt.Fprintln(os.Stderr, "session expired or rejected, please login again:", err)
		os.Exit(1)
	}
	fatal(err)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
