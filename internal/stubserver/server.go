// Package stubserver is an in-memory fake of the Look backend REST contract.
//
// It exists for integration tests and local development of the client; it
// mirrors the documented endpoint behavior (envelope wrapper, bearer auth,
// status codes) and nothing more.
package stubserver

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lookapp/look-cli/internal/model"
)

type account struct {
	model.User
	passSalt []byte
	passHash []byte
	roles    []string
}

// Server holds all backend state in memory behind one mutex.
type Server struct {
	tokens  *TokenManager
	limiter *loginLimiter
	log     *zap.Logger

	mu         sync.Mutex
	users      map[string]*account       // user id -> account
	byUsername map[string]string         // username -> user id
	posts      map[string]*model.Post    // post id -> post
	comments   map[string]*model.Comment // comment id -> comment
	likes      map[string]map[string]model.Like // post id -> user id -> like
	follows    map[string]map[string]bool       // follower id -> followee id set
}

// New builds an empty stub backend signing tokens with signKey.
func New(signKey []byte, accessTTL time.Duration, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		tokens:     NewTokenManager(signKey, accessTTL),
		limiter:    newLoginLimiter(5, time.Minute),
		log:        log,
		users:      map[string]*account{},
		byUsername: map[string]string{},
		posts:      map[string]*model.Post{},
		comments:   map[string]*model.Comment{},
		likes:      map[string]map[string]model.Like{},
		follows:    map[string]map[string]bool{},
	}
}

// Handler mounts every route under the /api prefix.
func (s *Server) Handler() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api := e.Group("/api")
	api.POST("/auth/login", s.handleLogin)
	api.POST("/auth/register", s.handleRegister)

	v1 := api.Group("/v1", s.requireAuth)
	v1.GET("/users", s.handleListUsers)
	v1.PUT("/users/me", s.handleEditProfile)
	v1.GET("/users/:id", s.handleGetUser)
	v1.GET("/users/:id/followers", s.handleFollowers)
	v1.GET("/users/:id/following", s.handleFollowing)
	v1.POST("/users/:id/follow", s.handleFollow)
	v1.DELETE("/users/:id/follow", s.handleUnfollow)
	v1.GET("/users/:id/posts", s.handleUserPosts)
	v1.POST("/posts", s.handleCreatePost)
	v1.GET("/posts/:id", s.handleGetPost)
	v1.POST("/posts/:id/like", s.handleLike)
	v1.DELETE("/posts/:id/like", s.handleUnlike)
	v1.GET("/posts/:id/likes", s.handlePostLikes)
	v1.GET("/posts/:id/comments", s.handleComments)
	v1.POST("/posts/:id/comments", s.handleCreateComment)
	v1.DELETE("/comments/:id", s.handleDeleteComment)

	return e
}

// respond wraps data in the uniform envelope.
func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, map[string]any{
		"message":   message,
		"code":      status,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// requireAuth extracts and verifies the bearer token.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Request().Header.Get("Authorization")
		tok, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || tok == "" {
			return respond(c, http.StatusUnauthorized, "missing bearer token", nil)
		}
		userID, err := s.tokens.Verify(tok)
		if err != nil {
			return respond(c, http.StatusUnauthorized, "invalid token", nil)
		}
		c.Set("userID", userID)
		return next(c)
	}
}

func viewer(c echo.Context) string {
	id, _ := c.Get("userID").(string)
	return id
}

func newID() string {
	id, _ := uuid.NewV4()
	return id.String()
}

// --- auth ---

func (s *Server) handleRegister(c echo.Context) error {
	var req model.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "malformed body", nil)
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return respond(c, http.StatusBadRequest, "username, email and password are required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byUsername[req.Username]; taken {
		return respond(c, http.StatusConflict, "username already exists", nil)
	}
	salt := newSalt()
	acc := &account{
		User: model.User{
			ID:       newID(),
			Username: req.Username,
			Email:    req.Email,
		},
		passSalt: salt,
		passHash: hashPassword(req.Password, salt),
		roles:    []string{"user"},
	}
	s.users[acc.ID] = acc
	s.byUsername[acc.Username] = acc.ID
	s.log.Debug("registered", zap.String("user_id", acc.ID))
	return respond(c, http.StatusCreated, "user created", s.userView(acc))
}

func (s *Server) handleLogin(c echo.Context) error {
	var req model.LoginRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "malformed body", nil)
	}

	if ok, retryAfter := s.limiter.allow(req.Username); !ok {
		c.Response().Header().Set("Retry-After", retryAfter.Round(time.Second).String())
		return respond(c, http.StatusTooManyRequests, "too many failed logins", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.findByUsernameOrEmail(req.Username)
	if acc == nil || !verifyPassword(req.Password, acc.passSalt, acc.passHash) {
		s.limiter.failure(req.Username)
		return respond(c, http.StatusUnauthorized, "bad credentials", nil)
	}
	s.limiter.success(req.Username)
	tok, err := s.tokens.Issue(acc.ID)
	if err != nil {
		return respond(c, http.StatusInternalServerError, "token issue failed", nil)
	}
	return respond(c, http.StatusOK, "login ok", model.TokenResponse{
		AccessToken:       tok,
		TokenType:         "Bearer",
		UserID:            acc.ID,
		Username:          acc.Username,
		Email:             acc.Email,
		Roles:             acc.roles,
		ProfilePictureURI: acc.ProfilePictureURI,
	})
}

func (s *Server) findByUsernameOrEmail(key string) *account {
	if id, ok := s.byUsername[key]; ok {
		return s.users[id]
	}
	for _, acc := range s.users {
		if acc.Email == key {
			return acc
		}
	}
	return nil
}

// --- users ---

// userView fills in the derived follower counts.
func (s *Server) userView(acc *account) model.User {
	u := acc.User
	for follower, set := range s.follows {
		if set[acc.ID] {
			u.FollowersCount++
		}
		if follower == acc.ID {
			u.FollowingCount = len(set)
		}
	}
	return u
}

func (s *Server) handleListUsers(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.users))
	for _, acc := range s.users {
		out = append(out, s.userView(acc))
	}
	return respond(c, http.StatusOK, "ok", out)
}

func (s *Server) handleGetUser(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.users[c.Param("id")]
	if !ok {
		return respond(c, http.StatusNotFound, "user not found", nil)
	}
	return respond(c, http.StatusOK, "ok", s.userView(acc))
}

func (s *Server) handleEditProfile(c echo.Context) error {
	var req model.EditProfileRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "malformed body", nil)
	}
	if strings.TrimSpace(req.Username) == "" {
		return respond(c, http.StatusBadRequest, "username is required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.users[viewer(c)]
	if !ok {
		return respond(c, http.StatusNotFound, "user not found", nil)
	}
	if other, taken := s.byUsername[req.Username]; taken && other != acc.ID {
		return respond(c, http.StatusConflict, "username already exists", nil)
	}

	delete(s.byUsername, acc.Username)
	acc.Username = req.Username
	if req.Email != "" {
		acc.Email = req.Email
	}
	acc.ProfilePictureURI = req.ProfilePictureURI
	s.byUsername[acc.Username] = acc.ID

	tok, err := s.tokens.Issue(acc.ID)
	if err != nil {
		return respond(c, http.StatusInternalServerError, "token issue failed", nil)
	}
	return respond(c, http.StatusOK, "profile updated", model.TokenResponse{
		AccessToken:       tok,
		TokenType:         "Bearer",
		UserID:            acc.ID,
		Username:          acc.Username,
		Email:             acc.Email,
		Roles:             acc.roles,
		ProfilePictureURI: acc.ProfilePictureURI,
	})
}

func (s *Server) handleFollowers(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := c.Param("id")
	if _, ok := s.users[target]; !ok {
		return respond(c, http.StatusNotFound, "user not found", nil)
	}
	out := make([]model.User, 0)
	for follower, set := range s.follows {
		if set[target] {
			if acc, ok := s.users[follower]; ok {
				out = append(out, s.userView(acc))
			}
		}
	}
	return respond(c, http.StatusOK, "ok", out)
}

func (s *Server) handleFollowing(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := c.Param("id")
	if _, ok := s.users[target]; !ok {
		return respond(c, http.StatusNotFound, "user not found", nil)
	}
	out := make([]model.User, 0)
	for followee := range s.follows[target] {
		if acc, ok := s.users[followee]; ok {
			out = append(out, s.userView(acc))
		}
	}
	return respond(c, http.StatusOK, "ok", out)
}

func (s *Server) handleFollow(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := c.Param("id")
	if _, ok := s.users[target]; !ok {
		return respond(c, http.StatusNotFound, "user not found", nil)
	}
	me := viewer(c)
	if s.follows[me] == nil {
		s.follows[me] = map[string]bool{}
	}
	s.follows[me][target] = true
	return respond(c, http.StatusOK, "followed", nil)
}

func (s *Server) handleUnfollow(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.follows[viewer(c)], c.Param("id"))
	return respond(c, http.StatusOK, "unfollowed", nil)
}

// --- posts ---

func (s *Server) handleUserPosts(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := c.Param("id")
	if _, ok := s.users[target]; !ok {
		return respond(c, http.StatusNotFound, "user not found", nil)
	}
	out := make([]model.Post, 0)
	for _, p := range s.posts {
		if p.UserID == target {
			out = append(out, s.postView(p))
		}
	}
	return respond(c, http.StatusOK, "ok", out)
}

// postView fills in the derived like count.
func (s *Server) postView(p *model.Post) model.Post {
	out := *p
	out.LikeCount = len(s.likes[p.ID])
	return out
}

func (s *Server) handleCreatePost(c echo.Context) error {
	var req model.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "malformed body", nil)
	}
	if strings.TrimSpace(req.Title) == "" {
		return respond(c, http.StatusBadRequest, "title is required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.users[viewer(c)]
	if !ok {
		return respond(c, http.StatusNotFound, "user not found", nil)
	}
	p := &model.Post{
		ID:        newID(),
		UserID:    acc.ID,
		Username:  acc.Username,
		Title:     req.Title,
		Content:   req.Content,
		ImageURI:  req.ImageURI,
		CreatedAt: time.Now().UTC(),
	}
	s.posts[p.ID] = p
	return respond(c, http.StatusCreated, "post created", s.postView(p))
}

func (s *Server) handleGetPost(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[c.Param("id")]
	if !ok {
		return respond(c, http.StatusNotFound, "post not found", nil)
	}
	return respond(c, http.StatusOK, "ok", s.postView(p))
}

func (s *Server) handleLike(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	postID := c.Param("id")
	if _, ok := s.posts[postID]; !ok {
		return respond(c, http.StatusNotFound, "post not found", nil)
	}
	if s.likes[postID] == nil {
		s.likes[postID] = map[string]model.Like{}
	}
	me := viewer(c)
	if _, dup := s.likes[postID][me]; !dup {
		s.likes[postID][me] = model.Like{
			ID:        newID(),
			PostID:    postID,
			UserID:    me,
			CreatedAt: time.Now().UTC(),
		}
	}
	return respond(c, http.StatusOK, "liked", nil)
}

func (s *Server) handleUnlike(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	postID := c.Param("id")
	if _, ok := s.posts[postID]; !ok {
		return respond(c, http.StatusNotFound, "post not found", nil)
	}
	delete(s.likes[postID], viewer(c))
	return respond(c, http.StatusOK, "unliked", nil)
}

func (s *Server) handlePostLikes(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	postID := c.Param("id")
	if _, ok := s.posts[postID]; !ok {
		return respond(c, http.StatusNotFound, "post not found", nil)
	}
	out := make([]model.Like, 0, len(s.likes[postID]))
	for _, l := range s.likes[postID] {
		out = append(out, l)
	}
	return respond(c, http.StatusOK, "ok", out)
}

// --- comments ---

func (s *Server) handleComments(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	postID := c.Param("id")
	if _, ok := s.posts[postID]; !ok {
		return respond(c, http.StatusNotFound, "post not found", nil)
	}
	out := make([]model.Comment, 0)
	for _, cm := range s.comments {
		if cm.PostID == postID {
			out = append(out, *cm)
		}
	}
	return respond(c, http.StatusOK, "ok", out)
}

func (s *Server) handleCreateComment(c echo.Context) error {
	var req model.CommentRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "malformed body", nil)
	}
	if strings.TrimSpace(req.Content) == "" {
		return respond(c, http.StatusBadRequest, "content is required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	postID := c.Param("id")
	if _, ok := s.posts[postID]; !ok {
		return respond(c, http.StatusNotFound, "post not found", nil)
	}
	acc, ok := s.users[viewer(c)]
	if !ok {
		return respond(c, http.StatusNotFound, "user not found", nil)
	}
	cm := &model.Comment{
		ID:             newID(),
		PostID:         postID,
		UserID:         acc.ID,
		AuthorUsername: acc.Username,
		Content:        req.Content,
	}
	s.comments[cm.ID] = cm
	return respond(c, http.StatusCreated, "comment created", *cm)
}

func (s *Server) handleDeleteComment(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cm, ok := s.comments[c.Param("id")]
	if !ok {
		return respond(c, http.StatusNotFound, "comment not found", nil)
	}
	if cm.UserID != viewer(c) {
		return respond(c, http.StatusForbidden, "not the comment author", nil)
	}
	delete(s.comments, cm.ID)
	return respond(c, http.StatusOK, "comment deleted", nil)
}
