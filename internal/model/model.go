// Package model defines domain records exchanged with the Look backend.
package model

import "time"

// SessionUser is the slice of the user profile kept alongside the access token.
type SessionUser struct {
	ID                string   `json:"id"`
	Username          string   `json:"username"`
	Email             string   `json:"email"`
	Roles             []string `json:"roles"`
	ProfilePictureURI string   `json:"profilePictureUri,omitempty"`
}

// Session is the client-side record of an authenticated user.
// A session is valid only while both the user and the access token are present.
type Session struct {
	User        SessionUser
	AccessToken string
	ExpiresAt   time.Time // zero when the token carries no exp claim
}

// TokenResponse is what the backend returns on login and on profile edit.
type TokenResponse struct {
	AccessToken       string   `json:"accessToken"`
	TokenType         string   `json:"tokenType"`
	UserID            string   `json:"userId"`
	Username          string   `json:"username"`
	Email             string   `json:"email"`
	Roles             []string `json:"roles"`
	ProfilePictureURI string   `json:"profilePictureUri,omitempty"`
}

// SessionUser builds the persisted profile record from a token response.
func (t TokenResponse) SessionUser() SessionUser {
	return SessionUser{
		ID:                t.UserID,
		Username:          t.Username,
		Email:             t.Email,
		Roles:             t.Roles,
		ProfilePictureURI: t.ProfilePictureURI,
	}
}

// User is a server-owned account snapshot. Counts are authoritative on the
// server; the client only applies transient +-1 adjustments until the next fetch.
type User struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	ProfilePictureURI string `json:"profilePictureUri"`
	FollowersCount    int    `json:"followersCount"`
	FollowingCount    int    `json:"followingCount"`
}

// Post is a server-owned publication. Read-only except creation.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURI  string    `json:"imageUri"`
	CreatedAt time.Time `json:"createdAt"`
	LikeCount int       `json:"likeCount"`
}

// Comment belongs to a post.
type Comment struct {
	ID             string `json:"id"`
	PostID         string `json:"postId"`
	UserID         string `json:"userId"`
	AuthorUsername string `json:"authorUsername"`
	Content        string `json:"content"`
}

// Like marks a (post, user) pair.
type Like struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginRequest carries credentials; Username accepts username or email.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest creates a new account. Registration does not log in.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EditProfileRequest updates the authenticated user's own profile.
type EditProfileRequest struct {
	Username          string `json:"username"`
	Email             string `json:"email"`
	ProfilePictureURI string `json:"profilePictureUri"`
}

// CreatePostRequest publishes a new post. ImageURI points at an already
// uploaded media-host URL.
type CreatePostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURI string `json:"imageUri"`
}

// CommentRequest creates a comment on a post.
type CommentRequest struct {
	Content string `json:"content"`
}
