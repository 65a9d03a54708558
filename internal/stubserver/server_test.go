package stubserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestServer_AuthRequiredUnderV1(t *testing.T) {
	s := New([]byte("k"), time.Hour, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	res, err := http.Get(srv.URL + "/api/v1/users")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	var env struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	require.Equal(t, http.StatusUnauthorized, env.Code)
}

func TestServer_RegisterValidation(t *testing.T) {
	s := New([]byte("k"), time.Hour, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	res, err := http.Post(srv.URL+"/api/auth/register", "application/json",
		strings.NewReader(`{"username":"","email":"","password":""}`))
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestServer_LoginByEmail(t *testing.T) {
	s := New([]byte("k"), time.Hour, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	res, err := http.Post(srv.URL+"/api/auth/register", "application/json",
		strings.NewReader(`{"username":"pepe","email":"p@p.com","password":"pw"}`))
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res, err = http.Post(srv.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"username":"p@p.com","password":"pw"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var env struct {
		Data struct {
			AccessToken string `json:"accessToken"`
			Username    string `json:"username"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	require.Equal(t, "pepe", env.Data.Username)

	sub, err := s.tokens.Verify(env.Data.AccessToken)
	require.NoError(t, err)
	require.NotEmpty(t, sub)
}

func TestServer_CommentFromUnknownTokenSubject(t *testing.T) {
	s := New([]byte("k"), time.Hour, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	res, err := http.Post(srv.URL+"/api/auth/register", "application/json",
		strings.NewReader(`{"username":"pepe","email":"p@p.com","password":"pw"}`))
	require.NoError(t, err)
	res.Body.Close()

	res, err = http.Post(srv.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"username":"pepe","password":"pw"}`))
	require.NoError(t, err)
	var login struct {
		Data struct {
			AccessToken string `json:"accessToken"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&login))
	res.Body.Close()

	do := func(method, path, token, body string) *http.Response {
		req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return res
	}

	res = do(http.MethodPost, "/api/v1/posts", login.Data.AccessToken, `{"title":"hi"}`)
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	res.Body.Close()
	require.NotEmpty(t, created.Data.ID)

	// validly signed token whose subject no longer exists in the store,
	// as after a restart that kept the signing key
	ghost, err := s.tokens.Issue("ghost-id")
	require.NoError(t, err)

	res = do(http.MethodPost, "/api/v1/posts/"+created.Data.ID+"/comments", ghost, `{"content":"boo"}`)
	res.Body.Close()
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}
