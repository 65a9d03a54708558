// Package api implements the typed client for the Look backend REST API.
//
// Every response is wrapped in the uniform envelope {message, code, data,
// timestamp}; the client unwraps it and returns the typed data. Methods come
// in two classes: read operations that hydrate passive views degrade to safe
// zero values on any failure (logged, never propagated), while mutating and
// identity-critical operations return errors mapped onto the sentinels in
// package errs.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/lookapp/look-cli/internal/errs"
)

// TokenSource yields the current access token, or "" when logged out.
// The session manager is the canonical implementation.
type TokenSource interface {
	Token() string
}

// Client is the shared transport for all backend calls. The bearer token is
// injected per request from the TokenSource; there is no shared mutable
// header state.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *zap.Logger
}

// New builds a Client. httpClient may be nil for http.DefaultClient;
// tokens may be nil for an unauthenticated client.
func New(baseURL string, httpClient *http.Client, tokens TokenSource, log *zap.Logger) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("api: bad base url %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		log:     log,
	}, nil
}

// envelope is the uniform wire-level wrapper around every response body.
type envelope[T any] struct {
	Message   string `json:"message"`
	Code      int    `json:"code"`
	Data      *T     `json:"data"`
	Timestamp string `json:"timestamp,omitempty"`
}

// do executes one request. Request preparation attaches the bearer token when
// one is present, plus a request id for log correlation.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	if rid, err := uuid.NewV4(); err == nil {
		req.Header.Set("X-Request-Id", rid.String())
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %v: %w", method, path, err, errs.ErrUnavailable)
	}
	return res, nil
}

// call performs a request and unwraps the envelope into T.
func call[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T
	res, err := c.do(ctx, method, path, body)
	if err != nil {
		return zero, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return zero, fmt.Errorf("api: read response: %v: %w", err, errs.ErrUnavailable)
	}

	var env envelope[T]
	decodeErr := json.Unmarshal(raw, &env)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return zero, statusError(res.StatusCode, env.Message)
	}
	if decodeErr != nil {
		return zero, fmt.Errorf("api: decode envelope: %v: %w", decodeErr, errs.ErrUnavailable)
	}
	if env.Data == nil {
		return zero, fmt.Errorf("api: envelope has no data: %w", errs.ErrUnavailable)
	}
	return *env.Data, nil
}

// ack performs a request whose envelope data, if any, is irrelevant.
func ack(ctx context.Context, c *Client, method, path string) error {
	res, err := c.do(ctx, method, path, nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var env envelope[json.RawMessage]
		raw, _ := io.ReadAll(res.Body)
		_ = json.Unmarshal(raw, &env)
		return statusError(res.StatusCode, env.Message)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

// statusError maps an HTTP status onto a sentinel, keeping the backend's
// message when the envelope carried one.
func statusError(code int, message string) error {
	if message == "" {
		message = http.StatusText(code)
	}
	var sentinel error
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		sentinel = errs.ErrUnauthorized
	case code == http.StatusNotFound:
		sentinel = errs.ErrNotFound
	case code == http.StatusConflict:
		sentinel = errs.ErrAlreadyExists
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		sentinel = errs.ErrValidation
	default:
		sentinel = errs.ErrUnavailable
	}
	return fmt.Errorf("api: %d %s: %w", code, message, sentinel)
}
