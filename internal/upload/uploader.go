// Package upload sends images to the external media host and returns hosted URLs.
package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"github.com/lookapp/look-cli/internal/errs"
)

// Uploader talks to the third-party media-hosting endpoint. The only contract
// the rest of the client relies on: an upload yields a URL string or fails.
type Uploader struct {
	endpoint string
	apiKey   string
	http     *http.Client
	log      *zap.Logger
}

// New builds an Uploader; httpClient may be nil for http.DefaultClient.
func New(endpoint, apiKey string, httpClient *http.Client, log *zap.Logger) *Uploader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Uploader{endpoint: endpoint, apiKey: apiKey, http: httpClient, log: log}
}

// uploadResponse accepts both flat and envelope-wrapped media-host replies.
type uploadResponse struct {
	URL  string `json:"url"`
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Upload posts the image as a multipart form and returns the hosted URL.
func (u *Uploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if u.endpoint == "" {
		return "", errors.New("upload: no media endpoint configured")
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("image", filename)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, pr)
	if err != nil {
		return "", fmt.Errorf("upload: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if u.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.apiKey)
	}

	res, err := u.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload: %v: %w", err, errs.ErrUnavailable)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		u.log.Warn("media host rejected upload", zap.Int("status", res.StatusCode), zap.ByteString("body", body))
		return "", fmt.Errorf("upload: status %d: %w", res.StatusCode, errs.ErrUnavailable)
	}

	var out uploadResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("upload: decode response: %w", err)
	}
	url := out.URL
	if url == "" {
		url = out.Data.URL
	}
	if url == "" {
		return "", errors.New("upload: media host returned no url")
	}
	return url, nil
}
