package upload

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lookapp/look-cli/internal/errs"
)

func TestUploader_MultipartAndURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer media-key", r.Header.Get("Authorization"))

		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, "selfie.jpg", hdr.Filename)
		body, err := io.ReadAll(f)
		require.NoError(t, err)
		require.Equal(t, "jpegbytes", string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"url":"https://media.example/abc.jpg"}}`))
	}))
	defer srv.Close()

	u := New(srv.URL, "media-key", srv.Client(), zap.NewNop())
	url, err := u.Upload(context.Background(), "selfie.jpg", strings.NewReader("jpegbytes"))
	require.NoError(t, err)
	require.Equal(t, "https://media.example/abc.jpg", url)
}

func TestUploader_FlatResponseShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"url":"https://media.example/flat.jpg"}`))
	}))
	defer srv.Close()

	u := New(srv.URL, "", srv.Client(), zap.NewNop())
	url, err := u.Upload(context.Background(), "x.jpg", strings.NewReader("b"))
	require.NoError(t, err)
	require.Equal(t, "https://media.example/flat.jpg", url)
}

func TestUploader_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	u := New(srv.URL, "", srv.Client(), zap.NewNop())
	_, err := u.Upload(context.Background(), "x.jpg", strings.NewReader("b"))
	require.ErrorIs(t, err, errs.ErrUnavailable)

	missing := New("", "", nil, zap.NewNop())
	_, err = missing.Upload(context.Background(), "x.jpg", strings.NewReader("b"))
	require.Error(t, err)
}

func TestUploader_NoURLInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	u := New(srv.URL, "", srv.Client(), zap.NewNop())
	_, err := u.Upload(context.Background(), "x.jpg", strings.NewReader("b"))
	require.Error(t, err)
}
