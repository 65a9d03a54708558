package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_EnvDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/api", cfg.BaseURL)
	require.Equal(t, 30*time.Second, cfg.Timeout)
	require.Empty(t, cfg.Media.Endpoint)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOOK_BASE_URL", "https://look.example/api")
	t.Setenv("LOOK_TIMEOUT", "5s")
	t.Setenv("LOOK_MEDIA_ENDPOINT", "https://media.example/upload")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "https://look.example/api", cfg.BaseURL)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, "https://media.example/upload", cfg.Media.Endpoint)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "look.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"base_url: https://file.example/api\ntimeout: 10s\nmedia:\n  endpoint: https://media.file/up\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://file.example/api", cfg.BaseURL)
	require.Equal(t, 10*time.Second, cfg.Timeout)
	require.Equal(t, "https://media.file/up", cfg.Media.Endpoint)
}
