// Package config loads client configuration from env vars and an optional YAML file.
package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config collects everything the CLI needs to talk to the backend and the media host.
type Config struct {
	// BaseURL is the backend API root, including the /api prefix.
	BaseURL string        `yaml:"base_url" env:"LOOK_BASE_URL" env-default:"http://localhost:8080/api"`
	Timeout time.Duration `yaml:"timeout" env:"LOOK_TIMEOUT" env-default:"30s"`
	// DataDir overrides the default per-user config directory for session files.
	DataDir string      `yaml:"data_dir" env:"LOOK_DATA_DIR" env-default:""`
	Media   MediaConfig `yaml:"media"`
}

// MediaConfig points at the external media host that turns images into URLs.
type MediaConfig struct {
	Endpoint string `yaml:"endpoint" env:"LOOK_MEDIA_ENDPOINT" env-default:""`
	APIKey   string `yaml:"api_key" env:"LOOK_MEDIA_API_KEY" env-default:""`
}

// Load reads the config file at path when given, falling back to env-only.
// The path may also come from LOOK_CONFIG.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		path = os.Getenv("LOOK_CONFIG")
	}
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
