package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/arko-chat/geobridge/internal/credentials"
)

const (
	appName    = "geobridge"
	configFile = "config.json"
)

type Config struct {
	Addr               string `json:"addr"`
	DataDir            string `json:"data_dir"`
	LogLevel           string `json:"log_level"`
	LogFormat          string `json:"log_format"`
	Catalog            string `json:"catalog,omitempty"`
	CallTimeoutSeconds int    `json:"call_timeout_seconds"`

	// AllowedOrigins lists browser origins besides loopback ones that
	// may call the API.
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
	// LogFile, if set, also receives the log, rotated at 10 MB.
	LogFile        string   `json:"log_file,omitempty"`

	PublishableKey string `json:"-"`
	Path           string `json:"-"`
}

func Default(appDir string) Config {
	return Config{
		Addr:               "127.0.0.1:7755",
		DataDir:            filepath.Join(appDir, "data"),
		LogLevel:           "info",
		LogFormat:          "text",
		CallTimeoutSeconds: 30,
	}
}

// CallTimeout bounds how long an HTTP caller waits for a settlement.
// Zero or less waits for as long as the request lives.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(max(c.CallTimeoutSeconds, 0)) * time.Second
}

// Load reads the config file from the user config directory, writing a
// default one on first run, then applies the keyring secret and
// environment overrides.
func Load() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(configDir, appName))
}

func LoadFrom(appDir string) (*Config, error) {
	path := filepath.Join(appDir, configFile)
	cfg := Default(appDir)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(appDir, 0700); err != nil {
			return nil, err
		}
		out, _ := json.MarshalIndent(cfg, "", "  ")
		if err := os.WriteFile(path, out, 0600); err != nil {
			return nil, err
		}
		slog.Info("generated new config", "path", path)
	default:
		return nil, err
	}
	cfg.Path = path

	cfg.PublishableKey, err = credentials.LoadPublishableKey()
	if err != nil && !errors.Is(err, credentials.ErrNotFound) {
		return nil, err
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GEOBRIDGE_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("GEOBRIDGE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("GEOBRIDGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GEOBRIDGE_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("GEOBRIDGE_CATALOG"); v != "" {
		cfg.Catalog = v
	}
	if v := os.Getenv("GEOBRIDGE_PUBLISHABLE_KEY"); v != "" {
		cfg.PublishableKey = v
	}
}

// ReadLogLevel returns the log level currently written in the file at
// path, ignoring every other field.
func ReadLogLevel(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var partial struct {
		LogLevel string `json:"log_level"`
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return "", fmt.Errorf("config: parse %s: %w", path, err)
	}
	return partial.LogLevel, nil
}
