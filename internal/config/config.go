package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything the CineVibe client reads at startup.
type Config struct {
	APIURL            string  `toml:"api_url" env:"CINEVIBE_API_URL"`
	PageSize          int     `toml:"page_size" env:"CINEVIBE_PAGE_SIZE"`
	ProfileTTLSeconds int     `toml:"profile_ttl_seconds" env:"CINEVIBE_PROFILE_TTL"`
	OperationResetMS  int     `toml:"operation_reset_ms" env:"CINEVIBE_OPERATION_RESET_MS"`
	RequestTimeoutSec int     `toml:"request_timeout_seconds"`
	MaxRetries        int     `toml:"max_retries"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TokenPath         string  `toml:"token_path" env:"CINEVIBE_TOKEN_PATH"`
	LogPath           string  `toml:"log_path" env:"CINEVIBE_LOG_PATH"`
	LogLevel          string  `toml:"log_level" env:"CINEVIBE_LOG_LEVEL"`

	// Token is only ever taken from the environment.
	Token string `toml:"-" env:"CINEVIBE_TOKEN"`
}

const (
	defaultConfigPath = "~/.config/cinevibe/config.toml"
	defaultAPIURL     = "https://api.cinevibe.app"
	defaultTokenPath  = "~/.config/cinevibe/token"
	defaultLogPath    = "~/.local/state/cinevibe/cinevibe.log"
	defaultLogLevel   = "info"

	defaultPageSize          = 20
	defaultProfileTTLSeconds = 60
	defaultOperationResetMS  = 2000
	defaultRequestTimeoutSec = 10
	defaultMaxRetries        = 2
	defaultRequestsPerSecond = 10
)

// Default returns the configuration used when no file or environment
// overrides exist. Paths are not yet expanded.
func Default() Config {
	return Config{
		APIURL:            defaultAPIURL,
		PageSize:          defaultPageSize,
		ProfileTTLSeconds: defaultProfileTTLSeconds,
		OperationResetMS:  defaultOperationResetMS,
		RequestTimeoutSec: defaultRequestTimeoutSec,
		MaxRetries:        defaultMaxRetries,
		RequestsPerSecond: defaultRequestsPerSecond,
		TokenPath:         defaultTokenPath,
		LogPath:           defaultLogPath,
		LogLevel:          defaultLogLevel,
	}
}

// Load reads the TOML config at path (or the default location), falling
// back to defaults when the file is missing, then applies CINEVIBE_*
// environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := readFile(resolved, &cfg); err != nil {
		return Config{}, err
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(bytes, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// normalize trims strings, replaces empty or out-of-range values with
// defaults and expands paths.
func (c *Config) normalize() {
	d := Default()

	c.APIURL = strings.TrimSpace(c.APIURL)
	if c.APIURL == "" {
		c.APIURL = d.APIURL
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.ProfileTTLSeconds <= 0 {
		c.ProfileTTLSeconds = d.ProfileTTLSeconds
	}
	if c.OperationResetMS <= 0 {
		c.OperationResetMS = d.OperationResetMS
	}
	if c.RequestTimeoutSec <= 0 {
		c.RequestTimeoutSec = d.RequestTimeoutSec
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = d.RequestsPerSecond
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	c.Token = strings.TrimSpace(c.Token)

	if strings.TrimSpace(c.TokenPath) == "" {
		c.TokenPath = d.TokenPath
	}
	c.TokenPath = mustExpand(c.TokenPath)
	if strings.TrimSpace(c.LogPath) == "" {
		c.LogPath = d.LogPath
	}
	c.LogPath = mustExpand(c.LogPath)
}

func (c Config) ProfileTTL() time.Duration {
	return time.Duration(c.ProfileTTLSeconds) * time.Second
}

func (c Config) OperationReset() time.Duration {
	return time.Duration(c.OperationResetMS) * time.Millisecond
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) { return expandPath(path) }

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
