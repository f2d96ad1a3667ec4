package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the lenskit service. It is loaded
// once at startup and treated as immutable for the process lifetime.
type Config struct {
	Host     string // bind host; root browsing requires loopback
	Port     int
	LogLevel string

	// Filesystem navigation
	AllowlistRoots []string // permitted navigation roots, ":"-separated in env
	TokenTTL       time.Duration

	// Token signing. FSTokenSecret is the primary secret; AuthToken is the
	// legacy fallback that also serves as the service auth credential.
	FSTokenSecret string
	AuthToken     string

	// Retrieval index storage
	DataDir string

	// DevMode substitutes an insecure built-in signing secret when no real
	// secret is configured. Never enable outside local development.
	DevMode bool
}

// Load reads configuration from environment variables with sensible
// defaults. Allowlist roots are resolved to absolute paths so allowlist
// checks operate on canonical form.
func Load() (*Config, error) {
	cfg := &Config{
		Host:     envOrDefault("RLENS_HOST", "127.0.0.1"),
		Port:     8080,
		LogLevel: envOrDefault("RLENS_LOG_LEVEL", "info"),

		TokenTTL: time.Duration(envOrDefaultInt("RLENS_TOKEN_TTL_SEC", 600)) * time.Second,

		FSTokenSecret: os.Getenv("RLENS_FS_TOKEN_SECRET"),
		AuthToken:     os.Getenv("RLENS_TOKEN"),

		DataDir: envOrDefault("RLENS_DATA_DIR", "./data"),
		DevMode: os.Getenv("RLENS_DEV_MODE") == "1",
	}

	if portStr := os.Getenv("RLENS_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid RLENS_PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	for _, root := range strings.Split(os.Getenv("RLENS_ALLOWLIST_ROOTS"), ":") {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("invalid allowlist root %q: %w", root, err)
		}
		cfg.AllowlistRoots = append(cfg.AllowlistRoots, abs)
	}

	return cfg, nil
}

// SigningSecret returns the token signing secret: the dedicated secret if
// set, otherwise the service auth token. Empty means issuance is disabled
// outside dev mode.
func (c *Config) SigningSecret() string {
	if c.FSTokenSecret != "" {
		return c.FSTokenSecret
	}
	return c.AuthToken
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
