// Package config handles application configuration loading from environment
// variables and the TABLER_* option map consumed by the Tabler extension.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the process-level settings loaded from the environment.
type Config struct {
	// Server settings
	Host      string
	Port      string
	Env       string // "development", "production", "testing"
	SecretKey string
	StaticDir string

	// Session backend: "cookie" or "valkey"
	SessionBackend string

	// Valkey (Redis-compatible session store)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible bucket the generated asset tree is published to
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Tabler holds TABLER_* overrides read from the environment. Keys that
	// are not set in the environment are absent so defaults can fill them.
	Tabler Map
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host:      envOrDefault("APP_HOST", "0.0.0.0"),
		Port:      envOrDefault("APP_PORT", "8080"),
		Env:       envOrDefault("APP_ENV", "development"),
		SecretKey: os.Getenv("SECRET_KEY"),
		StaticDir: envOrDefault("STATIC_DIR", "static"),

		SessionBackend: envOrDefault("SESSION_BACKEND", "cookie"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "tabler-assets"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		Tabler: Map{},
	}

	if cfg.Env == "production" && cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY must be set in production")
	}

	switch cfg.SessionBackend {
	case "cookie", "valkey":
	default:
		return nil, fmt.Errorf("SESSION_BACKEND must be cookie or valkey, got %q", cfg.SessionBackend)
	}

	if cfg.SecretKey != "" {
		cfg.Tabler[KeySecretKey] = cfg.SecretKey
	}
	for _, key := range []string{KeyLayout, KeyThemeColor, KeyLanguage} {
		if v := os.Getenv(key); v != "" {
			cfg.Tabler[key] = v
		}
	}
	for _, key := range []string{KeyShowRequestTime, KeyThemeDarkMode} {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			cfg.Tabler[key] = b
		}
	}
	if v := os.Getenv(KeyPlugins); v != "" {
		var names []string
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		cfg.Tabler[KeyPlugins] = names
	}

	return cfg, nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HasS3 reports whether an asset bucket is configured.
func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
