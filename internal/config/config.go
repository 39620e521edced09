// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used by the CLI.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Site identity
	SiteName    string
	SiteBaseURL string // absolute URL used for canonical and share links

	// Content pipeline
	ContentDir     string
	OutputDir      string
	CategoryOrder  []string // categories displayed first, in this order
	ContentTrusted bool     // render raw HTML from markdown without sanitizing
	ContentDrafts  bool     // include pages marked draft
	CodeStyle      string   // chroma style for highlighted code blocks

	// Valkey (Redis-compatible cache). Caching is off when ValkeyHost is empty.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	PageCacheTTL   time.Duration

	// Per-client request budget per minute. Zero disables rate limiting.
	RateLimit  int
	TrustProxy bool // identify clients by X-Forwarded-For / X-Real-IP
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if a value cannot be
// parsed or if critical values are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		SiteName:    envOrDefault("SITE_NAME", "Rust on Nails"),
		SiteBaseURL: strings.TrimRight(os.Getenv("SITE_BASE_URL"), "/"),

		ContentDir:    envOrDefault("CONTENT_DIR", "content"),
		OutputDir:     envOrDefault("OUTPUT_DIR", "dist"),
		CategoryOrder: splitList(os.Getenv("CATEGORY_ORDER")),
		CodeStyle:     envOrDefault("CODE_STYLE", "monokai"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
	}

	var err error
	if cfg.ContentTrusted, err = envBool("CONTENT_TRUSTED", false); err != nil {
		return nil, err
	}
	if cfg.ContentDrafts, err = envBool("CONTENT_DRAFTS", false); err != nil {
		return nil, err
	}
	if cfg.PageCacheTTL, err = envDuration("PAGE_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = envInt("RATE_LIMIT", 300); err != nil {
		return nil, err
	}
	if cfg.TrustProxy, err = envBool("TRUST_PROXY", false); err != nil {
		return nil, err
	}

	if cfg.Env == "production" {
		if err := requireAbsoluteURL(cfg.SiteBaseURL); err != nil {
			return nil, err
		}
		if cfg.ContentDrafts {
			return nil, fmt.Errorf("CONTENT_DRAFTS must not be enabled in production")
		}
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

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// CacheEnabled reports whether a Valkey page cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.ValkeyHost != ""
}

func requireAbsoluteURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("SITE_BASE_URL must be set in production")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SITE_BASE_URL must be an absolute URL, got %q", raw)
	}
	return nil
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: invalid count %q", key, v)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

// splitList parses a comma-separated list, dropping blank entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
