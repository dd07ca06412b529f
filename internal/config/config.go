// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken       string
	EnterpriseToken   string
	EnterpriseBaseURL string
	SyncInterval      time.Duration
	LookbackDays      int
	ListenAddr        string
	DBPath            string
}

// HasEnterprise returns true when an enterprise token and base URL are both
// configured, meaning enterprise-hosted repositories can be synced.
func (c *Config) HasEnterprise() bool {
	return c.EnterpriseToken != "" && c.EnterpriseBaseURL != ""
}

// Load reads configuration from environment variables and returns a validated
// Config. CONTRIBSYNC_GITHUB_TOKEN is optional; without it public repositories
// cannot be synced until a token is provided. CONTRIBSYNC_ENTERPRISE_TOKEN and
// CONTRIBSYNC_ENTERPRISE_BASE_URL must be set together. Optional variables with
// defaults: CONTRIBSYNC_SYNC_INTERVAL (1h), CONTRIBSYNC_LOOKBACK_DAYS (365),
// CONTRIBSYNC_LISTEN_ADDR (127.0.0.1:8080), CONTRIBSYNC_DB_PATH (contribsync.db).
func Load() (*Config, error) {
	token := os.Getenv("CONTRIBSYNC_GITHUB_TOKEN")
	entToken := os.Getenv("CONTRIBSYNC_ENTERPRISE_TOKEN")
	entBaseURL := os.Getenv("CONTRIBSYNC_ENTERPRISE_BASE_URL")

	if entToken != "" && entBaseURL == "" {
		return nil, fmt.Errorf("CONTRIBSYNC_ENTERPRISE_TOKEN is set but CONTRIBSYNC_ENTERPRISE_BASE_URL is empty")
	}
	if entBaseURL != "" && entToken == "" {
		return nil, fmt.Errorf("CONTRIBSYNC_ENTERPRISE_BASE_URL is set but CONTRIBSYNC_ENTERPRISE_TOKEN is empty")
	}

	syncInterval := time.Hour
	if v, ok := os.LookupEnv("CONTRIBSYNC_SYNC_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("CONTRIBSYNC_SYNC_INTERVAL has invalid duration %q: %w", v, err)
		}
		syncInterval = parsed
	}

	lookbackDays := 365
	if v, ok := os.LookupEnv("CONTRIBSYNC_LOOKBACK_DAYS"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("CONTRIBSYNC_LOOKBACK_DAYS must be a positive integer, got %q", v)
		}
		lookbackDays = parsed
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("CONTRIBSYNC_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "contribsync.db"
	if v, ok := os.LookupEnv("CONTRIBSYNC_DB_PATH"); ok {
		dbPath = v
	}

	return &Config{
		GitHubToken:       token,
		EnterpriseToken:   entToken,
		EnterpriseBaseURL: entBaseURL,
		SyncInterval:      syncInterval,
		LookbackDays:      lookbackDays,
		ListenAddr:        listenAddr,
		DBPath:            dbPath,
	}, nil
}
