// Package config handles application configuration from environment variables
// and optional HCL files.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"
)

// DefaultFiles are the optional config files read by Load. Environment
// variables take precedence over file values.
var DefaultFiles = []string{"./grantbot.hcl", "./grantbot.local.hcl"}

// Config holds the application configuration.
type Config struct {
	APIKey            string
	Provider          string
	Model             string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	NewsLimit         int
	SearchDebounce    time.Duration

	TelegramBotToken string
	DatabasePath     string
	LogLevel         string
	AllowedUsers     []int64
	MetricsAddr      string
}

type rawConfig struct {
	APIKey            string        `hcl:"api_key" env:"API_KEY"`
	Provider          string        `hcl:"ai_provider" env:"AI_PROVIDER" default:"gemini"`
	Model             string        `hcl:"ai_model" env:"AI_MODEL"`
	BaseURL           string        `hcl:"ai_base_url" env:"AI_BASE_URL"`
	Timeout           time.Duration `hcl:"ai_timeout" env:"AI_TIMEOUT" default:"60s"`
	RequestsPerMinute int           `hcl:"ai_requests_per_minute" env:"AI_REQUESTS_PER_MINUTE" default:"30"`
	NewsLimit         int           `hcl:"news_limit" env:"NEWS_LIMIT" default:"5"`
	SearchDebounce    time.Duration `hcl:"search_debounce" env:"SEARCH_DEBOUNCE" default:"300ms"`
	TelegramBotToken  string        `hcl:"telegram_bot_token" env:"TELEGRAM_BOT_TOKEN"`
	DatabasePath      string        `hcl:"database_path" env:"DATABASE_PATH" default:"./data/grants.db"`
	LogLevel          string        `hcl:"log_level" env:"LOG_LEVEL" default:"info"`
	AllowedUsers      string        `hcl:"allowed_users" env:"ALLOWED_USERS"`
	MetricsAddr       string        `hcl:"metrics_addr" env:"METRICS_ADDR"`
}

// Load reads configuration from DefaultFiles and the environment.
func Load() (*Config, error) {
	return LoadFiles(DefaultFiles...)
}

// LoadFiles reads configuration from the given HCL files, skipping missing
// ones, and then from the environment.
func LoadFiles(files ...string) (*Config, error) {
	var raw rawConfig
	loader := aconfig.LoaderFor(&raw, aconfig.Config{
		SkipFlags:          true,
		AllowUnknownFields: true,
		AllowUnknownEnvs:   true,
		Files:              files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".hcl": aconfighcl.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if raw.APIKey == "" {
		return nil, errors.New("API_KEY is required")
	}

	provider := strings.ToLower(strings.TrimSpace(raw.Provider))
	switch provider {
	case "gemini", "openai":
	default:
		return nil, fmt.Errorf("invalid AI_PROVIDER %q, use: gemini, openai", raw.Provider)
	}
	if raw.Timeout <= 0 {
		return nil, fmt.Errorf("AI_TIMEOUT must be positive, got %s", raw.Timeout)
	}
	if raw.NewsLimit < 1 {
		return nil, fmt.Errorf("NEWS_LIMIT must be at least 1, got %d", raw.NewsLimit)
	}
	if raw.RequestsPerMinute < 0 {
		return nil, fmt.Errorf("AI_REQUESTS_PER_MINUTE must not be negative, got %d", raw.RequestsPerMinute)
	}
	if raw.SearchDebounce < 0 {
		return nil, fmt.Errorf("SEARCH_DEBOUNCE must not be negative, got %s", raw.SearchDebounce)
	}

	allowedUsers, err := parseUserIDs(raw.AllowedUsers)
	if err != nil {
		return nil, err
	}

	return &Config{
		APIKey:            raw.APIKey,
		Provider:          provider,
		Model:             raw.Model,
		BaseURL:           raw.BaseURL,
		Timeout:           raw.Timeout,
		RequestsPerMinute: raw.RequestsPerMinute,
		NewsLimit:         raw.NewsLimit,
		SearchDebounce:    raw.SearchDebounce,
		TelegramBotToken:  raw.TelegramBotToken,
		DatabasePath:      raw.DatabasePath,
		LogLevel:          raw.LogLevel,
		AllowedUsers:      allowedUsers,
		MetricsAddr:       raw.MetricsAddr,
	}, nil
}

func parseUserIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		uid, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
		}
		ids = append(ids, uid)
	}
	return ids, nil
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	return len(c.AllowedUsers) == 0 || slices.Contains(c.AllowedUsers, userID)
}
