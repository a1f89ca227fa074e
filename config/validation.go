package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the loaded values are usable. All problems are
// reported together.
func ValidateConfig(cfg *Config) error {
	var errs []string
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg}.Error())
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port <= 0 || port > 65535 {
		add("PORT", fmt.Sprintf("invalid port %q", cfg.ServerPort))
	}
	if cfg.AnthropicMaxTokens <= 0 {
		add("ANTHROPIC_MAX_TOKENS", "must be positive")
	}
	if cfg.UpstreamTimeout <= 0 {
		add("UPSTREAM_TIMEOUT", "must be positive")
	}
	if cfg.UpstreamMaxRetries < 0 {
		add("UPSTREAM_MAX_RETRIES", "must not be negative")
	}
	if cfg.SessionTTL <= 0 {
		add("SESSION_TTL", "must be positive")
	}
	if cfg.MaxUploadBytes <= 0 {
		add("MAX_UPLOAD_BYTES", "must be positive")
	}
	if cfg.RedisURL != "" {
		if cfg.RateLimitAnalyze <= 0 {
			add("RATE_LIMIT_ANALYZE", "must be positive")
		}
		if cfg.RateLimitWindow <= 0 {
			add("RATE_LIMIT_WINDOW", "must be positive")
		}
	}
	if cfg.DatabaseURL == "" && cfg.DBPath == "" {
		add("DB_PATH", "either DATABASE_URL or DB_PATH is required")
	}

	if cfg.Environment == Production {
		if cfg.SessionSecret == "" {
			add("SECRET_KEY", "required in production")
		}
		if cfg.AnthropicAPIKey == "" {
			add("ANTHROPIC_API_KEY", "required in production")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
