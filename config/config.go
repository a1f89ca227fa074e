package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort     string
	ServerHost     string
	LogLevel       string
	AllowedOrigins []string
	MaxUploadBytes int64

	// Upstream model configuration
	AnthropicAPIKey    string
	AnthropicAPIURL    string
	AnthropicModel     string
	AnthropicVersion   string
	AnthropicMaxTokens int
	UpstreamTimeout    time.Duration
	UpstreamMaxRetries int

	// Session configuration
	SessionSecret string
	// EphemeralSecret is set when SessionSecret was generated for this process only.
	EphemeralSecret bool
	SessionTTL      time.Duration
	CookieSecure    bool

	// Database configuration
	DatabaseURL string
	DBPath      string

	// Redis configuration
	RedisURL         string
	RateLimitAnalyze int
	RateLimitWindow  time.Duration

	// S3 configuration
	S3BucketName string
	AWSRegion    string
}

const (
	DefaultPort           = "5000"
	DefaultDBPath         = "calorie_king.db"
	DefaultAnthropicURL   = "https://api.anthropic.com/v1/messages"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("SERVER_HOST", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("ANTHROPIC_API_URL", DefaultAnthropicURL)
	v.SetDefault("ANTHROPIC_MODEL", DefaultAnthropicModel)
	v.SetDefault("ANTHROPIC_VERSION", "2023-06-01")
	v.SetDefault("ANTHROPIC_MAX_TOKENS", 1024)
	v.SetDefault("UPSTREAM_TIMEOUT", "60s")
	v.SetDefault("UPSTREAM_MAX_RETRIES", 2)
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_PATH", DefaultDBPath)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RATE_LIMIT_ANALYZE", 30)
	v.SetDefault("RATE_LIMIT_WINDOW", "1h")
	v.SetDefault("S3_BUCKET_NAME", "")
	v.SetDefault("AWS_REGION", "")
	v.AutomaticEnv()
	return v
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	v := newViper()

	cfg := &Config{
		Environment:        env,
		ServerPort:         v.GetString("PORT"),
		ServerHost:         v.GetString("SERVER_HOST"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		AllowedOrigins:     splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		MaxUploadBytes:     v.GetInt64("MAX_UPLOAD_BYTES"),
		AnthropicAPIURL:    v.GetString("ANTHROPIC_API_URL"),
		AnthropicModel:     v.GetString("ANTHROPIC_MODEL"),
		AnthropicVersion:   v.GetString("ANTHROPIC_VERSION"),
		AnthropicMaxTokens: v.GetInt("ANTHROPIC_MAX_TOKENS"),
		UpstreamTimeout:    v.GetDuration("UPSTREAM_TIMEOUT"),
		UpstreamMaxRetries: v.GetInt("UPSTREAM_MAX_RETRIES"),
		SessionTTL:         v.GetDuration("SESSION_TTL"),
		CookieSecure:       v.GetBool("COOKIE_SECURE"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		DBPath:             v.GetString("DB_PATH"),
		RedisURL:           v.GetString("REDIS_URL"),
		RateLimitAnalyze:   v.GetInt("RATE_LIMIT_ANALYZE"),
		RateLimitWindow:    v.GetDuration("RATE_LIMIT_WINDOW"),
		S3BucketName:       v.GetString("S3_BUCKET_NAME"),
		AWSRegion:          v.GetString("AWS_REGION"),
	}

	apiKey, err := lookupSecret(v, "ANTHROPIC_API_KEY")
	if err != nil {
		return nil, err
	}
	cfg.AnthropicAPIKey = apiKey

	secret, err := lookupSecret(v, "SECRET_KEY")
	if err != nil {
		return nil, err
	}
	if secret == "" && env != Production {
		secret, err = randomSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		cfg.EphemeralSecret = true
	}
	cfg.SessionSecret = secret

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// lookupSecret resolves a secret from the environment, from NAME_FILE, or from
// the Docker secrets directory, in that order.
func lookupSecret(v *viper.Viper, name string) (string, error) {
	if value := strings.TrimSpace(v.GetString(name)); value != "" {
		return value, nil
	}

	if file := v.GetString(name + "_FILE"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s_FILE: %w", name, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	return readSecret(strings.ToLower(name)), nil
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
