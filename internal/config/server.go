package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ServerConfig is the environment-driven configuration for the HTTP server
type ServerConfig struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	LogLevel    string

	DBMaxConns int32
	DBMinConns int32

	LLMProvider      string
	LLMModel         string
	GeminiAPIKey     string
	AnthropicAPIKey  string
	AIRequestTimeout time.Duration

	FetchUseBrowser bool
	AllowedOrigins  string
}

// LoadServerConfig reads ServerConfig from the environment.
// DATABASE_URL is required; everything else has a default.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DBMaxConns:       int32(getEnvInt("DB_MAX_CONNS", 10)),
		DBMinConns:       int32(getEnvInt("DB_MIN_CONNS", 1)),
		LLMProvider:      getEnv("LLM_PROVIDER", "gemini"),
		LLMModel:         getEnv("LLM_MODEL", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AIRequestTimeout: getEnvDuration("AI_REQUEST_TIMEOUT", 90*time.Second),
		FetchUseBrowser:  getEnvBool("FETCH_USE_BROWSER", false),
		AllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}
	if cfg.LLMProvider != "gemini" && cfg.LLMProvider != "anthropic" {
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q (want gemini or anthropic)", cfg.LLMProvider)
	}
	if cfg.AIRequestTimeout <= 0 {
		return nil, fmt.Errorf("AI_REQUEST_TIMEOUT must be positive")
	}

	return cfg, nil
}

// LLMAPIKey returns the API key for the configured provider
func (c *ServerConfig) LLMAPIKey() string {
	if c.LLMProvider == "anthropic" {
		return c.AnthropicAPIKey
	}
	return c.GeminiAPIKey
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or a plain number of seconds
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
