package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path; a trailing "/" matches by prefix
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity for the in-memory bucket (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
	// RedisKeyPrefix namespaces counters when a Redis store is attached
	RedisKeyPrefix string
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
		RedisKeyPrefix:  getEnvString("RATE_LIMIT_REDIS_PREFIX", "career-admin:rl:"),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	configs := []EndpointConfig{
		// Tier 1: completion calls (strictest limits)
		{Path: "/assistant/chat", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},
		{Path: "/drafts/", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},

		// Login attempts
		{Path: "/auth/login", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},

		// Context assembly reads the store several times per call
		{Path: "/assistant/context", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
	}

	// Tier 2: record writes
	for _, collection := range []string{"experiences", "skills", "projects", "education", "keywords"} {
		configs = append(configs,
			EndpointConfig{Path: "/" + collection, Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
			EndpointConfig{Path: "/" + collection + "/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
			EndpointConfig{Path: "/" + collection + "/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
		)
	}
	configs = append(configs, EndpointConfig{Path: "/profile", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10})

	// Tier 3: reads use the default limit; /health is unlimited (see MatchEndpoint)
	return configs
}

func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
