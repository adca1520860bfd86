package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// DefaultBaseURL is the local development endpoint of the signals API
const DefaultBaseURL = "http://localhost:8000"

// apiPrefix is appended by the client to every request, so it is stripped from configured URLs
const apiPrefix = "/api/v1"

// List shape policies for list endpoints returning an unexpected payload
const (
	ListShapeLenient = "lenient"
	ListShapeStrict  = "strict"
)

// Config holds all application configuration
type Config struct {
	// Remote signals API
	API APIConfig

	// Query cache configuration
	Cache CacheConfig

	// Circuit breaker configuration
	Breaker BreakerConfig

	// HTTP server configuration
	HTTP HTTPConfig

	// Logging configuration
	Log LogConfig
}

// APIConfig holds the signals API configuration
type APIConfig struct {
	RawBaseURL      string // as provided by the environment
	TimeoutSeconds  int
	ListShapePolicy string // lenient or strict
}

// CacheConfig holds query cache configuration
type CacheConfig struct {
	TTLSeconds     int
	MaxRetries     int
	RetryBackoffMS int
}

// BreakerConfig holds circuit breaker configuration
type BreakerConfig struct {
	Enabled bool
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Addr               string
	CORSAllowedOrigins string
	TimeoutSeconds     int
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	rawURL := os.Getenv("SIGNALS_API_URL")
	if rawURL == "" {
		rawURL = os.Getenv("NEXT_PUBLIC_API_URL")
	}

	cfg := &Config{
		API: APIConfig{
			RawBaseURL:      rawURL,
			TimeoutSeconds:  getEnvInt("SIGNALS_API_TIMEOUT_SECONDS", 30),
			ListShapePolicy: strings.ToLower(getEnvString("LIST_SHAPE_POLICY", ListShapeLenient)),
		},
		Cache: CacheConfig{
			TTLSeconds:     getEnvInt("CACHE_TTL_SECONDS", 60),
			MaxRetries:     getEnvIntAllowZero("CACHE_MAX_RETRIES", 3),
			RetryBackoffMS: getEnvInt("CACHE_RETRY_BACKOFF_MS", 200),
		},
		Breaker: BreakerConfig{
			Enabled: getEnvBool("BREAKER_ENABLED", true),
		},
		HTTP: HTTPConfig{
			Addr:               getEnvString("HTTP_ADDR", ":3000"),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
			TimeoutSeconds:     getEnvInt("HTTP_TIMEOUT_SECONDS", 30),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnvString("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnvString("LOG_FORMAT", "text")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration.
// A malformed base URL is not rejected here: every API call reports it as a configuration error.
func (c *Config) Validate() error {
	switch c.API.ListShapePolicy {
	case ListShapeLenient, ListShapeStrict:
	default:
		return fmt.Errorf("LIST_SHAPE_POLICY must be %q or %q, got %q", ListShapeLenient, ListShapeStrict, c.API.ListShapePolicy)
	}

	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("SIGNALS_API_TIMEOUT_SECONDS must be positive, got %d", c.API.TimeoutSeconds)
	}
	if c.Cache.MaxRetries < 0 {
		return fmt.Errorf("CACHE_MAX_RETRIES must not be negative, got %d", c.Cache.MaxRetries)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	return nil
}

// BaseURL returns the normalized base URL of the signals API
func (c *Config) BaseURL() (string, error) {
	return NormalizeBaseURL(c.API.RawBaseURL)
}

// IsProductionLogging returns true when logs should be emitted as JSON
func (c *Config) IsProductionLogging() bool {
	return c.Log.Format == "json"
}

// NormalizeBaseURL rewrites a configured endpoint into a well-formed base URL without the
// /api/v1 suffix. An empty value yields DefaultBaseURL.
func NormalizeBaseURL(raw string) (string, error) {
	base := strings.TrimSpace(raw)
	if base == "" {
		return DefaultBaseURL, nil
	}

	if !strings.Contains(base, "://") {
		base = "https://" + base
	}

	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid signals API URL %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("invalid signals API URL %q: unsupported scheme %q", raw, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("invalid signals API URL %q: missing host", raw)
	}

	path := strings.TrimRight(parsed.Path, "/")
	path = strings.TrimSuffix(path, apiPrefix)
	parsed.Path = strings.TrimRight(path, "/")
	parsed.RawPath = ""
	parsed.RawQuery = ""
	parsed.Fragment = ""

	return parsed.String(), nil
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvIntAllowZero(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		API: APIConfig{
			RawBaseURL:      DefaultBaseURL,
			TimeoutSeconds:  5,
			ListShapePolicy: ListShapeLenient,
		},
		Cache: CacheConfig{
			TTLSeconds:     60,
			MaxRetries:     0,
			RetryBackoffMS: 1,
		},
		Breaker: BreakerConfig{
			Enabled: false,
		},
		HTTP: HTTPConfig{
			Addr:               ":3000",
			CORSAllowedOrigins: "*",
			TimeoutSeconds:     30,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
