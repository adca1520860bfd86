package config

import (
	"os"
	"testing"
)

// saveEnv saves current environment variables for restoration
func saveEnv(t *testing.T, keys []string) map[string]string {
	t.Helper()
	saved := make(map[string]string)
	for _, key := range keys {
		saved[key] = os.Getenv(key)
	}
	return saved
}

// restoreEnv restores previously saved environment variables
func restoreEnv(t *testing.T, saved map[string]string) {
	t.Helper()
	for key, val := range saved {
		if val == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, val)
		}
	}
}

// clearEnv clears environment variables
func clearEnv(t *testing.T, keys []string) {
	t.Helper()
	for _, key := range keys {
		os.Unsetenv(key)
	}
}

var allEnvKeys = []string{
	"SIGNALS_API_URL",
	"NEXT_PUBLIC_API_URL",
	"SIGNALS_API_TIMEOUT_SECONDS",
	"LIST_SHAPE_POLICY",
	"CACHE_TTL_SECONDS",
	"CACHE_MAX_RETRIES",
	"CACHE_RETRY_BACKOFF_MS",
	"BREAKER_ENABLED",
	"HTTP_ADDR",
	"CORS_ALLOWED_ORIGINS",
	"HTTP_TIMEOUT_SECONDS",
	"LOG_LEVEL",
	"LOG_FORMAT",
}

func TestLoad_Defaults(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults failed: %v", err)
	}

	if cfg.API.RawBaseURL != "" {
		t.Errorf("expected empty RawBaseURL, got %q", cfg.API.RawBaseURL)
	}
	base, err := cfg.BaseURL()
	if err != nil {
		t.Fatalf("BaseURL() failed: %v", err)
	}
	if base != DefaultBaseURL {
		t.Errorf("expected BaseURL=%s, got %s", DefaultBaseURL, base)
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Errorf("expected TimeoutSeconds=30, got %d", cfg.API.TimeoutSeconds)
	}
	if cfg.API.ListShapePolicy != ListShapeLenient {
		t.Errorf("expected ListShapePolicy=lenient, got %s", cfg.API.ListShapePolicy)
	}
	if cfg.Cache.TTLSeconds != 60 {
		t.Errorf("expected TTLSeconds=60, got %d", cfg.Cache.TTLSeconds)
	}
	if cfg.Cache.MaxRetries != 3 {
		t.Errorf("expected MaxRetries=3, got %d", cfg.Cache.MaxRetries)
	}
	if !cfg.Breaker.Enabled {
		t.Error("expected breaker to be enabled by default")
	}
	if cfg.HTTP.Addr != ":3000" {
		t.Errorf("expected Addr=:3000, got %s", cfg.HTTP.Addr)
	}
	if cfg.IsProductionLogging() {
		t.Error("expected text logging by default")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	os.Setenv("SIGNALS_API_URL", "api.example.com/api/v1")
	os.Setenv("LIST_SHAPE_POLICY", "STRICT")
	os.Setenv("CACHE_MAX_RETRIES", "0")
	os.Setenv("BREAKER_ENABLED", "false")
	os.Setenv("LOG_FORMAT", "json")
	os.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	base, err := cfg.BaseURL()
	if err != nil {
		t.Fatalf("BaseURL() failed: %v", err)
	}
	if base != "https://api.example.com" {
		t.Errorf("expected https://api.example.com, got %s", base)
	}
	if cfg.API.ListShapePolicy != ListShapeStrict {
		t.Errorf("expected strict policy, got %s", cfg.API.ListShapePolicy)
	}
	if cfg.Cache.MaxRetries != 0 {
		t.Errorf("expected MaxRetries=0, got %d", cfg.Cache.MaxRetries)
	}
	if cfg.Breaker.Enabled {
		t.Error("expected breaker to be disabled")
	}
	if !cfg.IsProductionLogging() {
		t.Error("expected json logging")
	}
}

func TestLoad_FallbackURLVariable(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	os.Setenv("NEXT_PUBLIC_API_URL", "http://signals.internal:8000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.API.RawBaseURL != "http://signals.internal:8000" {
		t.Errorf("expected fallback URL, got %q", cfg.API.RawBaseURL)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown list policy", "LIST_SHAPE_POLICY", "silent"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved := saveEnv(t, allEnvKeys)
			defer restoreEnv(t, saved)
			clearEnv(t, allEnvKeys)

			os.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestLoad_MalformedURLDoesNotFailLoad(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	os.Setenv("SIGNALS_API_URL", "ftp://files.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not fail on a malformed URL: %v", err)
	}
	if _, err := cfg.BaseURL(); err == nil {
		t.Error("expected BaseURL() to report the malformed URL")
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"empty uses default", "", DefaultBaseURL, false},
		{"whitespace uses default", "   ", DefaultBaseURL, false},
		{"missing scheme gets https", "api.example.com", "https://api.example.com", false},
		{"host with port", "localhost:8000", "https://localhost:8000", false},
		{"keeps http", "http://localhost:8000", "http://localhost:8000", false},
		{"trims whitespace", "  https://api.example.com  ", "https://api.example.com", false},
		{"strips api suffix", "https://api.example.com/api/v1", "https://api.example.com", false},
		{"strips api suffix with slash", "https://api.example.com/api/v1/", "https://api.example.com", false},
		{"strips trailing slash", "https://api.example.com/", "https://api.example.com", false},
		{"keeps path prefix", "https://example.com/signals/api/v1", "https://example.com/signals", false},
		{"suffix and missing scheme", "api.example.com/api/v1", "https://api.example.com", false},
		{"unsupported scheme", "ftp://api.example.com", "", true},
		{"empty scheme", "://api.example.com", "", true},
		{"missing host", "https://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeBaseURL(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NormalizeBaseURL(%q) expected error, got %q", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeBaseURL(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeBaseURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNewTestConfig(t *testing.T) {
	cfg := NewTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("NewTestConfig should be valid: %v", err)
	}
	if cfg.Breaker.Enabled {
		t.Error("test config should disable the breaker")
	}
}
