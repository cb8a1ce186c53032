package pipeline

import (
	"testing"
	"time"
)

func TestLoadConfigFrom_Defaults(t *testing.T) {
	cfg, err := LoadConfigFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadConfigFrom failed: %v", err)
	}

	if cfg.APIBase != "http://localhost:8000" {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if cfg.SourceLang != "en" || cfg.Language != "" {
		t.Errorf("languages = %q, %q", cfg.SourceLang, cfg.Language)
	}
	if cfg.CacheTTL != 24*time.Hour {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.MaxConcurrency != 8 || cfg.RequestTimeout != 10*time.Second {
		t.Errorf("MaxConcurrency = %d, RequestTimeout = %v", cfg.MaxConcurrency, cfg.RequestTimeout)
	}
	if cfg.Provider != "http" || cfg.Retries != 2 {
		t.Errorf("Provider = %q, Retries = %d", cfg.Provider, cfg.Retries)
	}
}

func TestLoadConfigFrom_Overrides(t *testing.T) {
	cfg, err := LoadConfigFrom(map[string]string{
		"AUTOLOCALE_API_BASE":       "https://api.example.com",
		"AUTOLOCALE_LANGUAGE":       "rw",
		"AUTOLOCALE_CACHE_TTL":      "1h",
		"AUTOLOCALE_REDIS_URL":      "redis://localhost:6379/0",
		"AUTOLOCALE_PROVIDER":       "openai",
		"AUTOLOCALE_OPENAI_API_KEY": "sk-test",
		"AUTOLOCALE_RATE_LIMIT_RPM": "120",
		"API_BASE":                  "ignored without prefix",
	})
	if err != nil {
		t.Fatalf("LoadConfigFrom failed: %v", err)
	}

	if cfg.APIBase != "https://api.example.com" || cfg.Language != "rw" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.CacheTTL != time.Hour || cfg.RateLimitRPM != 120 {
		t.Errorf("CacheTTL = %v, RateLimitRPM = %d", cfg.CacheTTL, cfg.RateLimitRPM)
	}
	if cfg.RedisURL == "" || cfg.OpenAIAPIKey != "sk-test" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"unknown provider", map[string]string{"AUTOLOCALE_PROVIDER": "carrier-pigeon"}},
		{"openai without key", map[string]string{"AUTOLOCALE_PROVIDER": "openai"}},
		{"bad duration", map[string]string{"AUTOLOCALE_CACHE_TTL": "forever"}},
		{"bad number", map[string]string{"AUTOLOCALE_MAX_CONCURRENCY": "many"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfigFrom(tt.vars); err == nil {
				t.Error("expected error")
			}
		})
	}
}
