package pipeline

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every configuration variable.
const EnvPrefix = "AUTOLOCALE_"

// Config holds the pipeline configuration. Every field can be set from the
// environment, e.g. AUTOLOCALE_API_BASE.
type Config struct {
	APIBase        string        `env:"API_BASE"         envDefault:"http://localhost:8000"`
	APIPrefix      string        `env:"API_PREFIX"       envDefault:"/api/"`
	SourceLang     string        `env:"SOURCE_LANG"      envDefault:"en"`
	Language       string        `env:"LANGUAGE"`
	CacheTTL       time.Duration `env:"CACHE_TTL"        envDefault:"24h"`
	RedisURL       string        `env:"REDIS_URL"`
	MaxConcurrency int           `env:"MAX_CONCURRENCY"  envDefault:"8"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"  envDefault:"10s"`
	Provider       string        `env:"PROVIDER"         envDefault:"http"`
	OpenAIAPIKey   string        `env:"OPENAI_API_KEY"`
	OpenAIModel    string        `env:"OPENAI_MODEL"`
	OpenAIBaseURL  string        `env:"OPENAI_BASE_URL"`
	DictionaryPath string        `env:"DICTIONARY_PATH"`
	RateLimitRPM   int           `env:"RATE_LIMIT_RPM"`
	Retries        int           `env:"RETRIES"          envDefault:"2"`
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() (Config, error) {
	return parseConfig(env.Options{Prefix: EnvPrefix})
}

// LoadConfigFrom reads the configuration from vars instead of the process
// environment.
func LoadConfigFrom(vars map[string]string) (Config, error) {
	return parseConfig(env.Options{Prefix: EnvPrefix, Environment: vars})
}

func parseConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail later.
func (c Config) Validate() error {
	switch c.Provider {
	case "http", "mock":
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("provider openai requires %sOPENAI_API_KEY", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown provider %q (want http, openai or mock)", c.Provider)
	}
	if c.SourceLang == "" {
		return fmt.Errorf("%sSOURCE_LANG must not be empty", EnvPrefix)
	}
	if c.CacheTTL < 0 || c.RequestTimeout < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}
