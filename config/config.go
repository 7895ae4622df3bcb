// Package config loads lexidict settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the root lexidict configuration.
type Config struct {
	Store    StoreConfig    `toml:"store"`
	Search   SearchConfig   `toml:"search"`
	View     ViewConfig     `toml:"view"`
	Annotate AnnotateConfig `toml:"annotate"`
	Cooc     CoocConfig     `toml:"cooc"`
	Features FeaturesConfig `toml:"features"`
	Log      LogConfig      `toml:"log"`
}

// StoreConfig holds dictionary store settings.
type StoreConfig struct {
	Path string `toml:"path" env:"LEXIDICT_STORE_PATH" env-default:"lexidict.db"`
	// OpenAttempts bounds read-only open retries while another process holds the store.
	OpenAttempts int `toml:"open_attempts" env:"LEXIDICT_STORE_OPEN_ATTEMPTS" env-default:"5"`
	// OpenRetryDelayMS is the base backoff between open attempts, doubled each retry.
	OpenRetryDelayMS int `toml:"open_retry_delay_ms" env:"LEXIDICT_STORE_OPEN_RETRY_DELAY_MS" env-default:"100"`
	// CacheSize is the number of records kept per index in memory. A
	// negative size disables caching; zero reads as the default.
	CacheSize int `toml:"cache_size" env:"LEXIDICT_STORE_CACHE_SIZE" env-default:"10000"`
}

// OpenRetryDelay returns the base open backoff as a duration.
func (s StoreConfig) OpenRetryDelay() time.Duration {
	return time.Duration(s.OpenRetryDelayMS) * time.Millisecond
}

// SearchConfig holds matcher settings.
type SearchConfig struct {
	Limit       int  `toml:"limit"        env:"LEXIDICT_SEARCH_LIMIT"        env-default:"100"`
	TierSize    int  `toml:"tier_size"    env:"LEXIDICT_SEARCH_TIER_SIZE"    env-default:"500"`
	PrefixIndex bool `toml:"prefix_index" env:"LEXIDICT_SEARCH_PREFIX_INDEX" env-default:"false"`
}

// ViewConfig holds the entry-count thresholds of the auto view.
type ViewConfig struct {
	FullMax   int `toml:"full_max"   env:"LEXIDICT_VIEW_FULL_MAX"   env-default:"5"`
	SimpleMax int `toml:"simple_max" env:"LEXIDICT_VIEW_SIMPLE_MAX" env-default:"30"`
}

// AnnotateConfig holds annotator settings.
type AnnotateConfig struct {
	MaxPhrase     int  `toml:"max_phrase"      env:"LEXIDICT_ANNOTATE_MAX_PHRASE"      env-default:"4"`
	RubyCount     int  `toml:"ruby_count"      env:"LEXIDICT_ANNOTATE_RUBY_COUNT"      env-default:"3"`
	SkipStopWords bool `toml:"skip_stop_words" env:"LEXIDICT_ANNOTATE_SKIP_STOP_WORDS" env-default:"false"`
	// PoolSize is the page worker count. Zero uses one worker per CPU.
	PoolSize int `toml:"pool_size" env:"LEXIDICT_ANNOTATE_POOL_SIZE" env-default:"0"`
}

// CoocConfig holds cooccurrence predictor settings.
type CoocConfig struct {
	Language string `toml:"language" env:"LEXIDICT_COOC_LANGUAGE" env-default:"en"`
}

// FeaturesConfig holds union feature extraction settings.
type FeaturesConfig struct {
	PageSize    int `toml:"page_size"    env:"LEXIDICT_FEATURES_PAGE_SIZE"    env-default:"100"`
	MaxFeatures int `toml:"max_features" env:"LEXIDICT_FEATURES_MAX_FEATURES" env-default:"100"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"  env:"LEXIDICT_LOG_LEVEL"  env-default:"info"`
	Format string `toml:"format" env:"LEXIDICT_LOG_FORMAT" env-default:"text"`
}

// Default returns a Config holding the built-in defaults.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Path:             "lexidict.db",
			OpenAttempts:     5,
			OpenRetryDelayMS: 100,
			CacheSize:        10000,
		},
		Search:   SearchConfig{Limit: 100, TierSize: 500},
		View:     ViewConfig{FullMax: 5, SimpleMax: 30},
		Annotate: AnnotateConfig{MaxPhrase: 4, RubyCount: 3},
		Cooc:     CoocConfig{Language: "en"},
		Features: FeaturesConfig{PageSize: 100, MaxFeatures: 100},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads configuration from a TOML file and environment variables.
// Priority: ENV > TOML > defaults (via env-default tags).
// With an empty path only the environment and defaults are used. A path
// that does not exist is an error.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg to path as TOML, creating parent directories.
func Save(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("config: encode %s: %w", path, err)
	}
	return file.Close()
}

// Validate performs range checks on the loaded configuration.
func (c *Config) Validate() error {
	switch {
	case c.Store.Path == "":
		return fmt.Errorf("%w: store.path is required", ErrInvalidConfig)
	case c.Store.OpenAttempts < 1:
		return fmt.Errorf("%w: store.open_attempts must be >= 1 (got %d)", ErrInvalidConfig, c.Store.OpenAttempts)
	case c.Store.OpenRetryDelayMS < 0:
		return fmt.Errorf("%w: store.open_retry_delay_ms must be >= 0 (got %d)", ErrInvalidConfig, c.Store.OpenRetryDelayMS)
	case c.Search.Limit < 1:
		return fmt.Errorf("%w: search.limit must be >= 1 (got %d)", ErrInvalidConfig, c.Search.Limit)
	case c.Search.TierSize < 1:
		return fmt.Errorf("%w: search.tier_size must be >= 1 (got %d)", ErrInvalidConfig, c.Search.TierSize)
	case c.View.FullMax < 0 || c.View.SimpleMax < c.View.FullMax:
		return fmt.Errorf("%w: view thresholds need 0 <= full_max <= simple_max (got %d, %d)", ErrInvalidConfig, c.View.FullMax, c.View.SimpleMax)
	case c.Annotate.MaxPhrase < 1:
		return fmt.Errorf("%w: annotate.max_phrase must be >= 1 (got %d)", ErrInvalidConfig, c.Annotate.MaxPhrase)
	case c.Annotate.RubyCount < 1:
		return fmt.Errorf("%w: annotate.ruby_count must be >= 1 (got %d)", ErrInvalidConfig, c.Annotate.RubyCount)
	case c.Annotate.PoolSize < 0:
		return fmt.Errorf("%w: annotate.pool_size must be >= 0 (got %d)", ErrInvalidConfig, c.Annotate.PoolSize)
	case c.Cooc.Language != "en" && c.Cooc.Language != "ja":
		return fmt.Errorf("%w: cooc.language must be en or ja (got %q)", ErrInvalidConfig, c.Cooc.Language)
	case c.Features.PageSize < 1:
		return fmt.Errorf("%w: features.page_size must be >= 1 (got %d)", ErrInvalidConfig, c.Features.PageSize)
	case c.Features.MaxFeatures < 1:
		return fmt.Errorf("%w: features.max_features must be >= 1 (got %d)", ErrInvalidConfig, c.Features.MaxFeatures)
	case c.Log.Format != "text" && c.Log.Format != "json":
		return fmt.Errorf("%w: log.format must be text or json (got %q)", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}
