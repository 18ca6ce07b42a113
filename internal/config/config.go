// Package config loads practix configuration from an optional YAML file,
// PRACTIX_ environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/practix/internal/clock"
	"github.com/abhisek/practix/internal/content"
	"github.com/abhisek/practix/internal/dailyset"
	"github.com/abhisek/practix/internal/llm"
	"github.com/abhisek/practix/internal/logger"
	"github.com/abhisek/practix/internal/objectstore"
	"github.com/abhisek/practix/internal/progress"
	"github.com/abhisek/practix/internal/rewards"
	"github.com/abhisek/practix/internal/store"
	"github.com/abhisek/practix/internal/tracing"
	"github.com/abhisek/practix/internal/vision"
)

// EnvPrefix prefixes every environment variable. Nested keys join with
// underscores: llm.anthropic.api_key is PRACTIX_LLM_ANTHROPIC_API_KEY.
const EnvPrefix = "PRACTIX"

type Config struct {
	Server      ServerConfig       `mapstructure:"server"`
	Store       store.Options      `mapstructure:"store"`
	Redis       RedisConfig        `mapstructure:"redis"`
	LLM         llm.Config         `mapstructure:"llm"`
	Content     content.Config     `mapstructure:"content"`
	Vision      vision.Config      `mapstructure:"vision"`
	Mastery     progress.Policy    `mapstructure:"mastery"`
	Sets        dailyset.Config    `mapstructure:"sets"`
	Rewards     rewards.Config     `mapstructure:"rewards"`
	Clock       ClockConfig        `mapstructure:"clock"`
	Catalog     CatalogConfig      `mapstructure:"catalog"`
	ObjectStore objectstore.Config `mapstructure:"objectstore"`
	Tracing     tracing.Config     `mapstructure:"tracing"`
	Log         logger.Options     `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RedisConfig enables the cross-instance generation lock when URL is set.
type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
	LockWait time.Duration `mapstructure:"lock_wait"`
}

// ClockConfig holds the defaults for users without preferences.
type ClockConfig struct {
	DefaultTimezone string `mapstructure:"default_timezone"`
	DefaultLocale   string `mapstructure:"default_locale"`
}

// CatalogConfig points at a topic catalog file. Empty uses the built-in
// catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// New returns a viper instance with every default registered and
// environment lookup enabled.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("store.driver", "sqlite")
	// Empty selects the per-user data directory for sqlite.
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.max_open_conns", 10)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.lock_ttl", time.Minute)
	v.SetDefault("redis.lock_wait", 30*time.Second)

	lc := llm.DefaultConfig()
	// Empty means discover from the providers' own env vars, then mock.
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.timeout", lc.Timeout)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", lc.Anthropic.Model)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", lc.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", lc.OpenAI.BaseURL)
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", lc.Gemini.Model)
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", lc.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", lc.OpenRouter.BaseURL)
	v.SetDefault("llm.retry.max_attempts", lc.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", lc.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", lc.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", lc.Retry.Multiplier)
	v.SetDefault("llm.rate_limit.requests_per_second", lc.RateLimit.RequestsPerSecond)
	v.SetDefault("llm.rate_limit.burst", lc.RateLimit.Burst)

	cc := content.DefaultConfig()
	v.SetDefault("content.backoff", cc.Backoff)
	v.SetDefault("content.concurrency", cc.Concurrency)
	v.SetDefault("content.usage_timeout", cc.UsageTimeout)

	vc := vision.DefaultConfig()
	v.SetDefault("vision.max_tokens", vc.MaxTokens)
	v.SetDefault("vision.temperature", vc.Temperature)
	v.SetDefault("vision.min_confidence", vc.MinConfidence)

	mp := progress.DefaultPolicy()
	v.SetDefault("mastery.min_correct", mp.MinCorrect)
	v.SetDefault("mastery.min_accuracy", mp.MinAccuracy)
	v.SetDefault("mastery.min_days", mp.MinDays)
	v.SetDefault("mastery.accuracy_weight", mp.AccuracyWeight)
	v.SetDefault("mastery.volume_weight", mp.VolumeWeight)

	sc := dailyset.DefaultConfig()
	v.SetDefault("sets.layout.review", sc.Layout.Review)
	v.SetDefault("sets.layout.core", sc.Layout.Core)
	v.SetDefault("sets.layout.foundation", sc.Layout.Foundation)
	v.SetDefault("sets.layout.challenge", sc.Layout.Challenge)
	v.SetDefault("sets.practice_size", sc.PracticeSize)

	rc := rewards.DefaultConfig()
	v.SetDefault("rewards.base_xp", rc.BaseXP)
	multipliers := make(map[string]any, len(rc.Multipliers))
	for d, m := range rc.Multipliers {
		multipliers[string(d)] = m
	}
	v.SetDefault("rewards.multipliers", multipliers)
	v.SetDefault("rewards.completion_bonus", rc.CompletionBonus)
	v.SetDefault("rewards.streak_per_day", rc.StreakPerDay)
	v.SetDefault("rewards.streak_cap", rc.StreakCap)
	v.SetDefault("rewards.perfect_day_bonus", rc.PerfectDayBonus)
	v.SetDefault("rewards.level_thresholds", rc.LevelThresholds)

	v.SetDefault("clock.default_timezone", "UTC")
	v.SetDefault("clock.default_locale", "en")
	v.SetDefault("catalog.path", "")

	v.SetDefault("objectstore.endpoint", "")
	v.SetDefault("objectstore.access_key", "")
	v.SetDefault("objectstore.secret_key", "")
	v.SetDefault("objectstore.bucket", "")
	v.SetDefault("objectstore.region", "")
	v.SetDefault("objectstore.use_ssl", true)
	v.SetDefault("objectstore.url_expiry", 15*time.Minute)

	tc := tracing.DefaultConfig()
	v.SetDefault("tracing.enabled", tc.Enabled)
	v.SetDefault("tracing.service_name", tc.ServiceName)
	v.SetDefault("tracing.sample_ratio", tc.SampleRatio)
	v.SetDefault("tracing.output", tc.Output)

	v.SetDefault("log.mode", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
}

// Load reads file (when non-empty) into v and decodes the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.LLM.Provider == "" {
		found, ok := llm.DiscoverConfig(cfg.LLM)
		if !ok {
			found.Provider = "mock"
		}
		cfg.LLM = found
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section and reports all problems together.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode))
	}
	if c.Store.Driver == "postgres" && c.Store.DSN == "" {
		errs = append(errs, errors.New("store.dsn is required for postgres"))
	}
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Rewards.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := clock.ValidateTimezone(c.Clock.DefaultTimezone); err != nil {
		errs = append(errs, fmt.Errorf("clock.default_timezone: %w", err))
	}
	if err := c.Sets.Layout.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sets.layout: %w", err))
	}
	if c.Content.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("content.concurrency must be >= 1, got %d", c.Content.Concurrency))
	}
	if err := c.Mastery.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.ObjectStore.Endpoint != "" && c.ObjectStore.Bucket == "" {
		errs = append(errs, errors.New("objectstore.bucket is required when objectstore.endpoint is set"))
	}
	return errors.Join(errs...)
}
