package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/practix/internal/topicgraph"
)

// clearProviderEnv hides any provider keys present on the machine running
// the tests.
func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearProviderEnv(t)
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, cfg.Content.Backoff)
	assert.Equal(t, 5, cfg.Sets.Layout.Total())
	assert.Equal(t, 10, cfg.Mastery.MinCorrect)
	assert.Equal(t, 10, cfg.Rewards.BaseXP)
	assert.Equal(t, 1.5, cfg.Rewards.Multipliers[topicgraph.Medium])
	assert.Equal(t, "UTC", cfg.Clock.DefaultTimezone)
	assert.False(t, cfg.Tracing.Enabled)
	assert.False(t, cfg.ObjectStore.Enabled())
	assert.Equal(t, 15*time.Minute, cfg.ObjectStore.URLExpiry)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("PRACTIX_STORE_DRIVER", "postgres")
	t.Setenv("PRACTIX_STORE_DSN", "postgres://practix@localhost/practix")
	t.Setenv("PRACTIX_CONTENT_USAGE_TIMEOUT", "9s")
	t.Setenv("PRACTIX_CLOCK_DEFAULT_TIMEZONE", "Asia/Jerusalem")
	t.Setenv("PRACTIX_LLM_PROVIDER", "openai")
	t.Setenv("PRACTIX_LLM_OPENAI_API_KEY", "sk-test")
	t.Setenv("PRACTIX_TRACING_ENABLED", "true")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 9*time.Second, cfg.Content.UsageTimeout)
	assert.Equal(t, "Asia/Jerusalem", cfg.Clock.DefaultTimezone)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoad_DiscoversProviderKey(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "g-key", cfg.LLM.Gemini.APIKey)
}

func TestLoad_File(t *testing.T) {
	clearProviderEnv(t)
	path := filepath.Join(t.TempDir(), "practix.yaml")
	yaml := `
server:
  addr: ":9090"
sets:
  layout:
    review: 1
    core: 3
    foundation: 1
    challenge: 1
rewards:
  completion_bonus: 75
redis:
  url: redis://localhost:6379/0
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 6, cfg.Sets.Layout.Total())
	assert.Equal(t, 75, cfg.Rewards.CompletionBonus)
	assert.Equal(t, 50, cfg.Rewards.StreakCap, "unset keys keep defaults")
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearProviderEnv(t)
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = "postgres"; c.Store.DSN = "" }},
		{"bad timezone", func(c *Config) { c.Clock.DefaultTimezone = "Mars/Base" }},
		{"empty layout", func(c *Config) { c.Sets.Layout.Review, c.Sets.Layout.Core, c.Sets.Layout.Challenge = 0, 0, 0 }},
		{"zero concurrency", func(c *Config) { c.Content.Concurrency = 0 }},
		{"bad accuracy", func(c *Config) { c.Mastery.MinAccuracy = 1.5 }},
		{"missing llm key", func(c *Config) { c.LLM.Provider = "anthropic"; c.LLM.Anthropic.APIKey = "" }},
		{"bad server mode", func(c *Config) { c.Server.Mode = "prod" }},
		{"bucketless objectstore", func(c *Config) { c.ObjectStore.Endpoint = "minio:9000" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(New(), "")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
