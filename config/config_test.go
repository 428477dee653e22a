package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(lookup(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, StoreMemory, cfg.Store.Kind)
	assert.Equal(t, "preserve", cfg.SlotPolicy)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{
		"PORT":                         "9090",
		"MODEL_PROVIDER":               "Anthropic",
		"ANTHROPIC_API_KEY":            "sk-ant",
		"REASONING_TIMEOUT":            "3s",
		"REASONING_MAX_RETRIES":        "4",
		"HISTORY_TURNS":                "10",
		"ENRICH_TIMEOUT":               "2500ms",
		"STORE":                        "postgres",
		"DATABASE_URL":                 "postgres://localhost/jobtrack",
		"SLOT_POLICY":                  "overwrite",
		"MATCH_STRATEGY":               "tokenset",
		"MATCH_THRESHOLD":              "0.7",
		"MAX_CONCURRENT_CONVERSATIONS": "32",
		"LOG_LEVEL":                    "debug",
		"LOG_FORMAT":                   "TEXT",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, ProviderAnthropic, cfg.Model.Provider)
	assert.Equal(t, 3*time.Second, cfg.Reasoning.Timeout)
	assert.Equal(t, 4, cfg.Reasoning.MaxRetries)
	assert.Equal(t, 10, cfg.Reasoning.HistoryTurns)
	assert.Equal(t, 2500*time.Millisecond, cfg.EnrichTimeout)
	assert.Equal(t, StorePostgres, cfg.Store.Kind)
	assert.Equal(t, "overwrite", cfg.SlotPolicy)
	assert.InDelta(t, 0.7, cfg.Matching.Threshold, 1e-9)
	assert.Equal(t, 32, cfg.MaxConcurrentConversations)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_MalformedValues(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{
		"REASONING_TIMEOUT":     "soon",
		"REASONING_MAX_RETRIES": "many",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REASONING_TIMEOUT")
	assert.Contains(t, err.Error(), "REASONING_MAX_RETRIES")
	assert.Equal(t, DefaultConfig().Reasoning, cfg.Reasoning)
}

func TestValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.Model.OpenAIKey = "sk-test"

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no provider", mutate: func(c *Config) { c.Model = ModelConfig{Provider: ProviderNone} }},
		{name: "openai without key", mutate: func(c *Config) { c.Model.OpenAIKey = "" }, wantErr: "OPENAI_API_KEY"},
		{name: "anthropic without key", mutate: func(c *Config) { c.Model.Provider = ProviderAnthropic }, wantErr: "ANTHROPIC_API_KEY"},
		{name: "unknown provider", mutate: func(c *Config) { c.Model.Provider = "llama" }, wantErr: "unknown model provider"},
		{name: "postgres without url", mutate: func(c *Config) { c.Store.Kind = StorePostgres }, wantErr: "DATABASE_URL"},
		{name: "supabase without key", mutate: func(c *Config) {
			c.Store.Kind = StoreSupabase
			c.Store.SupabaseURL = "https://x.supabase.co"
		}, wantErr: "SUPABASE_KEY"},
		{name: "unknown store", mutate: func(c *Config) { c.Store.Kind = "redis" }, wantErr: "unknown store"},
		{name: "slot policy", mutate: func(c *Config) { c.SlotPolicy = "merge" }, wantErr: "slot policy"},
		{name: "match strategy", mutate: func(c *Config) { c.Matching.Strategy = "soundex" }, wantErr: "match strategy"},
		{name: "log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "log level"},
		{name: "concurrency", mutate: func(c *Config) { c.MaxConcurrentConversations = 0 }, wantErr: "concurrent"},
		{name: "timeout", mutate: func(c *Config) { c.Reasoning.Timeout = 0 }, wantErr: "reasoning timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JOBTRACK_TEST_PORT_UNUSED=1\nHISTORY_TURNS=3\n"), 0o600))
	t.Setenv("HISTORY_TURNS", "")
	require.NoError(t, os.Unsetenv("HISTORY_TURNS"))
	t.Cleanup(func() {
		_ = os.Unsetenv("HISTORY_TURNS")
		_ = os.Unsetenv("JOBTRACK_TEST_PORT_UNUSED")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Reasoning.HistoryTurns)
}
