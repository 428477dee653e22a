// Package config reads the service configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hupe1980/jobtrack/conversation"
	"github.com/hupe1980/jobtrack/logging"
	"github.com/hupe1980/jobtrack/matcher"
)

// Model providers.
const (
	ProviderNone      = "none"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSupabase = "supabase"
)

// Config holds the application configuration.
type Config struct {
	Port      string
	Model     ModelConfig
	Reasoning ReasoningConfig
	Store     StoreConfig
	Matching  MatchingConfig

	EnrichTimeout              time.Duration
	SlotPolicy                 string
	MaxConcurrentConversations int

	LogLevel  string
	LogFormat string
}

// ModelConfig selects and authenticates the reasoning provider.
type ModelConfig struct {
	Provider       string
	OpenAIKey      string
	OpenAIModel    string
	AnthropicKey   string
	AnthropicModel string
}

// ReasoningConfig bounds calls to the reasoning provider.
type ReasoningConfig struct {
	Timeout      time.Duration
	MaxRetries   int
	HistoryTurns int
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Kind        string
	DatabaseURL string
	SupabaseURL string
	SupabaseKey string
}

// MatchingConfig tunes loose company matching.
type MatchingConfig struct {
	Strategy  string
	Threshold float64
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{
		Port: "8080",
		Model: ModelConfig{
			Provider:       ProviderOpenAI,
			OpenAIModel:    "gpt-4o-mini",
			AnthropicModel: "claude-3-5-sonnet-20241022",
		},
		Reasoning: ReasoningConfig{
			Timeout:      8 * time.Second,
			MaxRetries:   2,
			HistoryTurns: 6,
		},
		Store:                      StoreConfig{Kind: StoreMemory},
		Matching:                   MatchingConfig{Strategy: "substring", Threshold: 0.5},
		EnrichTimeout:              5 * time.Second,
		SlotPolicy:                 conversation.PreserveKnown.String(),
		MaxConcurrentConversations: 10,
		LogLevel:                   "info",
		LogFormat:                  "json",
	}
}

// Load reads environment variables, optionally from .env files if present.
func Load(files ...string) (Config, error) {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load(files...)
	return FromEnv(os.Getenv)
}

// FromEnv builds a configuration from getenv over the defaults. Malformed
// numbers and durations are reported together.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()
	e := env{getenv: getenv}

	cfg.Port = e.str("PORT", cfg.Port)

	cfg.Model.Provider = strings.ToLower(e.str("MODEL_PROVIDER", cfg.Model.Provider))
	cfg.Model.OpenAIKey = e.str("OPENAI_API_KEY", "")
	cfg.Model.OpenAIModel = e.str("OPENAI_MODEL", cfg.Model.OpenAIModel)
	cfg.Model.AnthropicKey = e.str("ANTHROPIC_API_KEY", "")
	cfg.Model.AnthropicModel = e.str("ANTHROPIC_MODEL", cfg.Model.AnthropicModel)

	cfg.Reasoning.Timeout = e.duration("REASONING_TIMEOUT", cfg.Reasoning.Timeout)
	cfg.Reasoning.MaxRetries = e.int("REASONING_MAX_RETRIES", cfg.Reasoning.MaxRetries)
	cfg.Reasoning.HistoryTurns = e.int("HISTORY_TURNS", cfg.Reasoning.HistoryTurns)
	cfg.EnrichTimeout = e.duration("ENRICH_TIMEOUT", cfg.EnrichTimeout)

	cfg.Store.Kind = strings.ToLower(e.str("STORE", cfg.Store.Kind))
	cfg.Store.DatabaseURL = e.str("DATABASE_URL", "")
	cfg.Store.SupabaseURL = e.str("SUPABASE_URL", "")
	cfg.Store.SupabaseKey = e.str("SUPABASE_KEY", "")

	cfg.SlotPolicy = e.str("SLOT_POLICY", cfg.SlotPolicy)
	cfg.Matching.Strategy = e.str("MATCH_STRATEGY", cfg.Matching.Strategy)
	cfg.Matching.Threshold = e.float("MATCH_THRESHOLD", cfg.Matching.Threshold)
	cfg.MaxConcurrentConversations = e.int("MAX_CONCURRENT_CONVERSATIONS", cfg.MaxConcurrentConversations)

	cfg.LogLevel = e.str("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(e.str("LOG_FORMAT", cfg.LogFormat))

	return cfg, errors.Join(e.errs...)
}

// Validate validates the configuration
func (c Config) Validate() error {
	var errs []error

	switch c.Model.Provider {
	case ProviderNone:
	case ProviderOpenAI:
		if c.Model.OpenAIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	case ProviderAnthropic:
		if c.Model.AnthropicKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required for the anthropic provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown model provider %q", c.Model.Provider))
	}

	switch c.Store.Kind {
	case StoreMemory:
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case StoreSupabase:
		if c.Store.SupabaseURL == "" || c.Store.SupabaseKey == "" {
			errs = append(errs, errors.New("SUPABASE_URL and SUPABASE_KEY are required for the supabase store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store %q", c.Store.Kind))
	}

	if c.Reasoning.Timeout <= 0 {
		errs = append(errs, errors.New("reasoning timeout must be positive"))
	}
	if c.Reasoning.MaxRetries < 0 {
		errs = append(errs, errors.New("reasoning retries cannot be negative"))
	}
	if c.Reasoning.HistoryTurns < 0 {
		errs = append(errs, errors.New("history turns cannot be negative"))
	}
	if c.EnrichTimeout <= 0 {
		errs = append(errs, errors.New("enrich timeout must be positive"))
	}
	if c.MaxConcurrentConversations <= 0 {
		errs = append(errs, errors.New("max concurrent conversations must be positive"))
	}
	if _, err := conversation.ParseSlotPolicy(c.SlotPolicy); err != nil {
		errs = append(errs, err)
	}
	if _, err := matcher.ParseStrategy(c.Matching.Strategy, c.Matching.Threshold); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

// Logger builds the logger described by the configuration.
func (c Config) Logger() logging.Logger {
	cfg := logging.DefaultConfig()
	if lvl, err := logging.ParseLevel(c.LogLevel); err == nil {
		cfg.Level = lvl
	}
	cfg.Format = c.LogFormat
	return logging.New(cfg)
}

type env struct {
	getenv func(string) string
	errs   []error
}

func (e *env) str(key, def string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *env) int(key string, def int) int {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (e *env) float(key string, def float64) float64 {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
