package main

import (
	"context"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/jobtrack"
	"github.com/hupe1980/jobtrack/config"
	"github.com/hupe1980/jobtrack/conversation"
	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/engine"
	"github.com/hupe1980/jobtrack/enrich"
	"github.com/hupe1980/jobtrack/logging"
	"github.com/hupe1980/jobtrack/matcher"
	"github.com/hupe1980/jobtrack/model"
	"github.com/hupe1980/jobtrack/model/anthropic"
	"github.com/hupe1980/jobtrack/model/openai"
	"github.com/hupe1980/jobtrack/reasoning"
	"github.com/hupe1980/jobtrack/server"
	"github.com/hupe1980/jobtrack/store/postgres"
	"github.com/hupe1980/jobtrack/store/supabase"
)

// app is everything a command needs, built from one validated Config.
type app struct {
	jobtrack *jobtrack.JobTrack
	checkers []server.Checker
	logger   logging.Logger
	close    func()
}

type stores struct {
	records  core.RecordStore
	sessions core.SessionStore
	history  core.HistoryStore
}

func build(ctx context.Context, cfg config.Config) (*app, error) {
	logger := cfg.Logger()

	policy, err := conversation.ParseSlotPolicy(cfg.SlotPolicy)
	if err != nil {
		return nil, err
	}
	strategy, err := matcher.ParseStrategy(cfg.Matching.Strategy, cfg.Matching.Threshold)
	if err != nil {
		return nil, err
	}
	m, err := newModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	a := &app{logger: logger, close: func() {}}
	st, err := a.openStores(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	a.jobtrack = jobtrack.New(func(o *jobtrack.Options) {
		if st != nil {
			o.Store = st.records
			o.Sessions = st.sessions
			o.History = st.history
		}
		o.Model = m
		o.Reasoning = func(ro *reasoning.Options) {
			ro.Timeout = cfg.Reasoning.Timeout
			ro.MaxRetries = uint64(cfg.Reasoning.MaxRetries)
			ro.HistoryTurns = cfg.Reasoning.HistoryTurns
		}
		o.Enricher = enrich.NewHTMLPreviewer(func(eo *enrich.Options) {
			eo.Timeout = cfg.EnrichTimeout
		})
		o.MatchStrategy = strategy
		o.SlotPolicy = policy
		o.MaxConcurrentConversations = cfg.MaxConcurrentConversations
		o.Engine = func(eo *engine.Options) {
			eo.HistoryTurns = cfg.Reasoning.HistoryTurns
			eo.EnrichTimeout = cfg.EnrichTimeout
		}
		o.Logger = logger
	})
	return a, nil
}

// openStores returns nil for the in-memory defaults.
func (a *app) openStores(ctx context.Context, cfg config.StoreConfig) (*stores, error) {
	switch cfg.Kind {
	case config.StorePostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		s, err := postgres.New(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		a.checkers = append(a.checkers, server.NewCheck("postgres", pool.Ping))
		a.close = pool.Close
		return &stores{records: s, sessions: s, history: s}, nil
	case config.StoreSupabase:
		s, err := supabase.New(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return nil, fmt.Errorf("init supabase store: %w", err)
		}
		return &stores{records: s, sessions: s, history: s}, nil
	default:
		return nil, nil
	}
}

func newModel(cfg config.ModelConfig) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderNone:
		return nil, nil
	case config.ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			o.APIKey = cfg.OpenAIKey
			o.Model = cfg.OpenAIModel
		}), nil
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = cfg.AnthropicKey
			o.Model = sdk.Model(cfg.AnthropicModel)
		}), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
