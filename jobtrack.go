// Package jobtrack provides a high-level façade over the resolution engine
// and the conversation runner. Most applications interact with this package
// by:
//  1. Creating a JobTrack via New() (optionally overriding the in-memory stores)
//  2. Passing a model to enable reasoning and model phrasing
//  3. Sending messages with Run and rendering Reply.Text
//
// Without a model every rule-matched message still resolves; the rest is
// answered with a clarification.
package jobtrack

import (
	"context"

	"github.com/hupe1980/jobtrack/conversation"
	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/engine"
	"github.com/hupe1980/jobtrack/logging"
	"github.com/hupe1980/jobtrack/matcher"
	"github.com/hupe1980/jobtrack/model"
	"github.com/hupe1980/jobtrack/phrase"
	"github.com/hupe1980/jobtrack/reasoning"
	"github.com/hupe1980/jobtrack/runner"
	"github.com/hupe1980/jobtrack/session"
	"github.com/hupe1980/jobtrack/store/memory"
)

// Options configures the JobTrack instance.
type Options struct {
	// Stores (defaults to in-memory implementations if not provided)
	Store    core.RecordStore
	Sessions core.SessionStore
	History  core.HistoryStore

	// Model enables reasoning for what the rules do not match and model
	// phrasing with template fallback. Nil keeps both deterministic.
	Model model.Model

	// Reasoning tunes the reasoning adapter built for Model.
	Reasoning func(o *reasoning.Options)

	// Enricher previews job links. Nil disables enrichment.
	Enricher core.Enricher

	MatchStrategy matcher.Strategy
	SlotPolicy    conversation.SlotPolicy

	// MaxConcurrentConversations bounds conversations handled at once.
	MaxConcurrentConversations int

	// Engine applies further engine options last.
	Engine func(o *engine.Options)

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// JobTrack aggregates the engine and the runner serializing its turns.
type JobTrack struct {
	engine *engine.Engine
	runner *runner.Runner
}

// New creates a new JobTrack instance with optional overrides.
func New(optFns ...func(o *Options)) *JobTrack {
	opts := Options{
		MaxConcurrentConversations: 10,
		Logger:                     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Store == nil {
		opts.Store = memory.New()
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewInMemoryStore()
	}
	if opts.History == nil {
		opts.History = session.NewInMemoryHistory(0)
	}

	var (
		reasoner core.Reasoner
		phraser  core.Phraser = phrase.Template{}
	)
	if opts.Model != nil {
		reasoner = reasoning.New(opts.Model, func(o *reasoning.Options) {
			o.Logger = opts.Logger
			if opts.Reasoning != nil {
				opts.Reasoning(o)
			}
		})
		phraser = phrase.Fallback{Primary: phrase.NewModelPhraser(opts.Model)}
	}

	eng := engine.New(func(o *engine.Options) {
		o.Store = opts.Store
		o.Sessions = opts.Sessions
		o.History = opts.History
		o.Reasoner = reasoner
		o.Enricher = opts.Enricher
		o.MatchStrategy = opts.MatchStrategy
		o.SlotPolicy = opts.SlotPolicy
		o.Logger = opts.Logger
		if opts.Engine != nil {
			opts.Engine(o)
		}
	})

	r := runner.New(eng, func(o *runner.Options) {
		o.MaxConcurrentConversations = opts.MaxConcurrentConversations
		o.Phraser = phraser
		o.History = opts.History
		o.Logger = opts.Logger
	})

	return &JobTrack{engine: eng, runner: r}
}

// Run handles one message and phrases the reply.
func (j *JobTrack) Run(ctx context.Context, msg core.Message) (runner.Reply, error) {
	return j.runner.Run(ctx, msg)
}

// RegisterCallback adds an engine lifecycle callback.
func (j *JobTrack) RegisterCallback(cb engine.Callback) { j.engine.RegisterCallback(cb) }

// Engine returns the underlying engine.
func (j *JobTrack) Engine() *engine.Engine { return j.engine }
