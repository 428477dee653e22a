package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/jobtrack/conversation"
	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/logging"
	"github.com/hupe1980/jobtrack/matcher"
	"github.com/hupe1980/jobtrack/normalize"
	"github.com/hupe1980/jobtrack/rules"
	"github.com/hupe1980/jobtrack/session"
	"github.com/hupe1980/jobtrack/store/memory"
)

// Options configures an Engine instance using the functional options pattern.
//
// Every collaborator has an in-memory default so an Engine is usable without
// external services. Without a Reasoner, messages the rules do not match are
// answered with a clarification.
//
// Example:
//
//	eng := engine.New(func(o *engine.Options) {
//	    o.Store = pgStore
//	    o.Reasoner = reasoning.New(openai.NewModel())
//	    o.Logger = logger
//	})
type Options struct {
	// Store persists job records. Defaults to store/memory.
	Store core.RecordStore

	// Sessions persists pending conversation state. Defaults to session.InMemoryStore.
	Sessions core.SessionStore

	// History logs turns for reasoning context. Defaults to session.InMemoryHistory.
	History core.HistoryStore

	// Reasoner classifies what the rules did not match.
	Reasoner core.Reasoner

	// Enricher previews job links to fill a missing title or company.
	Enricher core.Enricher

	// MatchStrategy is the loose company comparison. Defaults to matcher.Substring.
	MatchStrategy matcher.Strategy

	// SlotPolicy decides whether later messages overwrite known slots.
	SlotPolicy conversation.SlotPolicy

	// HistoryTurns caps the prior turns passed to the reasoner.
	HistoryTurns int

	// OpenJobsLimit caps the open job descriptors passed to the reasoner.
	OpenJobsLimit int

	// AbandonConfidence is the minimum confidence of a different operation
	// that abandons pending slots.
	AbandonConfidence float64

	// EnrichTimeout bounds a link preview.
	EnrichTimeout time.Duration

	// DefaultStatus is applied to new jobs without a status.
	DefaultStatus core.Status

	// Now returns the current time.
	Now func() time.Time

	// Logger provides structured logging. Defaults to NoOp.
	Logger logging.Logger
}

// Engine resolves one message at a time into an outcome. It holds no per
// conversation state itself; callers serialize turns of the same
// conversation (see package runner).
type Engine struct {
	store    core.RecordStore
	sessions core.SessionStore
	history  core.HistoryStore
	reasoner core.Reasoner
	enricher core.Enricher
	matcher  *matcher.Matcher

	callbacks *CallbackManager
	logger    logging.Logger
	opts      Options
}

// New creates a new Engine instance with sensible defaults and optional configuration.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		SlotPolicy:        conversation.PreserveKnown,
		HistoryTurns:      6,
		OpenJobsLimit:     50,
		AbandonConfidence: 0.7,
		EnrichTimeout:     5 * time.Second,
		DefaultStatus:     core.StatusApplied,
		Now:               time.Now,
		Logger:            logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
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
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Engine{
		store:    opts.Store,
		sessions: opts.Sessions,
		history:  opts.History,
		reasoner: opts.Reasoner,
		enricher: opts.Enricher,
		matcher: matcher.New(opts.Store, func(o *matcher.Options) {
			o.Strategy = opts.MatchStrategy
		}),
		callbacks: NewCallbackManager(),
		logger:    opts.Logger,
		opts:      opts,
	}
}

// RegisterCallback adds a lifecycle callback.
func (e *Engine) RegisterCallback(cb Callback) {
	e.callbacks.RegisterCallback(cb)
}

// History returns the turn log used by the engine.
func (e *Engine) History() core.HistoryStore { return e.history }

// Store returns the record store used by the engine.
func (e *Engine) Store() core.RecordStore { return e.store }

// turn is the working state of one Handle call.
type turn struct {
	msg     core.Message
	sess    *core.Session
	history []core.Turn
	log     logging.Logger
}

// Handle resolves msg. Collaborator faults become outcome failures; only an
// invalid message or a session load/save error is returned.
func (e *Engine) Handle(ctx context.Context, msg core.Message) (core.Outcome, error) {
	if err := msg.Validate(); err != nil {
		return core.Outcome{}, err
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = e.opts.Now()
	}

	key := msg.Key()
	log := logging.With(e.logger, "owner_id", key.OwnerID, "conversation_id", key.ConversationID)

	sess, err := e.sessions.Get(ctx, key)
	if err != nil {
		return core.Outcome{}, fmt.Errorf("load session: %w", err)
	}

	t := &turn{msg: msg, sess: sess, log: log}
	t.history = e.recentHistory(ctx, t)
	e.appendTurn(ctx, t, core.Turn{Role: core.RoleUser, Content: msg.Text, Timestamp: msg.Timestamp})

	out := e.run(ctx, t)
	out.Pending = sess.Mode

	sess.LastActivityAt = e.opts.Now()
	if err := e.sessions.Save(ctx, sess); err != nil {
		return core.Outcome{}, fmt.Errorf("save session: %w", err)
	}

	e.fire(ctx, t, CallbackAfterTurn, &CallbackContext{Outcome: &out})

	log.Info("turn handled",
		"intent", out.Intent,
		"source", out.Source,
		"confidence", out.Confidence,
		"action", out.Action,
		"failure", out.Failure,
		"pending", out.Pending,
	)

	return out, nil
}

func (e *Engine) run(ctx context.Context, t *turn) core.Outcome {
	if conversation.IsCancel(t.msg.Text) {
		intent := t.sess.Operation.Intent
		if intent == "" {
			intent = core.IntentUnknown
		}
		conversation.Reset(t.sess)
		return core.Outcome{Intent: intent, Confidence: rules.Confidence, Source: core.SourceRule, Action: core.ActionCancelled}
	}

	if t.sess.Mode == core.ModeAwaitingSelection {
		if idx, ok := conversation.ParseSelection(t.msg.Text, len(t.sess.Candidates)); ok {
			return e.resolveSelection(ctx, t, idx)
		}
		t.log.Debug("selection discarded", "candidates", len(t.sess.Candidates))
		conversation.Reset(t.sess)
	}

	cls := e.classify(ctx, t)
	e.fire(ctx, t, CallbackAfterClassify, &CallbackContext{Classification: &cls})

	if cls.Unsafe || cls.Intent == core.IntentUnsafe {
		t.log.Warn("unsafe request refused", "source", cls.Source)
		return newOutcome(cls, core.ActionRefused, core.FailureUnsafe)
	}

	ents, problems := normalize.Entities(cls.Entities)

	if t.sess.Mode == core.ModeAwaitingSlot {
		if !e.abandonsSlots(cls) {
			return e.continueSlots(ctx, t, cls, ents, problems)
		}
		t.log.Debug("pending slots abandoned", "intent", cls.Intent, "confidence", cls.Confidence)
		conversation.Reset(t.sess)
	}

	switch cls.Intent {
	case core.IntentNewJob:
		return e.newJob(ctx, t, cls, conversation.MergeSlots(core.Slots{}, ents, e.opts.SlotPolicy), problems)
	case core.IntentStatusUpdate:
		return e.statusUpdate(ctx, t, cls, ents, problems)
	case core.IntentJobDelete:
		return e.jobDelete(ctx, t, cls, ents)
	case core.IntentJobSearch:
		return e.jobSearch(ctx, t, cls, ents)
	case core.IntentSmallTalk:
		return newOutcome(cls, core.ActionSmallTalk, core.FailureNone)
	case core.IntentUnsafe:
		return newOutcome(cls, core.ActionRefused, core.FailureUnsafe)
	case core.IntentUnknown:
		return e.unknown(cls)
	}
	return e.unknown(cls)
}

// classify tries the rules first and falls back to the reasoner.
func (e *Engine) classify(ctx context.Context, t *turn) core.Classification {
	if cls, ok := rules.Classify(t.msg.Text); ok {
		t.log.Debug("rule classification", "intent", cls.Intent)
		return cls
	}
	if e.reasoner == nil {
		return core.Classification{Intent: core.IntentUnknown, Source: core.SourceModel}
	}

	in := core.ReasoningInput{
		Text:     t.msg.Text,
		History:  t.history,
		OpenJobs: e.openJobs(ctx, t),
	}
	if t.sess.Mode == core.ModeAwaitingSlot {
		in.Awaiting = conversation.Missing(t.sess.Slots)
	}
	return e.reasoner.Classify(ctx, in)
}

// openJobs lists the owner's non-closed jobs as id-free descriptors.
func (e *Engine) openJobs(ctx context.Context, t *turn) []core.JobDescriptor {
	jobs, err := e.store.ListJobs(ctx, t.msg.OwnerID, core.JobFilter{})
	if err != nil {
		t.log.Warn("list open jobs failed", "error", err)
		return nil
	}
	out := make([]core.JobDescriptor, 0, len(jobs))
	for _, j := range jobs {
		if j.Status.Closed() {
			continue
		}
		out = append(out, j.Descriptor())
		if len(out) == e.opts.OpenJobsLimit {
			break
		}
	}
	return out
}

func (e *Engine) abandonsSlots(cls core.Classification) bool {
	switch cls.Intent {
	case core.IntentStatusUpdate, core.IntentJobSearch, core.IntentJobDelete:
		return cls.Confidence >= e.opts.AbandonConfidence
	}
	return false
}

func (e *Engine) recentHistory(ctx context.Context, t *turn) []core.Turn {
	if e.opts.HistoryTurns <= 0 {
		return nil
	}
	turns, err := e.history.Recent(ctx, t.msg.Key(), e.opts.HistoryTurns)
	if err != nil {
		t.log.Warn("load history failed", "error", err)
		return nil
	}
	return turns
}

func (e *Engine) appendTurn(ctx context.Context, t *turn, tr core.Turn) {
	if err := e.history.Append(ctx, t.msg.Key(), tr); err != nil {
		t.log.Warn("append history failed", "role", tr.Role, "error", err)
	}
}

func (e *Engine) fire(ctx context.Context, t *turn, typ CallbackType, cc *CallbackContext) {
	cc.Message = t.msg
	if err := e.callbacks.ExecuteCallbacks(ctx, typ, cc); err != nil {
		t.log.Warn("callback failed", "type", typ, "error", err)
	}
}

func newOutcome(cls core.Classification, action core.Action, failure core.FailureKind) core.Outcome {
	return core.Outcome{
		Intent:     cls.Intent,
		Confidence: cls.Confidence,
		Source:     cls.Source,
		Action:     action,
		Failure:    failure,
	}
}
