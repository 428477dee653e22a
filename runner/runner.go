package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/logging"
	"github.com/hupe1980/jobtrack/phrase"
)

// Handler resolves one message into an outcome. *engine.Engine implements it.
type Handler interface {
	Handle(ctx context.Context, msg core.Message) (core.Outcome, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, msg core.Message) (core.Outcome, error)

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, msg core.Message) (core.Outcome, error) {
	return f(ctx, msg)
}

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// MaxConcurrentConversations limits turns running at the same time
	// across different conversations.
	MaxConcurrentConversations int
	// Phraser renders outcomes. Failures fall back to phrase.Template.
	Phraser core.Phraser
	// History receives the assistant turn. Nil disables logging of replies.
	History core.HistoryStore
	// Now returns the current time.
	Now func() time.Time
	// Logging services.
	Logger logging.Logger
}

// Reply is the result of one turn.
type Reply struct {
	Text    string
	Outcome core.Outcome
}

// lane orders the turns of one conversation. tail is closed when the most
// recently admitted turn finishes.
type lane struct {
	tail    chan struct{}
	waiters int
}

// Runner serializes turns per conversation and bounds the number of
// conversations processed in parallel. Public methods are safe for
// concurrent use.
type Runner struct {
	handler Handler
	phraser core.Phraser
	history core.HistoryStore
	now     func() time.Time
	logger  logging.Logger

	sem *semaphore.Weighted

	lanes map[core.SessionKey]*lane
	mu    sync.Mutex
}

// New constructs a Runner with optional overrides.
func New(handler Handler, optFns ...func(o *Options)) *Runner {
	opts := Options{
		MaxConcurrentConversations: 10,
		Phraser:                    phrase.Template{},
		Now:                        time.Now,
		Logger:                     logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxConcurrentConversations <= 0 {
		opts.MaxConcurrentConversations = 1
	}
	if opts.Phraser == nil {
		opts.Phraser = phrase.Template{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Runner{
		handler: handler,
		phraser: opts.Phraser,
		history: opts.History,
		now:     opts.Now,
		logger:  opts.Logger,
		sem:     semaphore.NewWeighted(int64(opts.MaxConcurrentConversations)),
		lanes:   make(map[core.SessionKey]*lane),
	}
}

// Run handles msg after every earlier turn of the same conversation has
// finished, then phrases the outcome.
func (r *Runner) Run(ctx context.Context, msg core.Message) (Reply, error) {
	key := msg.Key()

	leave, err := r.enter(ctx, key)
	if err != nil {
		return Reply{}, err
	}
	defer leave()

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return Reply{}, fmt.Errorf("acquire slot: %w", err)
	}
	defer r.sem.Release(1)

	out, err := r.handler.Handle(ctx, msg)
	if err != nil {
		return Reply{}, fmt.Errorf("handle message: %w", err)
	}

	text := r.phrase(ctx, key, out)

	if r.history != nil {
		turn := core.Turn{Role: core.RoleAssistant, Content: text, Timestamp: r.now()}
		if err := r.history.Append(ctx, key, turn); err != nil {
			r.logger.Warn("append reply failed", "conversation_id", key.ConversationID, "error", err)
		}
	}

	return Reply{Text: text, Outcome: out}, nil
}

func (r *Runner) phrase(ctx context.Context, key core.SessionKey, out core.Outcome) string {
	text, err := r.phraser.Phrase(ctx, out)
	if err == nil && strings.TrimSpace(text) != "" {
		return text
	}
	if err != nil {
		r.logger.Warn("phrasing failed", "conversation_id", key.ConversationID, "action", out.Action, "error", err)
	}
	return phrase.Render(out)
}

// enter takes the next ticket of key's lane and waits for the previous one.
// The returned func must be called once the turn is done.
func (r *Runner) enter(ctx context.Context, key core.SessionKey) (func(), error) {
	done := make(chan struct{})

	r.mu.Lock()
	l, ok := r.lanes[key]
	if !ok {
		l = &lane{}
		r.lanes[key] = l
	}
	prev := l.tail
	l.tail = done
	l.waiters++
	r.mu.Unlock()

	leave := func() {
		close(done)
		r.mu.Lock()
		l.waiters--
		if l.waiters == 0 {
			delete(r.lanes, key)
		}
		r.mu.Unlock()
	}

	if prev == nil {
		return leave, nil
	}

	select {
	case <-prev:
		return leave, nil
	case <-ctx.Done():
		// Keep the chain intact for later turns.
		go func() {
			<-prev
			leave()
		}()
		return nil, fmt.Errorf("wait for conversation: %w", ctx.Err())
	}
}

// Pending returns the number of conversations with admitted turns.
func (r *Runner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lanes)
}
