// Package reasoning classifies messages the lexical rules did not match by
// asking a reasoning model for a schema-constrained JSON payload.
package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/internal/util"
	"github.com/hupe1980/jobtrack/logging"
	"github.com/hupe1980/jobtrack/model"
)

// ErrMalformedPayload marks a provider response that is not a conforming
// classification document.
var ErrMalformedPayload = errors.New("malformed classification payload")

// Payload is the response document requested from the provider.
type Payload struct {
	Intent      string   `json:"intent" enum:"NEW_JOB,STATUS_UPDATE,JOB_SEARCH,JOB_DELETE,SMALL_TALK,UNSAFE,UNKNOWN" description:"Intent of the latest user message"`
	Confidence  float64  `json:"confidence" description:"Confidence in the intent between 0 and 1"`
	Companies   []string `json:"companies" description:"Every company mentioned, in order"`
	JobTitle    string   `json:"job_title,omitempty" description:"Job title if stated"`
	Status      string   `json:"status,omitempty" description:"applied, interview, offer, rejected, withdrawn or empty"`
	Link        string   `json:"link,omitempty" description:"Job posting URL if present"`
	IsUnsafe    bool     `json:"is_unsafe" description:"Message asks for secrets or internals"`
	IsSmallTalk bool     `json:"is_small_talk" description:"Message is casual chat"`
}

// Options configure the Adapter.
type Options struct {
	// Timeout bounds every provider attempt.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64
	// RetryBase is the first exponential backoff delay.
	RetryBase time.Duration
	// HistoryTurns caps the prior turns forwarded as context.
	HistoryTurns int
	Logger       logging.Logger
}

// Adapter implements core.Reasoner on top of a model.Model.
type Adapter struct {
	model  model.Model
	schema map[string]any
	opts   Options
}

var _ core.Reasoner = (*Adapter)(nil)

// New creates an adapter for m.
func New(m model.Model, optFns ...func(o *Options)) *Adapter {
	opts := Options{
		Timeout:      8 * time.Second,
		MaxRetries:   2,
		RetryBase:    200 * time.Millisecond,
		HistoryTurns: 6,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Adapter{model: m, schema: util.CreateSchema(Payload{}), opts: opts}
}

// Classify asks the model for a classification. Provider faults never
// propagate: after the last failed attempt the result is a degraded UNKNOWN.
func (a *Adapter) Classify(ctx context.Context, in core.ReasoningInput) core.Classification {
	req, err := a.buildRequest(in)
	if err != nil {
		a.opts.Logger.Error("build classification request", "error", err)
		return core.Unknown(core.SourceModel, err)
	}

	var result core.Classification
	attempt := 0
	backoff := retry.WithMaxRetries(a.opts.MaxRetries, retry.NewExponential(a.opts.RetryBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		start := time.Now()
		cls, err := a.attempt(ctx, req)
		if err != nil {
			a.opts.Logger.Warn("classification attempt failed",
				"model", a.model.Info().Name, "attempt", attempt, "duration", time.Since(start), "error", err)
			return retry.RetryableError(err)
		}
		a.opts.Logger.Debug("classification completed",
			"model", a.model.Info().Name, "attempt", attempt, "duration", time.Since(start),
			"intent", cls.Intent, "confidence", cls.Confidence)
		result = cls
		return nil
	})
	if err != nil {
		a.opts.Logger.Error("classification degraded", "attempts", attempt, "error", err)
		return core.Unknown(core.SourceModel, err)
	}
	return result
}

func (a *Adapter) attempt(ctx context.Context, req model.Request) (core.Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	respCh, errCh := a.model.Generate(ctx, req)
	resp, err := model.Collect(ctx, respCh, errCh)
	if err != nil {
		return core.Classification{}, err
	}
	return decode(resp.Text, a.schema)
}

func (a *Adapter) buildRequest(in core.ReasoningInput) (model.Request, error) {
	statuses := make([]string, 0, len(core.Statuses()))
	for _, s := range core.Statuses() {
		statuses = append(statuses, string(s))
	}
	instructions, err := util.RenderTemplate(instructionsTemplate, map[string]any{
		"statuses": statuses,
		"awaiting": in.Awaiting,
		"jobs":     in.OpenJobs,
	})
	if err != nil {
		return model.Request{}, fmt.Errorf("render instructions: %w", err)
	}

	history := in.History
	if n := a.opts.HistoryTurns; n >= 0 && len(history) > n {
		history = history[len(history)-n:]
	}
	messages := make([]model.Message, 0, len(history)+1)
	for _, t := range history {
		messages = append(messages, model.Message{Role: string(t.Role), Content: t.Content})
	}
	messages = append(messages, model.Message{Role: string(core.RoleUser), Content: in.Text})

	return model.Request{
		Instructions: instructions,
		Messages:     messages,
		Schema: &model.Schema{
			Name:        "classification",
			Description: "Intent and entities of the latest user message",
			Parameters:  a.schema,
		},
	}, nil
}

// decode extracts, validates and converts a classification document.
func decode(text string, schema map[string]any) (core.Classification, error) {
	doc, err := extractJSON(text)
	if err != nil {
		return core.Classification{}, err
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		return core.Classification{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := util.ValidateParameters(raw, schema); err != nil {
		return core.Classification{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var p Payload
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return core.Classification{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	intent, ok := core.ParseIntent(p.Intent)
	if !ok {
		return core.Classification{}, fmt.Errorf("%w: unknown intent %q", ErrMalformedPayload, p.Intent)
	}

	cls := core.Classification{
		Intent:     intent,
		Confidence: clamp(p.Confidence),
		Source:     core.SourceModel,
		Entities: core.RawEntities{
			JobTitle:  p.JobTitle,
			Companies: p.Companies,
			Status:    p.Status,
			Link:      p.Link,
		},
		Unsafe:    p.IsUnsafe || intent == core.IntentUnsafe,
		SmallTalk: p.IsSmallTalk,
	}
	if cls.Unsafe {
		cls.Intent = core.IntentUnsafe
	} else if cls.SmallTalk && cls.Intent == core.IntentUnknown {
		cls.Intent = core.IntentSmallTalk
	}
	return cls, nil
}

// extractJSON strips code fences and returns the outermost object.
func extractJSON(text string) (string, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no JSON object in response", ErrMalformedPayload)
	}
	return s[start : end+1], nil
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
