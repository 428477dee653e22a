package phrase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/model"
)

const modelInstructions = `You are JobTrackAI, a warm and encouraging assistant who helps users track job applications.
Tone: friendly, concise, supportive, never cheesy. 1 emoji max.
Write the reply for the structured outcome you are given.
Rules:
- Do NOT invent or alter facts. Use only the provided fields.
- Never mention internal ids.
- candidates must be shown as a numbered list using their ordinal and label, then ask the user to reply with a number.
- missing lists the exact fields to ask for; restate known fields briefly.
- For refused outcomes decline kindly and suggest tracking actions instead.
- For small_talk reply briefly and redirect to job tracking.
Keep it under 12 short lines.`

// ModelOptions configure the ModelPhraser.
type ModelOptions struct {
	// Timeout bounds every generation.
	Timeout time.Duration
	// Actions limits model phrasing to these actions. Empty means all.
	Actions []core.Action
}

// ModelPhraser asks a model to phrase outcomes. Outcomes carry no record
// ids, so neither can the reply.
type ModelPhraser struct {
	model model.Model
	opts  ModelOptions
}

var _ core.Phraser = (*ModelPhraser)(nil)

// ErrSkipped is returned for actions the phraser is not configured for.
var ErrSkipped = errors.New("action not phrased by model")

// NewModelPhraser creates a phraser backed by m.
func NewModelPhraser(m model.Model, optFns ...func(o *ModelOptions)) *ModelPhraser {
	opts := ModelOptions{Timeout: 6 * time.Second}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelPhraser{model: m, opts: opts}
}

// Phrase implements core.Phraser.
func (p *ModelPhraser) Phrase(ctx context.Context, o core.Outcome) (string, error) {
	if !p.enabled(o.Action) {
		return "", ErrSkipped
	}

	payload, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("marshal outcome: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	respCh, errCh := p.model.Generate(ctx, model.Request{
		Instructions: modelInstructions,
		Messages: []model.Message{{
			Role:    "user",
			Content: "Write the reply for this outcome:\n" + string(payload),
		}},
	})
	resp, err := model.Collect(ctx, respCh, errCh)
	if err != nil {
		return "", fmt.Errorf("phrase outcome: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("phrase outcome: empty reply")
	}
	return text, nil
}

func (p *ModelPhraser) enabled(a core.Action) bool {
	if len(p.opts.Actions) == 0 {
		return true
	}
	for _, x := range p.opts.Actions {
		if x == a {
			return true
		}
	}
	return false
}

// Fallback phrases with primary and falls back to Template on any error.
type Fallback struct {
	Primary core.Phraser
}

var _ core.Phraser = Fallback{}

// Phrase implements core.Phraser.
func (f Fallback) Phrase(ctx context.Context, o core.Outcome) (string, error) {
	if f.Primary != nil {
		if text, err := f.Primary.Phrase(ctx, o); err == nil && text != "" {
			return text, nil
		}
	}
	return Render(o), nil
}
