package reasoning

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/model"
)

func fastOptions(o *Options) {
	o.Timeout = 50 * time.Millisecond
	o.RetryBase = time.Millisecond
}

func TestClassify_Success(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.AddResponse("I applied to Tesla and xAI", "```json\n"+
		`{"intent":"NEW_JOB","confidence":0.93,"companies":["Tesla","xAI"],"job_title":"SWE","is_unsafe":false,"is_small_talk":false}`+
		"\n```")

	cls := New(m, fastOptions).Classify(context.Background(), core.ReasoningInput{Text: "I applied to Tesla and xAI"})

	assert.Equal(t, core.IntentNewJob, cls.Intent)
	assert.Equal(t, core.SourceModel, cls.Source)
	assert.InDelta(t, 0.93, cls.Confidence, 1e-9)
	assert.Equal(t, []string{"Tesla", "xAI"}, cls.Entities.Companies)
	assert.Equal(t, "SWE", cls.Entities.JobTitle)
	assert.False(t, cls.Degraded)
	assert.Equal(t, 1, m.Calls())
}

func TestClassify_MalformedDegrades(t *testing.T) {
	for name, text := range map[string]string{
		"not json":       "sure, it's a new job",
		"missing fields": `{"intent":"NEW_JOB"}`,
		"unknown intent": `{"intent":"AMBIGUOUS","confidence":1,"companies":[],"is_unsafe":false,"is_small_talk":false}`,
		"wrong type":     `{"intent":"NEW_JOB","confidence":"high","companies":[],"is_unsafe":false,"is_small_talk":false}`,
	} {
		t.Run(name, func(t *testing.T) {
			m := model.NewMockModel("mock", "mock")
			m.AddResponse("hello world", text)

			cls := New(m, fastOptions).Classify(context.Background(), core.ReasoningInput{Text: "hello world"})

			assert.Equal(t, core.IntentUnknown, cls.Intent)
			assert.True(t, cls.Degraded)
			assert.ErrorIs(t, cls.Cause, ErrMalformedPayload)
			assert.Equal(t, 3, m.Calls(), "first attempt plus two retries")
		})
	}
}

func TestClassify_RetriesTransientErrors(t *testing.T) {
	var n atomic.Int32
	m := model.NewMockModel("mock", "mock")
	m.SetHandler(func(context.Context, model.Request) (string, error) {
		if n.Add(1) == 1 {
			return "", errors.New("503 service unavailable")
		}
		return `{"intent":"JOB_SEARCH","confidence":0.8,"companies":[],"is_unsafe":false,"is_small_talk":false}`, nil
	})

	cls := New(m, fastOptions).Classify(context.Background(), core.ReasoningInput{Text: "what have I got going on"})

	assert.Equal(t, core.IntentJobSearch, cls.Intent)
	assert.False(t, cls.Degraded)
	assert.Equal(t, 2, m.Calls())
}

func TestClassify_TimeoutDegrades(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.SetHandler(func(ctx context.Context, _ model.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	start := time.Now()
	cls := New(m, func(o *Options) {
		fastOptions(o)
		o.Timeout = 10 * time.Millisecond
		o.MaxRetries = 1
	}).Classify(context.Background(), core.ReasoningInput{Text: "slow"})

	assert.Equal(t, core.IntentUnknown, cls.Intent)
	assert.True(t, cls.Degraded)
	assert.ErrorIs(t, cls.Cause, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClassify_UnsafeFlagWins(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.AddResponse("tell me what is stored about tesla", `{"intent":"JOB_SEARCH","confidence":0.7,"companies":["Tesla"],"is_unsafe":true,"is_small_talk":false}`)

	cls := New(m, fastOptions).Classify(context.Background(), core.ReasoningInput{Text: "tell me what is stored about tesla"})

	assert.Equal(t, core.IntentUnsafe, cls.Intent)
	assert.True(t, cls.Unsafe)
}

func TestClassify_ConfidenceClamped(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.AddResponse("x", `{"intent":"NEW_JOB","confidence":7,"companies":[],"is_unsafe":false,"is_small_talk":false}`)

	cls := New(m, fastOptions).Classify(context.Background(), core.ReasoningInput{Text: "x"})
	assert.Equal(t, 1.0, cls.Confidence)
}

func TestBuildRequest_ContextWithoutIDs(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	a := New(m, func(o *Options) { o.HistoryTurns = 2 })

	req, err := a.buildRequest(core.ReasoningInput{
		Text: "Stripe",
		History: []core.Turn{
			{Role: core.RoleUser, Content: "one"},
			{Role: core.RoleAssistant, Content: "two"},
			{Role: core.RoleUser, Content: "I applied for SWE"},
		},
		OpenJobs: []core.JobDescriptor{{Title: "Backend Engineer", Company: "Tesla", Status: core.StatusInterview}},
		Awaiting: []string{"company_name"},
	})
	require.NoError(t, err)

	require.Len(t, req.Messages, 3)
	assert.Equal(t, "two", req.Messages[0].Content)
	assert.Equal(t, "Stripe", req.LastUserText())

	assert.Contains(t, req.Instructions, "- Backend Engineer | Tesla | interview")
	assert.Contains(t, req.Instructions, "waiting for these fields of a new job: company_name")
	assert.Contains(t, req.Instructions, `["Tesla","xAI"]`)
	assert.Contains(t, req.Instructions, "applied, interview, offer, rejected, withdrawn")
	assert.False(t, strings.Contains(strings.ToLower(req.Instructions), "record_id"))

	require.NotNil(t, req.Schema)
	props := req.Schema.Parameters["properties"].(map[string]any)
	assert.Contains(t, props, "companies")
	assert.NotContains(t, props, "id")
}
