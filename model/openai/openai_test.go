package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/jobtrack/model"
)

func TestBuildParams_JSONSchema(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test"; o.Model = "gpt-test" })
	params := m.buildParams(model.Request{
		Instructions: "classify",
		Messages:     []model.Message{{Role: "assistant", Content: "hi"}, {Role: "user", Content: "x"}},
		Schema:       &model.Schema{Name: "classification", Parameters: map[string]any{"type": "object"}},
	})

	assert.Len(t, params.Messages, 3)
	assert.Equal(t, "gpt-test", params.Model)
	require.NotNil(t, params.ResponseFormat.OfJSONSchema)
	assert.Equal(t, "classification", params.ResponseFormat.OfJSONSchema.JSONSchema.Name)
	assert.Equal(t, "openai", m.Info().Provider)
}

func TestBuildParams_NoSchema(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test" })
	params := m.buildParams(model.Request{Messages: []model.Message{{Role: "user", Content: "x"}}})

	assert.Len(t, params.Messages, 1)
	assert.Nil(t, params.ResponseFormat.OfJSONSchema)
}
