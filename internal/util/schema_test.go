package util

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Intent     string   `json:"intent" enum:"A,B"`
	Confidence float64  `json:"confidence"`
	Companies  []string `json:"companies" description:"every company"`
	Title      string   `json:"job_title,omitempty"`
	Internal   string   `json:"-"`
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(payload{})

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, false, schema["additionalProperties"])
	assert.ElementsMatch(t, []string{"intent", "confidence", "companies"}, schema["required"])

	props := schema["properties"].(map[string]any)
	assert.NotContains(t, props, "Internal")
	assert.Equal(t, []any{"A", "B"}, props["intent"].(map[string]any)["enum"])

	companies := props["companies"].(map[string]any)
	assert.Equal(t, "array", companies["type"])
	assert.Equal(t, "every company", companies["description"])
	assert.Equal(t, map[string]any{"type": "string"}, companies["items"])
}

func TestValidateParameters(t *testing.T) {
	schema := CreateSchema(payload{})

	t.Run("valid", func(t *testing.T) {
		err := ValidateParameters(map[string]any{
			"intent": "A", "confidence": 0.5, "companies": []any{"x"},
		}, schema)
		assert.NoError(t, err)
	})

	t.Run("missing required", func(t *testing.T) {
		err := ValidateParameters(map[string]any{"intent": "A", "confidence": 0.5}, schema)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "companies", verr.Field)
	})

	t.Run("wrong type", func(t *testing.T) {
		err := ValidateParameters(map[string]any{
			"intent": "A", "confidence": "high", "companies": []any{},
		}, schema)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "confidence", verr.Field)
	})

	t.Run("outside enum", func(t *testing.T) {
		err := ValidateParameters(map[string]any{
			"intent": "C", "confidence": 1.0, "companies": []any{},
		}, schema)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "intent", verr.Field)
	})

	t.Run("json decoded schema", func(t *testing.T) {
		b, err := json.Marshal(schema)
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(b, &decoded))

		err = ValidateParameters(map[string]any{"intent": "A"}, decoded)
		assert.Error(t, err)
	})
}

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("no markers", nil)
	require.NoError(t, err)
	assert.Equal(t, "no markers", out)

	out, err = RenderTemplate(`{{join ", " .items}} & {{default "none" .missing}}`, map[string]any{
		"items":   []string{"a", "b"},
		"missing": "",
	})
	require.NoError(t, err)
	assert.Equal(t, "a, b & none", out)

	out, err = RenderTemplate("{{.text}}", map[string]any{"text": "AT&T <x>"})
	require.NoError(t, err)
	assert.Equal(t, "AT&T <x>", out)
}
