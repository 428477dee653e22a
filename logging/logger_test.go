package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, LogLevelDebug, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, LogLevelInfo, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNew_JSONWithAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: LogLevelInfo, Format: "json", Output: &buf})

	With(logger, "owner_id", "u1").Info("turn handled", "action", "jobs_created")
	logger.Debug("dropped")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "turn handled", entry["msg"])
	assert.Equal(t, "u1", entry["owner_id"])
	assert.Equal(t, "jobs_created", entry["action"])
}

type recorder struct {
	NoOpLogger
	args []any
}

func (r *recorder) Info(_ string, args ...any) { r.args = args }

func TestWith_WrapsForeignLogger(t *testing.T) {
	rec := &recorder{}
	With(rec, "a", 1).Info("msg", "b", 2)
	assert.Equal(t, []any{"a", 1, "b", 2}, rec.args)

	assert.Equal(t, NoOpLogger{}, With(NoOpLogger{}, "a", 1))
}
