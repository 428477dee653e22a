package supabase

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/jobtrack/core"
)

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New("", "key")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = New("https://project.supabase.co", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	s, err := New("https://project.supabase.co", "key")
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestJobRow_DecodesPostgRESTPayload(t *testing.T) {
	payload := `[{"id":"5f0c","user_id":"u1","job_title":"SWE","company_name":"Tesla","job_link":null,
		"job_description":null,"status":"interview","date_added":"2024-05-01T10:00:00+00:00","last_updated":"2024-05-02T10:00:00+00:00"}]`

	var rows []jobRow
	require.NoError(t, json.Unmarshal([]byte(payload), &rows))
	require.Len(t, rows, 1)

	job := rows[0].job()
	assert.Equal(t, "u1", job.OwnerID)
	assert.Equal(t, core.StatusInterview, job.Status)
	assert.Empty(t, job.Link)
	assert.Equal(t, 2024, job.DateAdded.Year())
}

func TestNewestFirst(t *testing.T) {
	day := func(d int) *time.Time {
		ts := time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
		return &ts
	}
	rows := []jobRow{
		{ID: "a", DateAdded: day(1)},
		{ID: "c", DateAdded: day(3)},
		{ID: "b", DateAdded: day(2)},
	}

	jobs := newestFirst(rows, 0)
	require.Len(t, jobs, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{jobs[0].ID, jobs[1].ID, jobs[2].ID})

	assert.Len(t, newestFirst(rows, 2), 2)
}

func TestLastTurns(t *testing.T) {
	at := func(m int) *time.Time {
		ts := time.Date(2024, 5, 1, 10, m, 0, 0, time.UTC)
		return &ts
	}
	rows := []messageRow{
		{Role: "assistant", Content: "2", CreatedAt: at(2)},
		{Role: "user", Content: "1", CreatedAt: at(1)},
		{Role: "user", Content: "3", CreatedAt: at(3)},
	}

	turns := lastTurns(rows, 2)
	require.Len(t, turns, 2)
	assert.Equal(t, "2", turns[0].Content)
	assert.Equal(t, core.RoleAssistant, turns[0].Role)
	assert.Equal(t, "3", turns[1].Content)

	assert.Len(t, lastTurns(rows, 0), 3)
}

func TestSessionFromRow(t *testing.T) {
	key := core.SessionKey{OwnerID: "u1", ConversationID: "c1"}

	sess, err := sessionFromRow(key, conversationRow{Metadata: json.RawMessage(`null`)})
	require.NoError(t, err)
	assert.Equal(t, core.ModeIdle, sess.Mode)

	stored := core.NewSession(key)
	stored.Mode = core.ModeAwaitingSlot
	stored.Slots = core.Slots{Companies: []string{"Tesla"}}
	meta, err := json.Marshal(stored)
	require.NoError(t, err)

	sess, err = sessionFromRow(key, conversationRow{Metadata: meta})
	require.NoError(t, err)
	assert.Equal(t, core.ModeAwaitingSlot, sess.Mode)
	assert.Equal(t, []string{"Tesla"}, sess.Slots.Companies)
	assert.Equal(t, key, sess.Key())
}
