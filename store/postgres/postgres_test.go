package postgres

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/jobtrack/core"
)

func TestListQuery(t *testing.T) {
	tests := []struct {
		name   string
		filter core.JobFilter
		sql    string
		args   []any
	}{
		{
			name: "owner only",
			sql:  "SELECT " + jobColumns + " FROM jobs WHERE owner_id = $1 ORDER BY date_added DESC, id DESC",
			args: []any{"u1"},
		},
		{
			name:   "status",
			filter: core.JobFilter{Status: core.StatusOffer},
			sql:    "SELECT " + jobColumns + " FROM jobs WHERE owner_id = $1 AND status = $2 ORDER BY date_added DESC, id DESC",
			args:   []any{"u1", "offer"},
		},
		{
			name:   "status and limit",
			filter: core.JobFilter{Status: core.StatusApplied, Limit: 5},
			sql:    "SELECT " + jobColumns + " FROM jobs WHERE owner_id = $1 AND status = $2 ORDER BY date_added DESC, id DESC LIMIT $3",
			args:   []any{"u1", "applied", 5},
		},
		{
			name:   "limit only",
			filter: core.JobFilter{Limit: 2},
			sql:    "SELECT " + jobColumns + " FROM jobs WHERE owner_id = $1 ORDER BY date_added DESC, id DESC LIMIT $2",
			args:   []any{"u1", 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := listQuery("u1", tt.filter)
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestRecentQuery(t *testing.T) {
	key := core.SessionKey{OwnerID: "u1", ConversationID: "c1"}

	sql, args := recentQuery(key, 6)
	assert.Contains(t, sql, "LIMIT $3")
	assert.Contains(t, sql, "ORDER BY id ASC")
	assert.Equal(t, []any{"u1", "c1", 6}, args)

	sql, args = recentQuery(key, 0)
	assert.NotContains(t, sql, "LIMIT")
	assert.Len(t, args, 2)
}

func TestDecodeSession(t *testing.T) {
	key := core.SessionKey{OwnerID: "u1", ConversationID: "c1"}

	stored := core.NewSession(core.SessionKey{OwnerID: "other", ConversationID: "other"})
	stored.Mode = core.ModeAwaitingSelection
	stored.Operation = core.PendingOperation{Intent: core.IntentStatusUpdate, Status: core.StatusOffer}
	stored.Candidates = []core.Candidate{{RecordID: "r1", JobTitle: "SWE", CompanyName: "Google", Status: core.StatusApplied}}
	stored.LastActivityAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(stored)
	require.NoError(t, err)

	sess, err := decodeSession(key, raw)
	require.NoError(t, err)
	assert.Equal(t, key, sess.Key())
	assert.Equal(t, core.ModeAwaitingSelection, sess.Mode)
	assert.Equal(t, stored.Operation, sess.Operation)
	assert.Equal(t, stored.Candidates, sess.Candidates)
	assert.True(t, stored.LastActivityAt.Equal(sess.LastActivityAt))

	empty, err := decodeSession(key, []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, core.ModeIdle, empty.Mode)

	_, err = decodeSession(key, []byte(`{`))
	assert.Error(t, err)
}
