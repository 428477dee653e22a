package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/jobtrack/core"
)

// Interface compliance (compile-time assertion)
var (
	_ core.SessionStore = (*InMemoryStore)(nil)
	_ core.HistoryStore = (*InMemoryHistory)(nil)
)

func TestInMemoryStore_GetSave(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	key := core.SessionKey{OwnerID: "u1", ConversationID: "c1"}

	sess, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, core.ModeIdle, sess.Mode)
	assert.Equal(t, 0, store.Len())

	sess.Mode = core.ModeAwaitingSlot
	sess.Slots.Companies = []string{"Tesla"}
	require.NoError(t, store.Save(ctx, sess))

	sess.Slots.Companies[0] = "mutated"

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, core.ModeAwaitingSlot, got.Mode)
	assert.Equal(t, []string{"Tesla"}, got.Slots.Companies)

	other, err := store.Get(ctx, core.SessionKey{OwnerID: "u2", ConversationID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, core.ModeIdle, other.Mode)
}

func TestInMemoryHistory(t *testing.T) {
	ctx := context.Background()
	h := NewInMemoryHistory(3)
	key := core.SessionKey{OwnerID: "u1", ConversationID: "c1"}

	for i := 0; i < 5; i++ {
		require.NoError(t, h.Append(ctx, key, core.Turn{Role: core.RoleUser, Content: fmt.Sprint(i)}))
	}

	turns, err := h.Recent(ctx, key, 0)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "2", turns[0].Content)

	turns, err = h.Recent(ctx, key, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "4"}, []string{turns[0].Content, turns[1].Content})
}
