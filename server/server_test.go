package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/engine"
	"github.com/hupe1980/jobtrack/runner"
)

type senderFunc func(ctx context.Context, msg core.Message) (runner.Reply, error)

func (f senderFunc) Run(ctx context.Context, msg core.Message) (runner.Reply, error) {
	return f(ctx, msg)
}

func post(t *testing.T, s *Server, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/agent/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	s := New(senderFunc(nil), func(o *Options) {
		o.Checkers = []Checker{NewCheck("store", func(context.Context) error { return nil })}
	})

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestHealth_FailingChecker(t *testing.T) {
	s := New(senderFunc(nil), func(o *Options) {
		o.Checkers = []Checker{NewCheck("postgres", func(context.Context) error { return errors.New("connection refused") })}
	})

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMessage_EndToEnd(t *testing.T) {
	s := New(runner.New(engine.New()))

	status, body := post(t, s, `{"message":"show my jobs","user_id":"u1","conversation_id":"c1"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "jobs_listed", body["action_taken"])
	assert.Equal(t, "job_search", body["intent"])
	assert.Equal(t, "c1", body["conversation_id"])
	assert.Equal(t, false, body["requires_clarification"])
	assert.InDelta(t, 0.99, body["confidence"], 1e-9)
	assert.NotEmpty(t, body["response"])
}

func TestMessage_AssignsConversationID(t *testing.T) {
	var got core.Message
	s := New(senderFunc(func(_ context.Context, msg core.Message) (runner.Reply, error) {
		got = msg
		return runner.Reply{Text: "ok", Outcome: core.Outcome{Action: core.ActionClarify, Intent: core.IntentUnknown}}, nil
	}), func(o *Options) { o.NewConversationID = func() string { return "conv-new" } })

	status, body := post(t, s, `{"message":"hmm","user_id":"u1"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "conv-new", body["conversation_id"])
	assert.Equal(t, true, body["requires_clarification"])
	assert.Equal(t, "conv-new", got.ConversationID)
	assert.Equal(t, "u1", got.OwnerID)
}

func TestMessage_BadRequests(t *testing.T) {
	s := New(senderFunc(func(context.Context, core.Message) (runner.Reply, error) {
		t.Fatal("sender must not be called")
		return runner.Reply{}, nil
	}))

	for _, body := range []string{`{`, `{"message":"hi"}`, `{"user_id":"u1","message":"  "}`} {
		status, _ := post(t, s, body)
		assert.Equal(t, http.StatusBadRequest, status, body)
	}
}

func TestMessage_InternalError(t *testing.T) {
	s := New(senderFunc(func(context.Context, core.Message) (runner.Reply, error) {
		return runner.Reply{}, errors.New("db down: postgres://secret@host")
	}))

	status, body := post(t, s, `{"message":"hi","user_id":"u1","conversation_id":"c1"}`)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", body["message"])
}
