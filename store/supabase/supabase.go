// Package supabase persists jobs, sessions and turns through the Supabase
// PostgREST API using the JobTrackAI jobs, conversations and messages tables.
//
// The REST client has no ordering or paging in use here, so sorting and
// limits are applied client-side.
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	supabase "github.com/nedpals/supabase-go"

	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/internal/util"
)

const (
	jobsTable          = "jobs"
	conversationsTable = "conversations"
	messagesTable      = "messages"
)

// ErrMissingCredentials is returned when the URL or key is empty.
var ErrMissingCredentials = errors.New("supabase URL and key are required")

// Options configures a Store.
type Options struct {
	// Now returns the current time. Defaults to time.Now in UTC.
	Now func() time.Time
	// NewID generates record ids. Defaults to util.NewID.
	NewID func() string
}

// Store implements core.RecordStore, core.SessionStore and core.HistoryStore.
type Store struct {
	client *supabase.Client
	opts   Options
}

var (
	_ core.RecordStore  = (*Store)(nil)
	_ core.SessionStore = (*Store)(nil)
	_ core.HistoryStore = (*Store)(nil)
)

// New creates a store for the project at url authenticated with key.
func New(url, key string, optFns ...func(o *Options)) (*Store, error) {
	if url == "" || key == "" {
		return nil, ErrMissingCredentials
	}
	// CreateClient returns *supabase.Client (no error)
	return NewFromClient(supabase.CreateClient(url, key), optFns...), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *supabase.Client, optFns ...func(o *Options)) *Store {
	opts := Options{
		Now:   func() time.Time { return time.Now().UTC() },
		NewID: util.NewID,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{client: client, opts: opts}
}

type jobRow struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	JobTitle    string     `json:"job_title"`
	CompanyName string     `json:"company_name"`
	JobLink     string     `json:"job_link,omitempty"`
	Status      string     `json:"status"`
	DateAdded   *time.Time `json:"date_added,omitempty"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

func (r jobRow) job() core.Job {
	j := core.Job{
		ID:          r.ID,
		OwnerID:     r.UserID,
		JobTitle:    r.JobTitle,
		CompanyName: r.CompanyName,
		Status:      core.Status(r.Status),
		Link:        r.JobLink,
	}
	if r.DateAdded != nil {
		j.DateAdded = *r.DateAdded
	}
	if r.LastUpdated != nil {
		j.LastUpdated = *r.LastUpdated
	}
	return j
}

// CreateJob implements core.RecordStore.
func (s *Store) CreateJob(ctx context.Context, in core.NewJob) (core.Job, error) {
	if err := ctx.Err(); err != nil {
		return core.Job{}, err
	}
	now := s.opts.Now()
	row := jobRow{
		ID:          s.opts.NewID(),
		UserID:      in.OwnerID,
		JobTitle:    in.JobTitle,
		CompanyName: in.CompanyName,
		JobLink:     in.Link,
		Status:      string(in.Status),
		DateAdded:   &now,
		LastUpdated: &now,
	}
	var results []jobRow
	if err := s.client.DB.From(jobsTable).Insert(row).Execute(&results); err != nil {
		return core.Job{}, fmt.Errorf("insert job: %w", err)
	}
	if len(results) > 0 {
		return results[0].job(), nil
	}
	return row.job(), nil
}

// ListJobs implements core.RecordStore.
func (s *Store) ListJobs(ctx context.Context, ownerID string, filter core.JobFilter) ([]core.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := s.client.DB.From(jobsTable).Select("*").Eq("user_id", ownerID)
	if filter.Status != "" {
		q = q.Eq("status", string(filter.Status))
	}
	var rows []jobRow
	if err := q.Execute(&rows); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return newestFirst(rows, filter.Limit), nil
}

// newestFirst converts rows to jobs ordered by date added, newest first.
func newestFirst(rows []jobRow, limit int) []core.Job {
	jobs := make([]core.Job, len(rows))
	for i, r := range rows {
		jobs[i] = r.job()
	}
	sort.SliceStable(jobs, func(i, j int) bool { return jobs[i].DateAdded.After(jobs[j].DateAdded) })
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs
}

func (s *Store) getJob(ownerID, id string) (jobRow, error) {
	var rows []jobRow
	if err := s.client.DB.From(jobsTable).Select("*").Eq("id", id).Eq("user_id", ownerID).Execute(&rows); err != nil {
		return jobRow{}, fmt.Errorf("get job: %w", err)
	}
	if len(rows) == 0 {
		return jobRow{}, core.ErrNotFound
	}
	return rows[0], nil
}

// UpdateJobStatus implements core.RecordStore.
func (s *Store) UpdateJobStatus(ctx context.Context, ownerID, id string, status core.Status) (core.Job, error) {
	if err := ctx.Err(); err != nil {
		return core.Job{}, err
	}
	row, err := s.getJob(ownerID, id)
	if err != nil {
		return core.Job{}, err
	}
	now := s.opts.Now()
	patch := map[string]any{"status": string(status), "last_updated": now}

	var results []jobRow
	if err := s.client.DB.From(jobsTable).Update(patch).Eq("id", id).Eq("user_id", ownerID).Execute(&results); err != nil {
		return core.Job{}, fmt.Errorf("update job: %w", err)
	}
	if len(results) > 0 {
		return results[0].job(), nil
	}
	row.Status = string(status)
	row.LastUpdated = &now
	return row.job(), nil
}

// DeleteJob implements core.RecordStore.
func (s *Store) DeleteJob(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.getJob(ownerID, id); err != nil {
		return err
	}
	var results []jobRow
	if err := s.client.DB.From(jobsTable).Delete().Eq("id", id).Eq("user_id", ownerID).Execute(&results); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

type conversationRow struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	LastMessageAt *time.Time      `json:"last_message_at,omitempty"`
}

// Get implements core.SessionStore. The session lives in the metadata
// column of the conversation row.
func (s *Store) Get(ctx context.Context, key core.SessionKey) (*core.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row, ok, err := s.conversation(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return core.NewSession(key), nil
	}
	return sessionFromRow(key, row)
}

func sessionFromRow(key core.SessionKey, row conversationRow) (*core.Session, error) {
	sess := core.NewSession(key)
	if len(row.Metadata) > 0 && string(row.Metadata) != "null" {
		if err := json.Unmarshal(row.Metadata, sess); err != nil {
			return nil, fmt.Errorf("decode session: %w", err)
		}
	}
	sess.OwnerID = key.OwnerID
	sess.ConversationID = key.ConversationID
	if sess.Mode == "" {
		sess.Mode = core.ModeIdle
	}
	return sess, nil
}

// Save implements core.SessionStore.
func (s *Store) Save(ctx context.Context, sess *core.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := sess.Key()
	_, exists, err := s.conversation(key)
	if err != nil {
		return err
	}

	activity := sess.LastActivityAt
	if activity.IsZero() {
		activity = s.opts.Now()
	}

	var results []conversationRow
	if exists {
		patch := map[string]any{"metadata": sess, "last_message_at": activity, "updated_at": s.opts.Now()}
		err = s.client.DB.From(conversationsTable).Update(patch).
			Eq("id", key.ConversationID).Eq("user_id", key.OwnerID).Execute(&results)
	} else {
		meta, merr := json.Marshal(sess)
		if merr != nil {
			return fmt.Errorf("encode session: %w", merr)
		}
		row := conversationRow{ID: key.ConversationID, UserID: key.OwnerID, Metadata: meta, LastMessageAt: &activity}
		err = s.client.DB.From(conversationsTable).Insert(row).Execute(&results)
	}
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Store) conversation(key core.SessionKey) (conversationRow, bool, error) {
	var rows []conversationRow
	err := s.client.DB.From(conversationsTable).Select("*").
		Eq("id", key.ConversationID).Eq("user_id", key.OwnerID).Execute(&rows)
	if err != nil {
		return conversationRow{}, false, fmt.Errorf("load session: %w", err)
	}
	if len(rows) == 0 {
		return conversationRow{}, false, nil
	}
	return rows[0], true, nil
}

type messageRow struct {
	ConversationID string     `json:"conversation_id"`
	UserID         string     `json:"user_id"`
	Role           string     `json:"role"`
	Content        string     `json:"content"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
}

// Append implements core.HistoryStore.
func (s *Store) Append(ctx context.Context, key core.SessionKey, turn core.Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ts := turn.Timestamp
	if ts.IsZero() {
		ts = s.opts.Now()
	}
	row := messageRow{
		ConversationID: key.ConversationID,
		UserID:         key.OwnerID,
		Role:           string(turn.Role),
		Content:        turn.Content,
		CreatedAt:      &ts,
	}
	var results []messageRow
	if err := s.client.DB.From(messagesTable).Insert(row).Execute(&results); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// Recent implements core.HistoryStore.
func (s *Store) Recent(ctx context.Context, key core.SessionKey, limit int) ([]core.Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []messageRow
	err := s.client.DB.From(messagesTable).Select("role", "content", "created_at").
		Eq("conversation_id", key.ConversationID).Eq("user_id", key.OwnerID).Execute(&rows)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	return lastTurns(rows, limit), nil
}

// lastTurns returns up to limit most recent turns, oldest first.
func lastTurns(rows []messageRow, limit int) []core.Turn {
	turns := make([]core.Turn, len(rows))
	for i, r := range rows {
		turns[i] = core.Turn{Role: core.Role(r.Role), Content: r.Content}
		if r.CreatedAt != nil {
			turns[i].Timestamp = *r.CreatedAt
		}
	}
	sort.SliceStable(turns, func(i, j int) bool { return turns[i].Timestamp.Before(turns[j].Timestamp) })
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns
}
