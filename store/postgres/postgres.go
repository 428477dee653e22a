// Package postgres persists jobs, conversation sessions and turns in
// PostgreSQL through a pgx connection pool.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/internal/util"
)

// Connect opens a pgx connection pool and performs a Ping to ensure connectivity.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 0
	config.MaxConnLifetime = time.Hour
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// DB is the subset of *pgxpool.Pool used by the store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Options configures a Store.
type Options struct {
	// Now returns the current time. Defaults to time.Now in UTC.
	Now func() time.Time
	// NewID generates record ids. Defaults to util.NewID.
	NewID func() string
	// SkipSchema disables the CREATE TABLE IF NOT EXISTS pass on start.
	SkipSchema bool
}

// Store implements core.RecordStore, core.SessionStore and core.HistoryStore.
type Store struct {
	db   DB
	opts Options
}

var (
	_ core.RecordStore  = (*Store)(nil)
	_ core.SessionStore = (*Store)(nil)
	_ core.HistoryStore = (*Store)(nil)
)

// New creates a store on db and ensures the schema exists.
func New(ctx context.Context, db DB, optFns ...func(o *Options)) (*Store, error) {
	opts := Options{
		Now:   func() time.Time { return time.Now().UTC() },
		NewID: util.NewID,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Store{db: db, opts: opts}
	if !opts.SkipSchema {
		if err := s.ensureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}
	return s, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	job_title TEXT NOT NULL,
	company_name TEXT NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('applied', 'interview', 'offer', 'rejected', 'withdrawn')),
	job_link TEXT NOT NULL DEFAULT '',
	date_added TIMESTAMPTZ NOT NULL,
	last_updated TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_owner ON jobs(owner_id, date_added DESC);
CREATE TABLE IF NOT EXISTS conversations (
	owner_id TEXT NOT NULL,
	conversation_id TEXT NOT NULL,
	state JSONB NOT NULL,
	last_activity_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (owner_id, conversation_id)
);
CREATE TABLE IF NOT EXISTS messages (
	id BIGSERIAL PRIMARY KEY,
	owner_id TEXT NOT NULL,
	conversation_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(owner_id, conversation_id, id DESC);
`

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	return err
}

const jobColumns = `id, owner_id, job_title, company_name, status, job_link, date_added, last_updated`

// CreateJob implements core.RecordStore.
func (s *Store) CreateJob(ctx context.Context, in core.NewJob) (core.Job, error) {
	now := s.opts.Now()
	rows, err := s.db.Query(ctx, `
INSERT INTO jobs (`+jobColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
RETURNING `+jobColumns,
		s.opts.NewID(), in.OwnerID, strings.TrimSpace(in.JobTitle), strings.TrimSpace(in.CompanyName), string(in.Status), in.Link, now)
	if err != nil {
		return core.Job{}, fmt.Errorf("insert job: %w", err)
	}
	job, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[core.Job])
	if err != nil {
		return core.Job{}, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

// ListJobs implements core.RecordStore.
func (s *Store) ListJobs(ctx context.Context, ownerID string, filter core.JobFilter) ([]core.Job, error) {
	sql, args := listQuery(ownerID, filter)
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	jobs, err := pgx.CollectRows(rows, pgx.RowToStructByName[core.Job])
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// listQuery builds the owner scoped select, newest first.
func listQuery(ownerID string, filter core.JobFilter) (string, []any) {
	var b strings.Builder
	args := []any{ownerID}
	b.WriteString(`SELECT ` + jobColumns + ` FROM jobs WHERE owner_id = $1`)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		b.WriteString(` AND status = $` + strconv.Itoa(len(args)))
	}
	b.WriteString(` ORDER BY date_added DESC, id DESC`)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		b.WriteString(` LIMIT $` + strconv.Itoa(len(args)))
	}
	return b.String(), args
}

// UpdateJobStatus implements core.RecordStore.
func (s *Store) UpdateJobStatus(ctx context.Context, ownerID, id string, status core.Status) (core.Job, error) {
	rows, err := s.db.Query(ctx, `
UPDATE jobs SET status = $3, last_updated = $4
WHERE id = $1 AND owner_id = $2
RETURNING `+jobColumns, id, ownerID, string(status), s.opts.Now())
	if err != nil {
		return core.Job{}, fmt.Errorf("update job: %w", err)
	}
	job, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[core.Job])
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Job{}, core.ErrNotFound
	}
	if err != nil {
		return core.Job{}, fmt.Errorf("update job: %w", err)
	}
	return job, nil
}

// DeleteJob implements core.RecordStore.
func (s *Store) DeleteJob(ctx context.Context, ownerID, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Get implements core.SessionStore.
func (s *Store) Get(ctx context.Context, key core.SessionKey) (*core.Session, error) {
	var state []byte
	err := s.db.QueryRow(ctx, `
SELECT state FROM conversations WHERE owner_id = $1 AND conversation_id = $2
`, key.OwnerID, key.ConversationID).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.NewSession(key), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decodeSession(key, state)
}

// Save implements core.SessionStore.
func (s *Store) Save(ctx context.Context, sess *core.Session) error {
	state, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	activity := sess.LastActivityAt
	if activity.IsZero() {
		activity = s.opts.Now()
	}
	_, err = s.db.Exec(ctx, `
INSERT INTO conversations (owner_id, conversation_id, state, last_activity_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (owner_id, conversation_id) DO UPDATE
SET state = EXCLUDED.state, last_activity_at = EXCLUDED.last_activity_at
`, sess.OwnerID, sess.ConversationID, state, activity)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// decodeSession restores a stored session. The key columns are
// authoritative over whatever the document holds.
func decodeSession(key core.SessionKey, state []byte) (*core.Session, error) {
	sess := core.NewSession(key)
	if len(state) > 0 {
		if err := json.Unmarshal(state, sess); err != nil {
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

// Append implements core.HistoryStore.
func (s *Store) Append(ctx context.Context, key core.SessionKey, turn core.Turn) error {
	ts := turn.Timestamp
	if ts.IsZero() {
		ts = s.opts.Now()
	}
	_, err := s.db.Exec(ctx, `
INSERT INTO messages (owner_id, conversation_id, role, content, created_at)
VALUES ($1, $2, $3, $4, $5)
`, key.OwnerID, key.ConversationID, string(turn.Role), turn.Content, ts)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// Recent implements core.HistoryStore.
func (s *Store) Recent(ctx context.Context, key core.SessionKey, limit int) ([]core.Turn, error) {
	sql, args := recentQuery(key, limit)
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	turns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Turn, error) {
		var (
			t    core.Turn
			role string
		)
		err := row.Scan(&role, &t.Content, &t.Timestamp)
		t.Role = core.Role(role)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	return turns, nil
}

// recentQuery selects the newest turns and returns them oldest first.
func recentQuery(key core.SessionKey, limit int) (string, []any) {
	args := []any{key.OwnerID, key.ConversationID}
	inner := `SELECT id, role, content, created_at FROM messages WHERE owner_id = $1 AND conversation_id = $2 ORDER BY id DESC`
	if limit > 0 {
		args = append(args, limit)
		inner += ` LIMIT $3`
	}
	return `SELECT role, content, created_at FROM (` + inner + `) recent ORDER BY id ASC`, args
}
