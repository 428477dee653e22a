package core

import "context"

// RecordStore persists job records. Every call is scoped to an owner so a
// record id from another owner behaves as missing (ErrNotFound).
type RecordStore interface {
	CreateJob(ctx context.Context, job NewJob) (Job, error)
	ListJobs(ctx context.Context, ownerID string, filter JobFilter) ([]Job, error)
	UpdateJobStatus(ctx context.Context, ownerID, id string, status Status) (Job, error)
	DeleteJob(ctx context.Context, ownerID, id string) error
}

// SessionStore persists conversation sessions. Get returns a fresh idle
// session when none exists yet.
type SessionStore interface {
	Get(ctx context.Context, key SessionKey) (*Session, error)
	Save(ctx context.Context, session *Session) error
}

// HistoryStore logs conversation turns for reasoning context.
type HistoryStore interface {
	Append(ctx context.Context, key SessionKey, turn Turn) error
	Recent(ctx context.Context, key SessionKey, limit int) ([]Turn, error)
}

// ReasoningInput is everything a reasoner may see about a turn. Open jobs
// are descriptors without ids.
type ReasoningInput struct {
	Text     string          `json:"text"`
	History  []Turn          `json:"history,omitempty"`
	OpenJobs []JobDescriptor `json:"open_jobs,omitempty"`
	Awaiting []string        `json:"awaiting,omitempty"`
}

// Reasoner classifies a message it did not match lexically. Implementations
// must not fail: provider faults degrade to an UNKNOWN classification.
type Reasoner interface {
	Classify(ctx context.Context, in ReasoningInput) Classification
}

// Preview is a best-effort summary of a job posting.
type Preview struct {
	Title   string `json:"title,omitempty"`
	Company string `json:"company,omitempty"`
}

// Enricher fetches previews for job links.
type Enricher interface {
	FetchPreview(ctx context.Context, url string) (Preview, error)
}

// Phraser renders an outcome into user-facing text.
type Phraser interface {
	Phrase(ctx context.Context, outcome Outcome) (string, error)
}
