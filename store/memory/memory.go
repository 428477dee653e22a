// Package memory provides a process local core.RecordStore. It is the
// default backend for the façade, the CLI chat mode and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/internal/util"
)

// Options configure the in-memory record store.
type Options struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// NewID returns record ids. Defaults to util.NewID.
	NewID func() string
}

type entry struct {
	job core.Job
	seq uint64
}

// Store is a concurrency safe RecordStore keyed by record id.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]entry
	seq  uint64
	opts Options
}

// New constructs an empty store.
func New(optFns ...func(o *Options)) *Store {
	opts := Options{Now: time.Now, NewID: util.NewID}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{jobs: make(map[string]entry), opts: opts}
}

// CreateJob stores a new record. Duplicate (owner, title, company) triples are allowed.
func (s *Store) CreateJob(_ context.Context, in core.NewJob) (core.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.opts.Now().UTC()
	job := core.Job{
		ID:          s.opts.NewID(),
		OwnerID:     in.OwnerID,
		JobTitle:    in.JobTitle,
		CompanyName: in.CompanyName,
		Status:      in.Status,
		Link:        in.Link,
		DateAdded:   now,
		LastUpdated: now,
	}
	s.seq++
	s.jobs[job.ID] = entry{job: job, seq: s.seq}
	return job, nil
}

// ListJobs returns the owner's records, newest first.
func (s *Store) ListJobs(_ context.Context, ownerID string, filter core.JobFilter) ([]core.Job, error) {
	s.mu.RLock()
	entries := make([]entry, 0, len(s.jobs))
	for _, e := range s.jobs {
		if e.job.OwnerID != ownerID {
			continue
		}
		if filter.Status != "" && e.job.Status != filter.Status {
			continue
		}
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].job.DateAdded.Equal(entries[j].job.DateAdded) {
			return entries[i].job.DateAdded.After(entries[j].job.DateAdded)
		}
		return entries[i].seq > entries[j].seq
	})
	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}

	jobs := make([]core.Job, len(entries))
	for i, e := range entries {
		jobs[i] = e.job
	}
	return jobs, nil
}

// UpdateJobStatus sets the status of one of the owner's records.
func (s *Store) UpdateJobStatus(_ context.Context, ownerID, id string, status core.Status) (core.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[id]
	if !ok || e.job.OwnerID != ownerID {
		return core.Job{}, core.ErrNotFound
	}
	e.job.Status = status
	e.job.LastUpdated = s.opts.Now().UTC()
	s.jobs[id] = e
	return e.job, nil
}

// DeleteJob removes one of the owner's records.
func (s *Store) DeleteJob(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[id]
	if !ok || e.job.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

// Len returns the number of stored records across owners.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
