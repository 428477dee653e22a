package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/jobtrack/core"
)

// ErrInjected is returned by FlakyStore for failing operations.
var ErrInjected = errors.New("injected store failure")

// FlakyStore wraps a RecordStore and fails selected writes. Failures are
// keyed by company name so batch tests can break exactly one item.
type FlakyStore struct {
	core.RecordStore

	mu         sync.Mutex
	failCreate map[string]bool
	failWrite  map[string]bool
	failList   bool
	writes     int
}

// NewFlakyStore wraps next.
func NewFlakyStore(next core.RecordStore) *FlakyStore {
	return &FlakyStore{RecordStore: next, failCreate: map[string]bool{}, failWrite: map[string]bool{}}
}

// FailCreate makes CreateJob fail for company.
func (f *FlakyStore) FailCreate(company string) *FlakyStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failCreate[company] = true
	return f
}

// FailWrite makes UpdateJobStatus and DeleteJob fail for records of company.
func (f *FlakyStore) FailWrite(company string) *FlakyStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrite[company] = true
	return f
}

// FailList makes ListJobs fail.
func (f *FlakyStore) FailList() *FlakyStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failList = true
	return f
}

// Writes returns the number of attempted mutations.
func (f *FlakyStore) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// CreateJob implements core.RecordStore.
func (f *FlakyStore) CreateJob(ctx context.Context, job core.NewJob) (core.Job, error) {
	f.mu.Lock()
	f.writes++
	fail := f.failCreate[job.CompanyName]
	f.mu.Unlock()
	if fail {
		return core.Job{}, ErrInjected
	}
	return f.RecordStore.CreateJob(ctx, job)
}

// ListJobs implements core.RecordStore.
func (f *FlakyStore) ListJobs(ctx context.Context, ownerID string, filter core.JobFilter) ([]core.Job, error) {
	f.mu.Lock()
	fail := f.failList
	f.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}
	return f.RecordStore.ListJobs(ctx, ownerID, filter)
}

// UpdateJobStatus implements core.RecordStore.
func (f *FlakyStore) UpdateJobStatus(ctx context.Context, ownerID, id string, status core.Status) (core.Job, error) {
	if err := f.checkWrite(ctx, ownerID, id); err != nil {
		return core.Job{}, err
	}
	return f.RecordStore.UpdateJobStatus(ctx, ownerID, id, status)
}

// DeleteJob implements core.RecordStore.
func (f *FlakyStore) DeleteJob(ctx context.Context, ownerID, id string) error {
	if err := f.checkWrite(ctx, ownerID, id); err != nil {
		return err
	}
	return f.RecordStore.DeleteJob(ctx, ownerID, id)
}

func (f *FlakyStore) checkWrite(ctx context.Context, ownerID, id string) error {
	f.mu.Lock()
	f.writes++
	failing := len(f.failWrite) > 0
	f.mu.Unlock()
	if !failing {
		return nil
	}
	jobs, err := f.RecordStore.ListJobs(ctx, ownerID, core.JobFilter{})
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range jobs {
		if j.ID == id && f.failWrite[j.CompanyName] {
			return ErrInjected
		}
	}
	return nil
}

// SeedJobs creates jobs for ownerID and returns them in creation order.
func SeedJobs(ctx context.Context, store core.RecordStore, ownerID string, jobs ...core.NewJob) ([]core.Job, error) {
	out := make([]core.Job, 0, len(jobs))
	for _, j := range jobs {
		j.OwnerID = ownerID
		if j.Status == "" {
			j.Status = core.StatusApplied
		}
		created, err := store.CreateJob(ctx, j)
		if err != nil {
			return nil, err
		}
		out = append(out, created)
	}
	return out, nil
}
