package engine

import (
	"context"
	"errors"

	"github.com/hupe1980/jobtrack/conversation"
	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/matcher"
)

// applyBatch writes every unique match independently and merges the
// candidates of all ambiguous matches into a single pending selection.
// Items follow the order of the company mentions.
func (e *Engine) applyBatch(ctx context.Context, t *turn, out core.Outcome, pending core.PendingOperation, results []matcher.Result) core.Outcome {
	items := make([]*core.ItemResult, len(results))
	written := make(map[string]core.ItemResult)

	for i, r := range results {
		if r.Kind != matcher.Unique {
			continue
		}
		c := r.Candidates[0]
		if prev, dup := written[c.RecordID]; dup {
			it := prev
			it.Company = r.Company
			items[i] = &it
			continue
		}
		it := e.applyOne(ctx, t, pending, r.Company, c)
		written[c.RecordID] = it
		items[i] = &it
	}

	var cands []core.Candidate
	listed := make(map[string]struct{})
	for i, r := range results {
		switch r.Kind {
		case matcher.NotFound:
			items[i] = &core.ItemResult{Company: r.Company, State: core.ItemNotFound}
		case matcher.Ambiguous:
			var covered *core.ItemResult
			open := 0
			for _, c := range r.Candidates {
				if prev, done := written[c.RecordID]; done {
					if covered == nil {
						covered = &prev
					}
					continue
				}
				open++
				if _, dup := listed[c.RecordID]; dup {
					continue
				}
				listed[c.RecordID] = struct{}{}
				cands = append(cands, c)
			}
			if open == 0 {
				// Every candidate was written for another mention.
				it := *covered
				it.Company = r.Company
				items[i] = &it
				continue
			}
			items[i] = &core.ItemResult{Company: r.Company, State: core.ItemAmbiguous}
		case matcher.Unique:
		}
	}

	for _, it := range items {
		if it != nil {
			out.Items = append(out.Items, *it)
		}
	}
	out.Failure = batchFailure(out.Items)

	if len(cands) > 0 {
		conversation.AwaitSelection(t.sess, pending, cands)
		out.Candidates = core.CandidateViews(cands)
	} else {
		conversation.Reset(t.sess)
	}
	return out
}

// applyOne performs the pending operation on a single record.
func (e *Engine) applyOne(ctx context.Context, t *turn, pending core.PendingOperation, company string, c core.Candidate) core.ItemResult {
	var (
		view core.JobView
		err  error
	)

	switch pending.Intent {
	case core.IntentStatusUpdate:
		var job core.Job
		job, err = e.store.UpdateJobStatus(ctx, t.msg.OwnerID, c.RecordID, pending.Status)
		view = job.View()
	case core.IntentJobDelete:
		err = e.store.DeleteJob(ctx, t.msg.OwnerID, c.RecordID)
		view = c.View()
	default:
		return core.ItemResult{Company: company, State: core.ItemNotFound}
	}

	switch {
	case errors.Is(err, core.ErrNotFound):
		return core.ItemResult{Company: company, State: core.ItemNotFound}
	case err != nil:
		return e.writeFailed(ctx, t, company, err)
	}
	return core.ItemResult{Company: company, State: core.ItemApplied, Job: &view}
}

// writeFailed records a failed write. The store error is logged and handed
// to callbacks but never reaches the item.
func (e *Engine) writeFailed(ctx context.Context, t *turn, company string, err error) core.ItemResult {
	it := core.ItemResult{Company: company, State: core.ItemWriteFailed, Reason: "write failed"}
	t.log.Error("record write failed", "company", company, "error", err)
	e.fire(ctx, t, CallbackOnWriteFailure, &CallbackContext{Item: &it, Err: err})
	return it
}

// narrowByStatus keeps only candidates in status and re-buckets the results.
func narrowByStatus(results []matcher.Result, status core.Status) []matcher.Result {
	out := make([]matcher.Result, len(results))
	for i, r := range results {
		var keep []core.Candidate
		for _, c := range r.Candidates {
			if c.Status == status {
				keep = append(keep, c)
			}
		}
		r.Candidates = keep
		switch len(keep) {
		case 0:
			r.Kind = matcher.NotFound
		case 1:
			r.Kind = matcher.Unique
		default:
			r.Kind = matcher.Ambiguous
		}
		out[i] = r
	}
	return out
}

func batchFailure(items []core.ItemResult) core.FailureKind {
	failure := core.FailureNone
	for _, it := range items {
		switch it.State {
		case core.ItemWriteFailed:
			return core.FailureWrite
		case core.ItemAmbiguous:
			failure = core.FailureAmbiguity
		case core.ItemNotFound:
			if failure == core.FailureNone {
				failure = core.FailureNotFound
			}
		}
	}
	return failure
}
