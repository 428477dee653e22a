package engine

import (
	"context"

	"github.com/hupe1980/jobtrack/conversation"
	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/normalize"
	"github.com/hupe1980/jobtrack/rules"
)

const fieldStatus = "status"

// continueSlots handles a message while job fields are being collected.
func (e *Engine) continueSlots(ctx context.Context, t *turn, cls core.Classification, ents core.Entities, problems core.Problems) core.Outcome {
	// A failed classification never fills slots; the pending question stays open.
	if cls.Degraded {
		return e.unknown(cls)
	}
	if cls.Intent == core.IntentSmallTalk && ents.Empty() {
		return newOutcome(cls, core.ActionSmallTalk, core.FailureNone)
	}

	missing := conversation.Missing(t.sess.Slots)
	if cls.Intent == core.IntentUnknown && cls.Source != core.SourceRule && ents.Empty() && len(missing) == 1 {
		// A bare answer to the single open question.
		switch missing[0] {
		case conversation.FieldJobTitle:
			ents.JobTitle = normalize.Title(t.msg.Text)
		case conversation.FieldCompany:
			if c := normalize.Company(t.msg.Text); normalize.Key(c) != "" {
				ents.Companies = []string{c}
			}
		}
		if !ents.Empty() {
			t.log.Debug("bare slot answer", "field", missing[0])
		}
	}

	cls.Intent = core.IntentNewJob
	return e.newJob(ctx, t, cls, conversation.MergeSlots(t.sess.Slots, ents, e.opts.SlotPolicy), problems)
}

func (e *Engine) newJob(ctx context.Context, t *turn, cls core.Classification, slots core.Slots, problems core.Problems) core.Outcome {
	if p, ok := problems.Find(fieldStatus); ok {
		out := newOutcome(cls, core.ActionValidation, core.FailureValidation)
		out.Problems = []core.FieldProblem{p}
		return out
	}

	slots = e.enrich(ctx, t, slots)

	if missing := conversation.Missing(slots); len(missing) > 0 {
		conversation.AwaitSlots(t.sess, slots)
		out := newOutcome(cls, core.ActionAwaitingSlots, core.FailureNone)
		out.Missing = missing
		out.Known = slots.View()
		out.Problems = problems
		return out
	}

	status := slots.Status
	if status == "" {
		status = e.opts.DefaultStatus
	}

	out := newOutcome(cls, core.ActionJobsCreated, core.FailureNone)
	out.Problems = problems
	for _, company := range slots.Companies {
		job, err := e.store.CreateJob(ctx, core.NewJob{
			OwnerID:     t.msg.OwnerID,
			JobTitle:    slots.JobTitle,
			CompanyName: company,
			Status:      status,
			Link:        slots.Link,
		})
		if err != nil {
			out.Items = append(out.Items, e.writeFailed(ctx, t, company, err))
			out.Failure = core.FailureWrite
			continue
		}
		view := job.View()
		out.Items = append(out.Items, core.ItemResult{Company: company, State: core.ItemApplied, Job: &view})
	}
	conversation.Reset(t.sess)
	return out
}

// enrich fills a missing title or company from the job link once per link.
func (e *Engine) enrich(ctx context.Context, t *turn, slots core.Slots) core.Slots {
	if e.enricher == nil || slots.Link == "" || slots.LinkChecked || len(conversation.Missing(slots)) == 0 {
		return slots
	}
	slots.LinkChecked = true

	ctx, cancel := context.WithTimeout(ctx, e.opts.EnrichTimeout)
	defer cancel()

	preview, err := e.enricher.FetchPreview(ctx, slots.Link)
	if err != nil {
		t.log.Debug("link preview failed", "error", err)
		return slots
	}
	if slots.JobTitle == "" {
		slots.JobTitle = normalize.Title(preview.Title)
	}
	if len(slots.Companies) == 0 {
		if c := normalize.Company(preview.Company); normalize.Key(c) != "" {
			slots.Companies = []string{c}
		}
	}
	return slots
}

func (e *Engine) statusUpdate(ctx context.Context, t *turn, cls core.Classification, ents core.Entities, problems core.Problems) core.Outcome {
	if p, ok := problems.Find(fieldStatus); ok {
		out := newOutcome(cls, core.ActionValidation, core.FailureValidation)
		out.Problems = []core.FieldProblem{p}
		return out
	}
	if ents.Status == "" {
		out := newOutcome(cls, core.ActionValidation, core.FailureValidation)
		out.Missing = []string{fieldStatus}
		return out
	}
	if len(ents.Companies) == 0 {
		return clarifyCompany(cls)
	}

	op := core.PendingOperation{Intent: core.IntentStatusUpdate, Status: ents.Status}
	out := newOutcome(cls, core.ActionStatusUpdated, core.FailureNone)
	out.Status = ents.Status

	results, err := e.matcher.Match(ctx, t.msg.OwnerID, ents.Companies, ents.JobTitle)
	if err != nil {
		return e.lookupFailed(t, out, ents.Companies, err)
	}
	return e.applyBatch(ctx, t, out, op, results)
}

func (e *Engine) jobDelete(ctx context.Context, t *turn, cls core.Classification, ents core.Entities) core.Outcome {
	op := core.PendingOperation{Intent: core.IntentJobDelete}
	out := newOutcome(cls, core.ActionJobsDeleted, core.FailureNone)

	switch {
	case len(ents.Companies) > 0:
		results, err := e.matcher.Match(ctx, t.msg.OwnerID, ents.Companies, ents.JobTitle)
		if err != nil {
			return e.lookupFailed(t, out, ents.Companies, err)
		}
		if ents.Status != "" {
			results = narrowByStatus(results, ents.Status)
		}
		return e.applyBatch(ctx, t, out, op, results)
	case ents.Status != "":
		return e.deleteByStatus(ctx, t, out, ents.Status)
	default:
		return clarifyCompany(cls)
	}
}

// deleteByStatus removes every job of the owner in status.
func (e *Engine) deleteByStatus(ctx context.Context, t *turn, out core.Outcome, status core.Status) core.Outcome {
	out.Status = status
	jobs, err := e.store.ListJobs(ctx, t.msg.OwnerID, core.JobFilter{Status: status})
	if err != nil {
		t.log.Error("list jobs failed", "error", err)
		out.Failure = core.FailureWrite
		return out
	}
	pending := core.PendingOperation{Intent: core.IntentJobDelete}
	for _, j := range jobs {
		it := e.applyOne(ctx, t, pending, j.CompanyName, core.CandidateFromJob(j))
		if it.State == core.ItemWriteFailed {
			out.Failure = core.FailureWrite
		}
		out.Items = append(out.Items, it)
	}
	return out
}

func (e *Engine) jobSearch(ctx context.Context, t *turn, cls core.Classification, ents core.Entities) core.Outcome {
	out := newOutcome(cls, core.ActionJobsListed, core.FailureNone)
	out.Status = ents.Status

	jobs, err := e.store.ListJobs(ctx, t.msg.OwnerID, core.JobFilter{Status: ents.Status})
	if err != nil {
		t.log.Error("list jobs failed", "error", err)
		out.Failure = core.FailureWrite
		return out
	}
	jobs = e.matcher.Filter(jobs, ents.Companies)

	out.Summary = make(map[core.Status]int)
	for _, j := range jobs {
		out.Jobs = append(out.Jobs, j.View())
		out.Summary[j.Status]++
	}
	return out
}

func (e *Engine) unknown(cls core.Classification) core.Outcome {
	if cls.Degraded {
		return newOutcome(cls, core.ActionRephrase, core.FailureClassification)
	}
	return newOutcome(cls, core.ActionClarify, core.FailureClassification)
}

// resolveSelection applies the pending operation to candidate idx (1-based).
func (e *Engine) resolveSelection(ctx context.Context, t *turn, idx int) core.Outcome {
	pending := t.sess.Operation
	c := t.sess.Candidates[idx-1]
	conversation.Reset(t.sess)

	out := core.Outcome{Intent: pending.Intent, Confidence: rules.Confidence, Source: core.SourceRule, Status: pending.Status}
	switch pending.Intent {
	case core.IntentStatusUpdate:
		out.Action = core.ActionStatusUpdated
	case core.IntentJobDelete:
		out.Action = core.ActionJobsDeleted
	default:
		t.log.Warn("selection without pending operation", "intent", pending.Intent)
		out.Action = core.ActionClarify
		out.Failure = core.FailureClassification
		return out
	}

	it := e.applyOne(ctx, t, pending, c.CompanyName, c)
	out.Items = []core.ItemResult{it}
	out.Failure = batchFailure(out.Items)
	return out
}

func (e *Engine) lookupFailed(t *turn, out core.Outcome, companies []string, err error) core.Outcome {
	t.log.Error("match lookup failed", "error", err)
	for _, c := range companies {
		out.Items = append(out.Items, core.ItemResult{Company: c, State: core.ItemWriteFailed, Reason: "lookup failed"})
	}
	out.Failure = core.FailureWrite
	return out
}

func clarifyCompany(cls core.Classification) core.Outcome {
	out := newOutcome(cls, core.ActionClarify, core.FailureClassification)
	out.Missing = []string{conversation.FieldCompany}
	return out
}
