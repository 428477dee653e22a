// Package engine resolves chat messages about job applications into
// structured outcomes.
//
// The Engine is the coordination point of a turn. It loads the pending
// conversation state, classifies the message, normalizes the extracted
// entities and runs the operation the intent names against the record store.
// The result is a core.Outcome that a phraser turns into the reply.
//
// # Turn Pipeline
//
//	message
//	  │
//	  ├─ cancel phrase ───────────────▶ reset, cancelled
//	  ├─ pending selection + ordinal ─▶ apply to candidate
//	  │
//	  ├─ rules ──(no match)──▶ reasoner
//	  ├─ unsafe gate ─────────────────▶ refused, nothing read or written
//	  ├─ normalize entities
//	  ├─ pending slots: merge or abandon
//	  │
//	  └─ intent switch
//	       NEW_JOB        create one job per company or await missing slots
//	       STATUS_UPDATE  match, update unique, list ambiguous
//	       JOB_DELETE     match and delete, or bulk delete by status
//	       JOB_SEARCH     list with status/company filter and summary
//	       SMALL_TALK     redirect
//	       UNKNOWN        clarification or rephrase
//
// # Batches
//
// Operations naming several companies are batches. Every uniquely matched
// record is written independently: a failed write is reported on its own
// item and never rolls back or blocks the others. Ambiguous mentions are
// merged into one numbered candidate list and the session waits for a
// selection. A record is written at most once per batch.
//
// # Failures
//
// Collaborator faults never fail a turn. A reasoning provider that is down
// degrades to UNKNOWN, a failed enrichment is ignored and store errors
// become write failures on the outcome. Handle returns an error only for an
// invalid message or when the session cannot be loaded or saved.
//
// # Callbacks
//
// Callbacks observe the turn at fixed points (see CallbackType):
//
//	eng.RegisterCallback(engine.NewFunctionCallback(engine.CallbackOnWriteFailure,
//	    func(ctx context.Context, cc *engine.CallbackContext) error {
//	        metrics.WriteFailures.Inc()
//	        return nil
//	    }))
//
// # Concurrency
//
// An Engine is safe for concurrent use across conversations. Turns of the
// same conversation must be serialized by the caller; package runner does
// that.
package engine
