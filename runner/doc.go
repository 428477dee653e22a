// Package runner is the concurrency boundary in front of the engine.
//
// Turns of the same (owner, conversation) run strictly one after another in
// arrival order: every turn takes a ticket on the conversation's lane and
// waits for the previous ticket. Turns of different conversations run in
// parallel, bounded by a weighted semaphore.
//
// After the engine produced an outcome the runner phrases it. A failing or
// empty phraser falls back to the deterministic template, so a reply is
// always produced. The reply is appended to the conversation history.
//
//	r := runner.New(eng, func(o *runner.Options) {
//	    o.Phraser = phrase.Fallback{Primary: phrase.NewModelPhraser(m)}
//	    o.History = eng.History()
//	})
//	reply, err := r.Run(ctx, msg)
package runner
