package core

// Action names what a turn did.
type Action string

const (
	ActionJobsCreated   Action = "jobs_created"
	ActionAwaitingSlots Action = "awaiting_slots"
	ActionStatusUpdated Action = "status_updated"
	ActionJobsDeleted   Action = "jobs_deleted"
	ActionJobsListed    Action = "jobs_listed"
	ActionSmallTalk     Action = "small_talk"
	ActionRefused       Action = "refused"
	ActionCancelled     Action = "cancelled"
	ActionClarify       Action = "clarification_needed"
	ActionRephrase      Action = "rephrase"
	ActionValidation    Action = "validation_failed"
)

// ItemState is the per-company result of a batch operation.
type ItemState string

const (
	ItemApplied     ItemState = "applied"
	ItemNotFound    ItemState = "not_found"
	ItemAmbiguous   ItemState = "ambiguous"
	ItemWriteFailed ItemState = "write_failed"
)

// ItemResult is the outcome of one item of a batch.
type ItemResult struct {
	Company string    `json:"company"`
	State   ItemState `json:"state"`
	Job     *JobView  `json:"job,omitempty"`
	Reason  string    `json:"reason,omitempty"`
}

// Outcome is the structured result of one turn, consumed by phrasers.
// Nothing in it carries a record id: jobs appear as JobView and pending
// candidates only by ordinal.
type Outcome struct {
	Intent     Intent      `json:"intent"`
	Confidence float64     `json:"confidence"`
	Source     Source      `json:"source,omitempty"`
	Action     Action      `json:"action"`
	Failure    FailureKind `json:"failure,omitempty"`

	// Status is the target status of an update.
	Status Status `json:"status,omitempty"`

	Items      []ItemResult    `json:"items,omitempty"`
	Jobs       []JobView       `json:"jobs,omitempty"`
	Summary    map[Status]int  `json:"summary,omitempty"`
	Candidates []CandidateView `json:"candidates,omitempty"`
	Missing    []string        `json:"missing,omitempty"`
	Known      *SlotsView      `json:"known,omitempty"`
	Problems   []FieldProblem  `json:"problems,omitempty"`

	// Pending is the session mode after the turn.
	Pending Mode `json:"pending"`
}

// RequiresClarification reports whether the user has to answer before the
// pending operation can proceed.
func (o Outcome) RequiresClarification() bool {
	switch o.Action {
	case ActionAwaitingSlots, ActionClarify, ActionRephrase, ActionValidation:
		return true
	}
	return o.Pending == ModeAwaitingSelection
}

// Count returns how many items ended in state.
func (o Outcome) Count(state ItemState) int {
	n := 0
	for _, it := range o.Items {
		if it.State == state {
			n++
		}
	}
	return n
}
