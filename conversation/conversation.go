// Package conversation holds the pending-state transitions of a session:
// slot collection for job creation and numbered candidate selection.
package conversation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hupe1980/jobtrack/core"
)

// Field names reported as missing.
const (
	FieldJobTitle = "job_title"
	FieldCompany  = "company_name"
)

// SlotPolicy decides what happens when a message contradicts a known slot.
type SlotPolicy int

const (
	// PreserveKnown keeps the first value given for a slot.
	PreserveKnown SlotPolicy = iota
	// OverwriteKnown lets later messages correct a known slot.
	OverwriteKnown
)

// String implements fmt.Stringer.
func (p SlotPolicy) String() string {
	if p == OverwriteKnown {
		return "overwrite"
	}
	return "preserve"
}

// ParseSlotPolicy parses "preserve" or "overwrite". Empty means preserve.
func ParseSlotPolicy(s string) (SlotPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "preserve":
		return PreserveKnown, nil
	case "overwrite":
		return OverwriteKnown, nil
	default:
		return PreserveKnown, fmt.Errorf("unknown slot policy %q", s)
	}
}

var cancelPhrases = map[string]struct{}{
	"cancel": {}, "nevermind": {}, "never mind": {}, "nvm": {},
	"forget it": {}, "stop": {}, "abort": {},
}

var (
	punct      = regexp.MustCompile(`[^\p{L}\p{N}#\s]+`)
	whitespace = regexp.MustCompile(`\s+`)
)

func clean(text string) string {
	s := strings.ToLower(text)
	s = punct.ReplaceAllString(s, " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// IsCancel reports whether the whole message is a cancel phrase.
func IsCancel(text string) bool {
	_, ok := cancelPhrases[clean(text)]
	return ok
}

var (
	numberSelection  = regexp.MustCompile(`^(?:(?:number|no|option|#)\s*)?#?(\d+)(?:st|nd|rd|th)?(?:\s+one)?$`)
	ordinalSelection = regexp.MustCompile(`^(?:the\s+)?(first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth|last)(?:\s+one)?$`)
)

var ordinals = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
}

// ParseSelection returns the 1-based candidate index addressed by text when
// it is a bare number or ordinal within [1, n].
func ParseSelection(text string, n int) (int, bool) {
	s := clean(text)
	var idx int
	if m := numberSelection.FindStringSubmatch(s); m != nil {
		v, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		idx = v
	} else if m := ordinalSelection.FindStringSubmatch(s); m != nil {
		if m[1] == "last" {
			idx = n
		} else {
			idx = ordinals[m[1]]
		}
	} else {
		return 0, false
	}
	if idx < 1 || idx > n {
		return 0, false
	}
	return idx, true
}

// MergeSlots fills slots from entities according to policy. The result
// shares no slices with its inputs.
func MergeSlots(slots core.Slots, ents core.Entities, policy SlotPolicy) core.Slots {
	out := slots.Clone()
	take := func(known bool) bool { return !known || policy == OverwriteKnown }

	if ents.JobTitle != "" && take(out.JobTitle != "") {
		out.JobTitle = ents.JobTitle
	}
	if len(ents.Companies) > 0 && take(len(out.Companies) > 0) {
		out.Companies = append([]string(nil), ents.Companies...)
	}
	if ents.Status != "" && take(out.Status != "") {
		out.Status = ents.Status
	}
	if ents.Link != "" && take(out.Link != "") {
		if ents.Link != out.Link {
			out.LinkChecked = false
		}
		out.Link = ents.Link
	}
	return out
}

// Missing lists the fields still required to create a job.
func Missing(slots core.Slots) []string {
	var missing []string
	if strings.TrimSpace(slots.JobTitle) == "" {
		missing = append(missing, FieldJobTitle)
	}
	if len(slots.Companies) == 0 {
		missing = append(missing, FieldCompany)
	}
	return missing
}

// AwaitSlots moves the session into slot collection.
func AwaitSlots(sess *core.Session, slots core.Slots) {
	sess.Mode = core.ModeAwaitingSlot
	sess.Slots = slots.Clone()
	sess.Operation = core.PendingOperation{Intent: core.IntentNewJob}
	sess.Candidates = nil
}

// AwaitSelection moves the session into candidate selection for op.
func AwaitSelection(sess *core.Session, op core.PendingOperation, cands []core.Candidate) {
	sess.Mode = core.ModeAwaitingSelection
	sess.Slots = core.Slots{}
	sess.Operation = op
	sess.Candidates = append([]core.Candidate(nil), cands...)
}

// Reset clears all pending state.
func Reset(sess *core.Session) {
	sess.Mode = core.ModeIdle
	sess.Slots = core.Slots{}
	sess.Operation = core.PendingOperation{}
	sess.Candidates = nil
}
