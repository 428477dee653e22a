package core

import "strings"

// Intent is the closed set of operations a message can resolve to.
type Intent string

const (
	// IntentNewJob records a new application.
	IntentNewJob Intent = "NEW_JOB"
	// IntentStatusUpdate changes the status of existing applications.
	IntentStatusUpdate Intent = "STATUS_UPDATE"
	// IntentJobSearch lists or filters tracked applications.
	IntentJobSearch Intent = "JOB_SEARCH"
	// IntentJobDelete removes tracked applications.
	IntentJobDelete Intent = "JOB_DELETE"
	// IntentSmallTalk is casual chat that gets redirected.
	IntentSmallTalk Intent = "SMALL_TALK"
	// IntentUnsafe is refused without matching or writes.
	IntentUnsafe Intent = "UNSAFE"
	// IntentUnknown asks the user to clarify or rephrase.
	IntentUnknown Intent = "UNKNOWN"
)

// Intents returns every intent in declaration order.
func Intents() []Intent {
	return []Intent{
		IntentNewJob,
		IntentStatusUpdate,
		IntentJobSearch,
		IntentJobDelete,
		IntentSmallTalk,
		IntentUnsafe,
		IntentUnknown,
	}
}

// ParseIntent maps a provider label onto the closed intent set. Separators
// and case are ignored ("status-update", "StatusUpdate").
func ParseIntent(s string) (Intent, bool) {
	want := compactLabel(s)
	for _, in := range Intents() {
		if compactLabel(string(in)) == want {
			return in, true
		}
	}
	return IntentUnknown, false
}

func compactLabel(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}

// Source identifies which classifier produced a classification.
type Source string

const (
	// SourceRule marks zero-cost lexical classifications.
	SourceRule Source = "RULE"
	// SourceModel marks classifications from the reasoning provider.
	SourceModel Source = "MODEL"
)

// Classification is the result of one classification pass over a message.
type Classification struct {
	Intent     Intent      `json:"intent"`
	Confidence float64     `json:"confidence"`
	Source     Source      `json:"source"`
	Entities   RawEntities `json:"entities"`
	Unsafe     bool        `json:"is_unsafe"`
	SmallTalk  bool        `json:"is_small_talk"`

	// Degraded is set when the provider failed and the intent fell back to
	// UNKNOWN. Cause holds the last failure.
	Degraded bool  `json:"degraded,omitempty"`
	Cause    error `json:"-"`
}

// Unknown returns a degraded classification carrying cause.
func Unknown(source Source, cause error) Classification {
	return Classification{Intent: IntentUnknown, Source: source, Degraded: cause != nil, Cause: cause}
}
