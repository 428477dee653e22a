// Package rules classifies messages that match unambiguous lexical patterns
// without calling the reasoning provider.
package rules

import (
	"regexp"
	"strings"

	"github.com/hupe1980/jobtrack/core"
)

// Confidence is reported for every rule match.
const Confidence = 0.99

var (
	searchPattern = regexp.MustCompile(`^(?:please\s+)?(?:show|list|view|display|see)\s+(?:me\s+)?(?:all\s+)?(?:of\s+)?(?:my\s+)?(?:(applied|interview|offer|rejected|withdrawn)\s+)?(?:jobs?|applications?|apps)(?:\s+please)?$`)

	smallTalkPattern = regexp.MustCompile(`^(?:hi|hey|hello|yo|sup|hiya|howdy|good (?:morning|afternoon|evening)|thanks|thank you|thx|ty|cheers|ok|okay|cool|nice|bye|goodbye)(?: there)?(?: (?:so much|a lot))?$`)

	selectionPattern = regexp.MustCompile(`^(?:#\s*)?\d+(?:st|nd|rd|th)?$|^(?:the\s+)?(?:first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth|last)(?:\s+one)?$`)

	trailingPunct = regexp.MustCompile(`[\s.!?,;:]+$`)
	spaces        = regexp.MustCompile(`\s+`)
)

// unsafePattern matches requests for internals or instruction bypasses on
// word boundaries. Every alternative names an internal on its own.
var unsafePattern = regexp.MustCompile(`(?:^|\W)(?:` + strings.Join([]string{
	`api[ _-]?keys?`,
	`(?:access|auth|bearer|api) tokens?`,
	`env(?:ironment)? var(?:iable)?s?`, `\.env`,
	`service[ _]role`, `service keys?`,
	`database[ _]url`, `connection strings?`,
	`(?:internal|record|user|job)[ _]ids?`, `uuids?`,
	`system prompt`, `your (?:prompt|instructions)`,
	`ignore (?:all |your |the )?(?:previous |prior )?instructions`,
	`jailbreak`, `developer mode`,
}, "|") + `)(?:$|\W)`)

// secretRequestPattern matches nouns that also occur in company or role
// names ("Secret Escapes", "Credentials Engineer") only as the object of a
// request, with nothing but determiners in between.
var secretRequestPattern = regexp.MustCompile(`(?:^|\W)(?:give|show|tell|send|print|reveal|share|display|dump|leak|expose|list|what(?:'s| is| are)|where(?:'s| is| are))` +
	`(?:\s+(?:me|us|your|my|the|a|an|all|our|its|any|stored|saved|admin))*` +
	`\s+(?:passwords?|passwd|secrets?|credentials?|tokens?)(?:$|\W)`)

// Normalize lowercases text, trims trailing punctuation and collapses whitespace.
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = trailingPunct.ReplaceAllString(s, "")
	return spaces.ReplaceAllString(s, " ")
}

// Classify returns a classification when text matches a rule. It is pure
// and never extracts companies.
func Classify(text string) (core.Classification, bool) {
	s := Normalize(text)
	if s == "" {
		return core.Classification{}, false
	}

	if unsafePattern.MatchString(s) || secretRequestPattern.MatchString(s) {
		return match(core.IntentUnsafe, func(c *core.Classification) { c.Unsafe = true }), true
	}

	if m := searchPattern.FindStringSubmatch(s); m != nil {
		return match(core.IntentJobSearch, func(c *core.Classification) { c.Entities.Status = m[1] }), true
	}

	if smallTalkPattern.MatchString(s) {
		return match(core.IntentSmallTalk, func(c *core.Classification) { c.SmallTalk = true }), true
	}

	if selectionPattern.MatchString(s) {
		return match(core.IntentUnknown, nil), true
	}

	return core.Classification{}, false
}

func match(intent core.Intent, fn func(c *core.Classification)) core.Classification {
	c := core.Classification{Intent: intent, Confidence: Confidence, Source: core.SourceRule}
	if fn != nil {
		fn(&c)
	}
	return c
}
