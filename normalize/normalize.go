// Package normalize turns raw extraction candidates into canonical entity
// values. Every function is pure; failures are reported per field.
package normalize

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/hupe1980/jobtrack/core"
)

// legalSuffixes are dropped from the end of comparison keys.
var legalSuffixes = map[string]struct{}{
	"inc": {}, "incorporated": {}, "llc": {}, "ltd": {}, "limited": {},
	"corp": {}, "corporation": {}, "co": {}, "company": {}, "gmbh": {}, "plc": {}, "ag": {},
}

// Key returns the comparison key of a company name: lowercase, punctuation
// replaced by spaces, whitespace collapsed, trailing legal suffixes removed.
// A name consisting only of a suffix keeps it.
func Key(company string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(company) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '&':
			b.WriteString(" and ")
		default:
			b.WriteRune(' ')
		}
	}
	fields := strings.Fields(b.String())
	for len(fields) > 1 {
		if _, ok := legalSuffixes[fields[len(fields)-1]]; !ok {
			break
		}
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

// Compact removes the spaces of a key ("x ai" and "xai" compare equal).
func Compact(key string) string {
	return strings.ReplaceAll(key, " ", "")
}

// Tokens splits text into lowercase alphanumeric words.
func Tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Company cleans a company name for display.
func Company(raw string) string {
	return clean(raw)
}

// Title cleans a job title for display.
func Title(raw string) string {
	return clean(raw)
}

const (
	quotes   = `"'` + "`“”‘’"
	trailing = ".,;:!? "
)

func clean(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	s = strings.TrimRight(s, trailing)
	s = strings.Trim(s, quotes)
	s = strings.TrimRight(s, trailing)
	return strings.TrimSpace(s)
}

// Status maps raw onto the closed status enum. Empty input yields no status.
// Anything outside the enum is rejected, never reinterpreted.
func Status(raw string) (core.Status, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	st, ok := core.ParseStatus(raw)
	if !ok {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownStatus, raw)
	}
	return st, nil
}

// Link validates an http(s) URL. A bare "www." host gets the https scheme.
func Link(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}
	if strings.HasPrefix(strings.ToLower(s), "www.") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidLink, raw)
	}
	return u.String(), nil
}

// Entities normalizes raw extraction results. Companies keep their first
// display form and are unique by comparison key. Rejected status and link
// values are dropped and reported as problems.
func Entities(raw core.RawEntities) (core.Entities, core.Problems) {
	var (
		ents     core.Entities
		problems core.Problems
	)

	ents.JobTitle = Title(raw.JobTitle)

	seen := make(map[string]struct{}, len(raw.Companies))
	for _, c := range raw.Companies {
		name := Company(c)
		key := Key(name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		ents.Companies = append(ents.Companies, name)
	}

	st, err := Status(raw.Status)
	if err != nil {
		problems = append(problems, core.FieldProblem{Field: "status", Value: raw.Status, Kind: core.ProblemUnknownStatus})
	}
	ents.Status = st

	link, err := Link(raw.Link)
	if err != nil {
		problems = append(problems, core.FieldProblem{Field: "link", Value: raw.Link, Kind: core.ProblemInvalidLink})
	}
	ents.Link = link

	return ents, problems
}
