// Package matcher resolves company mentions against an owner's stored job
// records. It only reads from the record store.
package matcher

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/normalize"
)

// Kind classifies the result of matching one company mention.
type Kind int

const (
	// NotFound means no record matched.
	NotFound Kind = iota
	// Unique means exactly one record was selected.
	Unique
	// Ambiguous means several records remain and the user has to choose.
	Ambiguous
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Unique:
		return "unique"
	case Ambiguous:
		return "ambiguous"
	default:
		return "not_found"
	}
}

// Result is the match of one company mention.
type Result struct {
	Company    string
	Kind       Kind
	Candidates []core.Candidate
}

// Strategy decides whether a stored company loosely matches a mention.
// Both arguments are comparison keys (see normalize.Key).
type Strategy func(queryKey, companyKey string) bool

// Substring matches when either compact key contains the other. Keys shorter
// than two characters never match loosely.
func Substring() Strategy {
	return func(q, c string) bool {
		q, c = normalize.Compact(q), normalize.Compact(c)
		if len(q) < 2 || len(c) < 2 {
			return false
		}
		return strings.Contains(c, q) || strings.Contains(q, c)
	}
}

// TokenSet matches when the Jaccard similarity of the key tokens is at
// least threshold.
func TokenSet(threshold float64) Strategy {
	return func(q, c string) bool {
		return jaccard(strings.Fields(q), strings.Fields(c)) >= threshold
	}
}

// Fuzzy matches when the mention is a character subsequence of the stored
// company (sahilm/fuzzy). Mentions shorter than three characters never match.
func Fuzzy() Strategy {
	return func(q, c string) bool {
		q, c = normalize.Compact(q), normalize.Compact(c)
		if len(q) < 3 {
			return false
		}
		return len(fuzzy.Find(q, []string{c})) > 0
	}
}

// ParseStrategy maps a configuration name onto a strategy.
func ParseStrategy(name string, threshold float64) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "substring":
		return Substring(), nil
	case "tokenset", "token_set":
		if threshold <= 0 || threshold > 1 {
			threshold = 0.5
		}
		return TokenSet(threshold), nil
	case "fuzzy":
		return Fuzzy(), nil
	default:
		return nil, fmt.Errorf("unknown match strategy %q", name)
	}
}

// Options configure a Matcher.
type Options struct {
	// Strategy is the loose comparison used when no key matches exactly.
	Strategy Strategy
}

// Matcher matches company mentions against stored records.
type Matcher struct {
	store core.RecordStore
	opts  Options
}

// New creates a matcher reading from store.
func New(store core.RecordStore, optFns ...func(o *Options)) *Matcher {
	opts := Options{Strategy: Substring()}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Strategy == nil {
		opts.Strategy = Substring()
	}
	return &Matcher{store: store, opts: opts}
}

// Match lists the owner's records once and resolves every company against
// them. title, when set, ranks multiple candidates by token overlap.
func (m *Matcher) Match(ctx context.Context, ownerID string, companies []string, title string) ([]Result, error) {
	jobs, err := m.store.ListJobs(ctx, ownerID, core.JobFilter{})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	results := make([]Result, 0, len(companies))
	for _, c := range companies {
		results = append(results, m.Resolve(jobs, c, title))
	}
	return results, nil
}

// Resolve matches one company against jobs.
func (m *Matcher) Resolve(jobs []core.Job, company, title string) Result {
	matched := m.matching(jobs, normalize.Key(company))
	res := Result{Company: company}

	cands := make([]core.Candidate, len(matched))
	for i, j := range matched {
		cands[i] = core.CandidateFromJob(j)
	}

	switch {
	case len(cands) == 0:
		res.Kind = NotFound
	case len(cands) == 1:
		res.Kind = Unique
		res.Candidates = cands
	default:
		res.Kind, res.Candidates = rank(cands, title)
	}
	return res
}

// Filter keeps the jobs matching any of companies. Without companies every
// job is kept.
func (m *Matcher) Filter(jobs []core.Job, companies []string) []core.Job {
	if len(companies) == 0 {
		return jobs
	}
	seen := make(map[string]struct{})
	var out []core.Job
	for _, c := range companies {
		for _, j := range m.matching(jobs, normalize.Key(c)) {
			if _, dup := seen[j.ID]; dup {
				continue
			}
			seen[j.ID] = struct{}{}
			out = append(out, j)
		}
	}
	return out
}

// matching returns exact key matches when there are any, loose matches otherwise.
func (m *Matcher) matching(jobs []core.Job, key string) []core.Job {
	if key == "" {
		return nil
	}
	var exact, loose []core.Job
	compact := normalize.Compact(key)
	for _, j := range jobs {
		jk := normalize.Key(j.CompanyName)
		switch {
		case normalize.Compact(jk) == compact:
			exact = append(exact, j)
		case m.opts.Strategy(key, jk):
			loose = append(loose, j)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return loose
}

// rank orders candidates by title overlap. A strictly best candidate is
// selected alone.
func rank(cands []core.Candidate, title string) (Kind, []core.Candidate) {
	want := normalize.Tokens(title)
	if len(want) == 0 {
		return Ambiguous, cands
	}
	for i := range cands {
		cands[i].Score = jaccard(want, normalize.Tokens(cands[i].JobTitle))
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Score > cands[j].Score })
	if cands[0].Score > 0 && cands[0].Score > cands[1].Score {
		return Unique, cands[:1]
	}
	return Ambiguous, cands
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	union := len(set)
	inter := 0
	seen := make(map[string]struct{}, len(b))
	for _, t := range b {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}
