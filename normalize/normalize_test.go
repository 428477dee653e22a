package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/jobtrack/core"
)

func TestKey(t *testing.T) {
	tests := map[string]string{
		"Tesla, Inc.":       "tesla",
		"  OpenAI  LLC ":    "openai",
		"x.AI":              "x ai",
		"Johnson & Johnson": "johnson and johnson",
		"Co":                "co",
		"Acme Holdings Co":  "acme holdings",
	}
	for in, want := range tests {
		assert.Equal(t, want, Key(in), in)
	}
	assert.Equal(t, "xai", Compact(Key("x.AI")))
}

func TestCompanyAndTitle(t *testing.T) {
	assert.Equal(t, "Tesla", Company(`  "Tesla".`))
	assert.Equal(t, "Senior Software Engineer", Title("Senior   Software Engineer!"))
}

func TestStatus(t *testing.T) {
	st, err := Status("")
	require.NoError(t, err)
	assert.Equal(t, core.Status(""), st)

	st, err = Status("Interview")
	require.NoError(t, err)
	assert.Equal(t, core.StatusInterview, st)

	_, err = Status("ghosted")
	assert.ErrorIs(t, err, core.ErrUnknownStatus)
}

func TestLink(t *testing.T) {
	got, err := Link("www.example.com/jobs/1")
	require.NoError(t, err)
	assert.Equal(t, "https://www.example.com/jobs/1", got)

	got, err = Link("http://jobs.example.com/x")
	require.NoError(t, err)
	assert.Equal(t, "http://jobs.example.com/x", got)

	for _, bad := range []string{"example", "ftp://example.com", "https://"} {
		_, err := Link(bad)
		assert.ErrorIs(t, err, core.ErrInvalidLink, bad)
	}
}

func TestEntities(t *testing.T) {
	ents, problems := Entities(core.RawEntities{
		JobTitle:  " SWE ",
		Companies: []string{"Tesla", "tesla inc", "xAI", " "},
		Status:    "passed",
		Link:      "not a link",
	})

	assert.Equal(t, "SWE", ents.JobTitle)
	assert.Equal(t, []string{"Tesla", "xAI"}, ents.Companies)
	assert.Equal(t, core.Status(""), ents.Status)
	assert.Empty(t, ents.Link)

	require.Len(t, problems, 2)
	p, ok := problems.Find("status")
	require.True(t, ok)
	assert.Equal(t, core.ProblemUnknownStatus, p.Kind)
	p, ok = problems.Find("link")
	require.True(t, ok)
	assert.Equal(t, core.ProblemInvalidLink, p.Kind)
}
