package phrase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/model"
)

func view(title, company string, st core.Status) *core.JobView {
	return &core.JobView{Title: title, Company: company, Status: st}
}

func TestRender_Created(t *testing.T) {
	out := Render(core.Outcome{Action: core.ActionJobsCreated, Items: []core.ItemResult{
		{Company: "Tesla", State: core.ItemApplied, Job: view("SWE", "Tesla", core.StatusApplied)},
	}})
	assert.Equal(t, "I've added your application for SWE at Tesla to your tracking list.", out)

	out = Render(core.Outcome{Action: core.ActionJobsCreated, Items: []core.ItemResult{
		{Company: "Tesla", State: core.ItemApplied, Job: view("SWE", "Tesla", core.StatusApplied)},
		{Company: "xAI", State: core.ItemWriteFailed},
	}})
	assert.Contains(t, out, "SWE at Tesla")
	assert.Contains(t, out, "couldn't save the xAI application")
}

func TestRender_AwaitingSlots(t *testing.T) {
	out := Render(core.Outcome{
		Action:  core.ActionAwaitingSlots,
		Missing: []string{"job_title"},
		Known:   &core.SlotsView{Companies: []string{"Tesla"}},
	})
	assert.Equal(t, "Company: Tesla\n\nCould you share the job title? Just a quick phrase is perfect ✨", out)
}

func TestRender_BatchWithCandidates(t *testing.T) {
	out := Render(core.Outcome{
		Action: core.ActionStatusUpdated,
		Items: []core.ItemResult{
			{Company: "xAI", State: core.ItemApplied, Job: view("PM", "xAI", core.StatusOffer)},
			{Company: "Google", State: core.ItemNotFound},
			{Company: "Stripe", State: core.ItemAmbiguous},
		},
		Candidates: core.CandidateViews([]core.Candidate{
			{RecordID: "secret-1", JobTitle: "Backend", CompanyName: "Stripe", Status: core.StatusApplied},
			{RecordID: "secret-2", JobTitle: "Frontend", CompanyName: "Stripe", Status: core.StatusApplied},
		}),
		Pending: core.ModeAwaitingSelection,
	})
	assert.Contains(t, out, "Updated PM at xAI to offer.")
	assert.Contains(t, out, "couldn't find an application for Google")
	assert.Contains(t, out, "1. Backend at Stripe (applied)")
	assert.Contains(t, out, "2. Frontend at Stripe (applied)")
	assert.NotContains(t, out, "secret-")
}

func TestRender_Listed(t *testing.T) {
	out := Render(core.Outcome{
		Action: core.ActionJobsListed,
		Jobs: []core.JobView{
			{Title: "SWE", Company: "Tesla", Status: core.StatusInterview, Link: "https://t.example/1"},
			{Title: "PM", Company: "xAI", Status: core.StatusApplied},
		},
		Summary: map[core.Status]int{core.StatusInterview: 1, core.StatusApplied: 1},
	})
	lines := strings.Split(out, "\n")
	assert.Equal(t, "1. SWE - Tesla [interview]", lines[1])
	assert.Equal(t, "   Link: https://t.example/1", lines[2])
	assert.Contains(t, out, "Summary: 1 applied, 1 interview")

	assert.Contains(t, Render(core.Outcome{Action: core.ActionJobsListed}), "no tracked applications")
	assert.Contains(t, Render(core.Outcome{Action: core.ActionJobsListed, Failure: core.FailureWrite}), "couldn't load")
}

func TestRender_Validation(t *testing.T) {
	out := Render(core.Outcome{
		Action:   core.ActionValidation,
		Problems: []core.FieldProblem{{Field: "status", Value: "ghosted", Kind: core.ProblemUnknownStatus}},
	})
	assert.Contains(t, out, `"ghosted" isn't a status I track`)
}

func TestModelPhraser(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.SetHandler(func(_ context.Context, req model.Request) (string, error) {
		if strings.Contains(req.LastUserText(), `"action":"small_talk"`) {
			return "Hey! Want to add a job? ✨", nil
		}
		return "", errors.New("unexpected")
	})

	p := NewModelPhraser(m)
	text, err := p.Phrase(context.Background(), core.Outcome{Action: core.ActionSmallTalk})
	require.NoError(t, err)
	assert.Equal(t, "Hey! Want to add a job? ✨", text)

	limited := NewModelPhraser(m, func(o *ModelOptions) { o.Actions = []core.Action{core.ActionJobsListed} })
	_, err = limited.Phrase(context.Background(), core.Outcome{Action: core.ActionSmallTalk})
	assert.ErrorIs(t, err, ErrSkipped)
}

func TestFallback(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.SetHandler(func(context.Context, model.Request) (string, error) { return "", errors.New("down") })

	text, err := Fallback{Primary: NewModelPhraser(m)}.Phrase(context.Background(), core.Outcome{Action: core.ActionCancelled})
	require.NoError(t, err)
	assert.Equal(t, "Okay, cancelled. Nothing was changed.", text)
}
