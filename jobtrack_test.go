package jobtrack

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/internal/testutil"
	"github.com/hupe1980/jobtrack/model"
)

const classification = `{"intent":"NEW_JOB","confidence":0.92,"companies":["Stripe"],
"job_title":"Backend Engineer","status":"","link":"","is_unsafe":false,"is_small_talk":false}`

func TestJobTrack_WithModel(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.SetHandler(func(_ context.Context, req model.Request) (string, error) {
		if req.Schema != nil {
			return classification, nil
		}
		return "Nice, Stripe is on your list now!", nil
	})

	jt := New(func(o *Options) { o.Model = m })

	reply, err := jt.Run(context.Background(),
		testutil.NewMessageBuilder("u1", "c1").Text("put the stripe backend role on my list").Build())
	require.NoError(t, err)

	assert.Equal(t, core.ActionJobsCreated, reply.Outcome.Action)
	assert.Equal(t, "Nice, Stripe is on your list now!", reply.Text)
	assert.Equal(t, 2, m.Calls())

	jobs, err := jt.Engine().Store().ListJobs(context.Background(), "u1", core.JobFilter{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Stripe", jobs[0].CompanyName)
}

func TestJobTrack_WithoutModel(t *testing.T) {
	jt := New()

	reply, err := jt.Run(context.Background(),
		testutil.NewMessageBuilder("u1", "c1").Text("show my jobs").Build())
	require.NoError(t, err)

	assert.Equal(t, core.ActionJobsListed, reply.Outcome.Action)
	assert.NotEmpty(t, reply.Text)

	turns, err := jt.Engine().History().Recent(context.Background(), core.SessionKey{OwnerID: "u1", ConversationID: "c1"}, 0)
	require.NoError(t, err)
	assert.Len(t, turns, 2)
}
