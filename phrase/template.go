// Package phrase renders turn outcomes into user-facing replies.
package phrase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/jobtrack/conversation"
	"github.com/hupe1980/jobtrack/core"
)

// Template is the deterministic phraser. It is also the fallback whenever a
// model backed phraser fails.
type Template struct{}

var _ core.Phraser = Template{}

// Phrase implements core.Phraser.
func (Template) Phrase(_ context.Context, o core.Outcome) (string, error) {
	return Render(o), nil
}

// Render returns the reply for o. Jobs are described by title, company and
// status only.
func Render(o core.Outcome) string {
	switch o.Action {
	case core.ActionJobsCreated:
		return created(o)
	case core.ActionAwaitingSlots:
		return awaitingSlots(o)
	case core.ActionStatusUpdated:
		return batch(o, "Updated", "update")
	case core.ActionJobsDeleted:
		return batch(o, "Removed", "remove")
	case core.ActionJobsListed:
		return listed(o)
	case core.ActionSmallTalk:
		return "Got it! I'm here to help with your job search. Want to add a job, update a status, or see your applications? ✨"
	case core.ActionRefused:
		return "I can't help with that. I can show your applications, add a new job, or update a status instead ✨"
	case core.ActionCancelled:
		return "Okay, cancelled. Nothing was changed."
	case core.ActionValidation:
		return validation(o)
	case core.ActionRephrase:
		return "I had trouble understanding that just now. Could you rephrase? For example: 'I applied to Stripe as a Backend Engineer' or 'show my jobs'."
	case core.ActionClarify:
		return clarify(o)
	default:
		return "How can I help with your applications? Try 'show my jobs' or share a job title and company ✨"
	}
}

func created(o core.Outcome) string {
	var b strings.Builder
	var ok []core.ItemResult
	for _, it := range o.Items {
		if it.State == core.ItemApplied && it.Job != nil {
			ok = append(ok, it)
		}
	}
	switch len(ok) {
	case 0:
	case 1:
		fmt.Fprintf(&b, "I've added your application for %s at %s to your tracking list.", ok[0].Job.Title, ok[0].Job.Company)
	default:
		fmt.Fprintf(&b, "I've added %d applications to your tracking list:", len(ok))
		for i, it := range ok {
			fmt.Fprintf(&b, "\n%d. %s", i+1, jobLine(*it.Job))
		}
	}
	for _, it := range o.Items {
		if it.State == core.ItemWriteFailed {
			line(&b, fmt.Sprintf("I couldn't save the %s application right now. Please try again.", it.Company))
		}
	}
	if b.Len() == 0 {
		return "I encountered an issue while adding your job. Please try again."
	}
	return b.String()
}

func awaitingSlots(o core.Outcome) string {
	var b strings.Builder
	if k := o.Known; k != nil {
		if len(k.Companies) > 0 {
			fmt.Fprintf(&b, "Company: %s\n", strings.Join(k.Companies, ", "))
		}
		if k.JobTitle != "" {
			fmt.Fprintf(&b, "Job Title: %s\n", k.JobTitle)
		}
		if k.Status != "" {
			fmt.Fprintf(&b, "Status: %s\n", k.Status)
		}
		if k.Link != "" {
			fmt.Fprintf(&b, "Link: %s\n", k.Link)
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "Could you share the %s? Just a quick phrase is perfect ✨", fieldNames(o.Missing))
	return b.String()
}

func batch(o core.Outcome, done, verb string) string {
	var b strings.Builder
	for _, it := range o.Items {
		switch it.State {
		case core.ItemApplied:
			if it.Job == nil {
				continue
			}
			if o.Action == core.ActionStatusUpdated {
				line(&b, fmt.Sprintf("%s %s at %s to %s.", done, it.Job.Title, it.Job.Company, it.Job.Status))
			} else {
				line(&b, fmt.Sprintf("%s %s at %s.", done, it.Job.Title, it.Job.Company))
			}
		case core.ItemNotFound:
			line(&b, fmt.Sprintf("I couldn't find an application for %s.", it.Company))
		case core.ItemWriteFailed:
			line(&b, fmt.Sprintf("I couldn't %s %s right now. Please try again.", verb, it.Company))
		}
	}
	if len(o.Candidates) > 0 {
		line(&b, "I found several matching applications. Which one did you mean?")
		for _, c := range o.Candidates {
			fmt.Fprintf(&b, "\n%d. %s", c.Ordinal, c.Label)
		}
		b.WriteString("\nReply with a number, or say cancel.")
	}
	if b.Len() == 0 {
		return "Nothing matched, so nothing was changed."
	}
	return b.String()
}

func listed(o core.Outcome) string {
	if o.Failure == core.FailureWrite {
		return "I couldn't load your applications right now. Please try again."
	}
	if len(o.Jobs) == 0 {
		if o.Status != "" {
			return fmt.Sprintf("You have no applications with status %s yet.", o.Status)
		}
		return "You have no tracked applications yet. Share a job title and company to add one ✨"
	}
	var b strings.Builder
	b.WriteString("Here are your applications:")
	for i, j := range o.Jobs {
		fmt.Fprintf(&b, "\n%d. %s", i+1, jobLine(j))
		if j.Link != "" {
			fmt.Fprintf(&b, "\n   Link: %s", j.Link)
		}
	}
	if s := summary(o.Summary); s != "" {
		fmt.Fprintf(&b, "\n\n%s", s)
	}
	return b.String()
}

func validation(o core.Outcome) string {
	if p, ok := core.Problems(o.Problems).Find("status"); ok {
		return fmt.Sprintf("%q isn't a status I track. Use one of: %s.", p.Value, statusList())
	}
	return fmt.Sprintf("What's the new status? Use one of: %s.", statusList())
}

func clarify(o core.Outcome) string {
	for _, m := range o.Missing {
		if m == conversation.FieldCompany {
			return "Which company is this about?"
		}
	}
	return "I'm not sure what you'd like me to do. Could you please clarify? Are you adding a new job, updating a status, or looking for something else?"
}

func jobLine(j core.JobView) string {
	return fmt.Sprintf("%s - %s [%s]", j.Title, j.Company, j.Status)
}

func summary(counts map[core.Status]int) string {
	if len(counts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(counts))
	for _, st := range core.Statuses() {
		if n := counts[st]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, st))
		}
	}
	return "Summary: " + strings.Join(parts, ", ")
}

func fieldNames(fields []string) string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, strings.ReplaceAll(f, "_", " "))
	}
	sort.Strings(names)
	return strings.Join(names, " and ")
}

func statusList() string {
	names := make([]string, 0, len(core.Statuses()))
	for _, st := range core.Statuses() {
		names = append(names, string(st))
	}
	return strings.Join(names, ", ")
}

func line(b *strings.Builder, s string) {
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(s)
}
