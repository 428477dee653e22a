package core

import (
	"fmt"
	"strings"
	"time"
)

// Status is the closed application status enum.
type Status string

const (
	StatusApplied   Status = "applied"
	StatusInterview Status = "interview"
	StatusOffer     Status = "offer"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

// Statuses returns every status in pipeline order.
func Statuses() []Status {
	return []Status{StatusApplied, StatusInterview, StatusOffer, StatusRejected, StatusWithdrawn}
}

// ParseStatus accepts only enum values (case-insensitive, trimmed).
func ParseStatus(s string) (Status, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range Statuses() {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Closed reports whether the application is finished.
func (s Status) Closed() bool { return s == StatusRejected || s == StatusWithdrawn }

// Job is a record owned by the record store. ID is opaque and must never
// reach user-facing text.
type Job struct {
	ID          string    `json:"id" db:"id"`
	OwnerID     string    `json:"user_id" db:"owner_id"`
	JobTitle    string    `json:"job_title" db:"job_title"`
	CompanyName string    `json:"company_name" db:"company_name"`
	Status      Status    `json:"status" db:"status"`
	Link        string    `json:"job_link,omitempty" db:"job_link"`
	DateAdded   time.Time `json:"date_added" db:"date_added"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// View strips the record id.
func (j Job) View() JobView {
	return JobView{Title: j.JobTitle, Company: j.CompanyName, Status: j.Status, Link: j.Link, DateAdded: j.DateAdded}
}

// Descriptor returns the id-free shape shared with the reasoning provider.
func (j Job) Descriptor() JobDescriptor {
	return JobDescriptor{Title: j.JobTitle, Company: j.CompanyName, Status: j.Status}
}

// NewJob is the input for record creation.
type NewJob struct {
	OwnerID     string
	JobTitle    string
	CompanyName string
	Status      Status
	Link        string
}

// JobFilter narrows ListJobs. Zero values mean no filter.
type JobFilter struct {
	Status Status
	Limit  int
}

// JobView is the user-facing projection of a job; it has no id field.
type JobView struct {
	Title     string    `json:"job_title"`
	Company   string    `json:"company_name"`
	Status    Status    `json:"status"`
	Link      string    `json:"job_link,omitempty"`
	DateAdded time.Time `json:"date_added,omitempty"`
}

// JobDescriptor is an open job as described to the reasoning provider.
type JobDescriptor struct {
	Title   string `json:"job_title"`
	Company string `json:"company_name"`
	Status  Status `json:"status"`
}

// Candidate is a possible match produced by one matching pass. It is kept in
// the session while a selection is pending but never exposed by id.
type Candidate struct {
	RecordID    string  `json:"record_id"`
	JobTitle    string  `json:"job_title"`
	CompanyName string  `json:"company_name"`
	Status      Status  `json:"status"`
	Score       float64 `json:"score"`
}

// CandidateFromJob copies the displayable fields of j.
func CandidateFromJob(j Job) Candidate {
	return Candidate{RecordID: j.ID, JobTitle: j.JobTitle, CompanyName: j.CompanyName, Status: j.Status}
}

// Label is the human-readable form used in numbered lists.
func (c Candidate) Label() string {
	return fmt.Sprintf("%s at %s (%s)", c.JobTitle, c.CompanyName, c.Status)
}

// View strips the record id.
func (c Candidate) View() JobView {
	return JobView{Title: c.JobTitle, Company: c.CompanyName, Status: c.Status}
}

// CandidateView is a candidate addressed by its 1-based ordinal.
type CandidateView struct {
	Ordinal int    `json:"ordinal"`
	Label   string `json:"label"`
	Title   string `json:"job_title"`
	Company string `json:"company_name"`
	Status  Status `json:"status"`
}

// CandidateViews numbers candidates starting at 1.
func CandidateViews(cands []Candidate) []CandidateView {
	views := make([]CandidateView, len(cands))
	for i, c := range cands {
		views[i] = CandidateView{Ordinal: i + 1, Label: c.Label(), Title: c.JobTitle, Company: c.CompanyName, Status: c.Status}
	}
	return views
}
