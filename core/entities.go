package core

// RawEntities are extraction candidates as returned by a classifier. They
// are not yet validated against the closed enums or stored records.
type RawEntities struct {
	JobTitle  string   `json:"job_title,omitempty"`
	Companies []string `json:"companies,omitempty"`
	Status    string   `json:"status,omitempty"`
	Link      string   `json:"link,omitempty"`
}

// Entities are normalized extraction results. Companies keep their display
// form and are unique by comparison key.
type Entities struct {
	JobTitle  string   `json:"job_title,omitempty"`
	Companies []string `json:"companies,omitempty"`
	Status    Status   `json:"status,omitempty"`
	Link      string   `json:"link,omitempty"`
}

// Empty reports whether nothing usable was extracted.
func (e Entities) Empty() bool {
	return e.JobTitle == "" && len(e.Companies) == 0 && e.Status == "" && e.Link == ""
}

// ProblemKind classifies a per-field normalization failure.
type ProblemKind string

const (
	ProblemUnknownStatus ProblemKind = "UNKNOWN_STATUS"
	ProblemInvalidLink   ProblemKind = "INVALID_LINK"
)

// FieldProblem reports a rejected field value.
type FieldProblem struct {
	Field string      `json:"field"`
	Value string      `json:"value"`
	Kind  ProblemKind `json:"kind"`
}

// Problems is a list of field problems.
type Problems []FieldProblem

// Find returns the first problem for field.
func (p Problems) Find(field string) (FieldProblem, bool) {
	for _, fp := range p {
		if fp.Field == field {
			return fp, true
		}
	}
	return FieldProblem{}, false
}
