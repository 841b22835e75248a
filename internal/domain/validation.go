package domain

import (
	"fmt"
)

type IssueKind string

const (
	IssueUnknownNode          IssueKind = "unknown_node"
	IssueMissingRequiredInput IssueKind = "missing_required_input"
	IssueForwardReference     IssueKind = "forward_reference"
	IssueTypeMismatch         IssueKind = "type_mismatch"
	IssueDuplicateStepName    IssueKind = "duplicate_step_name"
	IssueMalformedStep        IssueKind = "malformed_step"
	IssueUnknownSource        IssueKind = "unknown_source"
	IssueBadAssembly          IssueKind = "bad_assembly"
)

// ValidationIssue is one static check failure. Validation collects the full
// list rather than stopping at the first.
type ValidationIssue struct {
	Kind     IssueKind `json:"kind"`
	Step     string    `json:"step"`
	Position int       `json:"position"`
	Field    string    `json:"field,omitempty"`
	Message  string    `json:"message"`
}

func (i ValidationIssue) String() string {
	if i.Field != "" {
		return fmt.Sprintf("step %q (#%d) %s [%s]: %s", i.Step, i.Position, i.Field, i.Kind, i.Message)
	}
	return fmt.Sprintf("step %q (#%d) [%s]: %s", i.Step, i.Position, i.Kind, i.Message)
}
