package domain

import (
	"fmt"
	"time"

	"github.com/eleven-am/orchestra/internal/xjson"
)

type StepKind string

const (
	StepKindNode     StepKind = "node"
	StepKindAssembly StepKind = "assembly"
	StepKindInvalid  StepKind = "invalid"
)

// WorkflowDefinition is an ordered sequence of steps. It is immutable once
// parsed; the engine never writes back into it.
type WorkflowDefinition struct {
	Name  string `json:"name,omitempty"`
	Steps []Step `json:"steps"`
}

// Step is either a node invocation or an assembly transformation. Exactly
// one of Node or Assembly must be set; the validator rejects anything else.
type Step struct {
	Name           string                 `json:"name,omitempty"`
	Node           string                 `json:"node,omitempty"`
	Inputs         map[string]interface{} `json:"inputs,omitempty"`
	Assembly       map[string]AssemblyOp  `json:"assembly,omitempty"`
	Source         string                 `json:"source,omitempty"`
	TimeoutSeconds int                    `json:"timeout_seconds,omitempty"`
}

func (s Step) Kind() StepKind {
	switch {
	case s.Node != "" && len(s.Assembly) == 0:
		return StepKindNode
	case s.Node == "" && len(s.Assembly) > 0:
		return StepKindAssembly
	default:
		return StepKindInvalid
	}
}

// EffectiveName is the addressing key later steps use to reference this
// step's output. Node steps default to the node name, assembly steps to
// assembly_<position+1>.
func (s Step) EffectiveName(position int) string {
	if s.Name != "" {
		return s.Name
	}
	if s.Kind() == StepKindNode {
		return s.Node
	}
	return fmt.Sprintf("assembly_%d", position+1)
}

// ParseWorkflow decodes a workflow document and fills in defaulted step
// names. Structural and semantic checks beyond "is JSON with steps" belong
// to the validator.
func ParseWorkflow(data []byte) (*WorkflowDefinition, error) {
	var def WorkflowDefinition
	if err := xjson.Unmarshal(data, &def); err != nil {
		return nil, NewDefinitionError("workflow is not valid JSON", err)
	}

	if len(def.Steps) == 0 {
		return nil, NewDefinitionError("workflow must contain a non-empty steps array", nil)
	}

	for i := range def.Steps {
		def.Steps[i].Name = def.Steps[i].EffectiveName(i)
	}

	return &def, nil
}

type RunStatus string

const (
	RunStatusPending    RunStatus = "pending"
	RunStatusValidating RunStatus = "validating"
	RunStatusRunning    RunStatus = "running"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

type StepStatus string

const (
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// StepReport records timing metadata for one executed step.
type StepReport struct {
	Name       string     `json:"name"`
	Kind       StepKind   `json:"kind"`
	Status     StepStatus `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	DurationMS int64      `json:"duration_ms"`
}

// RunReport is the engine's terminal result: either a complete mapping of
// step names to outputs, or a single attributed failure with whatever
// results had been recorded before it.
type RunReport struct {
	RunID       string                 `json:"run_id"`
	Workflow    string                 `json:"workflow,omitempty"`
	Status      RunStatus              `json:"status"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt time.Time              `json:"completed_at"`
	Steps       []StepReport           `json:"steps,omitempty"`
	Results     map[string]interface{} `json:"results,omitempty"`

	Issues         []ValidationIssue      `json:"issues,omitempty"`
	FailedStep     string                 `json:"failed_step,omitempty"`
	FailureKind    string                 `json:"failure_kind,omitempty"`
	Message        string                 `json:"message,omitempty"`
	PartialResults map[string]interface{} `json:"partial_results,omitempty"`
}
