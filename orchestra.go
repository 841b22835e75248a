// Package orchestra executes declarative, multi-step automation workflows by
// invoking independent, stateless node programs and piping structured data
// between them.
//
// A workflow is an ordered sequence of steps. Node steps invoke an external
// executable with a JSON document on stdin and read one JSON document back
// from stdout; assembly steps derive new values from an earlier step's
// output (selection, extraction, filtering, structural transforms, or a
// delegated "intelligent" choice). Steps reference earlier outputs with
// {{step.field[index].subfield}} expressions, which are validated before
// execution and resolved just before each step runs.
//
// Basic usage:
//
//	config := orchestra.DefaultConfig().WithNodesDir("./nodes")
//	manager, err := orchestra.New(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := manager.RunWorkflowJSON(context.Background(), workflowJSON)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Results)
package orchestra

import (
	"github.com/eleven-am/orchestra/internal/core"
	"github.com/eleven-am/orchestra/internal/domain"
	"github.com/eleven-am/orchestra/internal/ports"
)

// Manager is the main handle: it owns the schema registry, the node runner
// and the execution engine.
type Manager = core.Manager

// WorkflowDefinition is an ordered, immutable sequence of steps.
type WorkflowDefinition = domain.WorkflowDefinition

// Step is one entry in a workflow: a node invocation or an assembly
// transformation.
type Step = domain.Step

// AssemblyOp declares one derived value inside an assembly step.
type AssemblyOp = domain.AssemblyOp

// NodeSchema describes a node's identity, executable contract and
// input/output field surface.
type NodeSchema = domain.NodeSchema

// InputSchema lists a node's required and optional input fields with
// optional per-field type tags.
type InputSchema = domain.InputSchema

// RunReport is a run's terminal result: complete step outputs on success, a
// single attributed failure (with partial results) otherwise.
type RunReport = domain.RunReport

// StepReport records timing metadata for one executed step.
type StepReport = domain.StepReport

// ValidationIssue is one static check failure; validation returns the full
// list.
type ValidationIssue = domain.ValidationIssue

// NodeFailure is the structured outcome of a node invocation that crashed,
// produced malformed output, or timed out.
type NodeFailure = domain.NodeFailure

// RunError is the structured failure a run terminates with, naming the
// failing step and the cause.
type RunError = domain.RunError

// ValidationError carries the complete issue list for a rejected workflow.
type ValidationError = domain.ValidationError

// Chooser is the injected decision capability behind intelligent_select.
type Chooser = ports.Chooser

// NodeRunner invokes one node with a resolved input document.
type NodeRunner = ports.NodeRunner

// SchemaRegistry exposes the node schemas available to workflows.
type SchemaRegistry = ports.SchemaRegistry

// Run status values reported by RunReport.Status.
const (
	RunStatusPending    = domain.RunStatusPending
	RunStatusValidating = domain.RunStatusValidating
	RunStatusRunning    = domain.RunStatusRunning
	RunStatusCompleted  = domain.RunStatusCompleted
	RunStatusFailed     = domain.RunStatusFailed
)

// New creates a manager from the given configuration, discovering node
// schemas from the configured nodes directory when one is set.
func New(config *Config) (*Manager, error) {
	return core.NewManager(config)
}

// ParseWorkflow decodes a workflow JSON document and fills in defaulted
// step names.
func ParseWorkflow(data []byte) (*WorkflowDefinition, error) {
	return domain.ParseWorkflow(data)
}

// AsNodeFailure extracts the structured node failure from a run error, when
// that is what aborted the run.
func AsNodeFailure(err error) (*NodeFailure, bool) {
	return domain.AsNodeFailure(err)
}

// AsValidationError extracts the issue list from a rejected run's error.
func AsValidationError(err error) (*ValidationError, bool) {
	return domain.AsValidationError(err)
}
