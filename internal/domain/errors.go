package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidDefinition = errors.New("invalid workflow definition")
	ErrNoChooser         = errors.New("no chooser configured")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

type DefinitionError struct {
	Message string
	Err     error
}

func (e *DefinitionError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DefinitionError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidDefinition
}

func NewDefinitionError(message string, err error) *DefinitionError {
	return &DefinitionError{Message: message, Err: err}
}

type SchemaNotFoundError struct {
	Node string
}

func (e *SchemaNotFoundError) Error() string {
	return "node schema not found: " + e.Node
}

func (e *SchemaNotFoundError) Unwrap() error {
	return ErrNotFound
}

func NewSchemaNotFoundError(node string) *SchemaNotFoundError {
	return &SchemaNotFoundError{Node: node}
}

// UnresolvedReferenceError means a reference names a source step with no
// recorded output. It aborts the run at the referencing step.
type UnresolvedReferenceError struct {
	Expression string
	Source     string
	Available  []string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("reference {{%s}} names step %q which has no recorded output (available: %s)",
		e.Expression, e.Source, strings.Join(e.Available, ", "))
}

func NewUnresolvedReferenceError(expression, source string, available []string) *UnresolvedReferenceError {
	return &UnresolvedReferenceError{Expression: expression, Source: source, Available: available}
}

func IsUnresolvedReference(err error) bool {
	var target *UnresolvedReferenceError
	return errors.As(err, &target)
}

// PathResolutionError means a reference's source step exists but one of its
// path segments does not apply to the traversed value.
type PathResolutionError struct {
	Expression string
	Segment    string
	Reason     string
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("reference {{%s}}: segment %s: %s", e.Expression, e.Segment, e.Reason)
}

func NewPathResolutionError(expression, segment, reason string) *PathResolutionError {
	return &PathResolutionError{Expression: expression, Segment: segment, Reason: reason}
}

func IsPathResolution(err error) bool {
	var target *PathResolutionError
	return errors.As(err, &target)
}

type AssemblyErrorKind string

const (
	AssemblyIndexOutOfRange AssemblyErrorKind = "index_out_of_range"
	AssemblyMissingField    AssemblyErrorKind = "missing_field"
	AssemblySelection       AssemblyErrorKind = "selection"
	AssemblyBadSource       AssemblyErrorKind = "bad_source"
	AssemblyBadOperation    AssemblyErrorKind = "bad_operation"
)

// AssemblyError covers every failure of an assembly operation. Output is the
// derived field being assembled, Action the operation that failed.
type AssemblyError struct {
	Kind    AssemblyErrorKind
	Output  string
	Action  AssemblyAction
	Message string
	Err     error
}

func (e *AssemblyError) Error() string {
	msg := fmt.Sprintf("assembly %s[%s]: %s", e.Output, e.Action, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}

func NewIndexOutOfRangeError(output string, index, length int) *AssemblyError {
	return &AssemblyError{
		Kind:    AssemblyIndexOutOfRange,
		Output:  output,
		Action:  ActionSelectIndex,
		Message: fmt.Sprintf("index %d out of range for array of length %d", index, length),
	}
}

func NewMissingFieldError(output string, action AssemblyAction, field string) *AssemblyError {
	return &AssemblyError{
		Kind:    AssemblyMissingField,
		Output:  output,
		Action:  action,
		Message: fmt.Sprintf("field %q not present in source", field),
	}
}

func NewSelectionError(output, criteria string, err error) *AssemblyError {
	return &AssemblyError{
		Kind:    AssemblySelection,
		Output:  output,
		Action:  ActionIntelligentSelect,
		Message: fmt.Sprintf("chooser could not decide for criteria %q", criteria),
		Err:     err,
	}
}

func NewBadSourceError(output string, action AssemblyAction, message string) *AssemblyError {
	return &AssemblyError{Kind: AssemblyBadSource, Output: output, Action: action, Message: message}
}

func NewBadOperationError(output string, action AssemblyAction, message string) *AssemblyError {
	return &AssemblyError{Kind: AssemblyBadOperation, Output: output, Action: action, Message: message}
}

func assemblyErrorKind(err error, kind AssemblyErrorKind) bool {
	var target *AssemblyError
	return errors.As(err, &target) && target.Kind == kind
}

func IsIndexOutOfRange(err error) bool {
	return assemblyErrorKind(err, AssemblyIndexOutOfRange)
}

func IsMissingField(err error) bool {
	return assemblyErrorKind(err, AssemblyMissingField)
}

func IsSelectionError(err error) bool {
	return assemblyErrorKind(err, AssemblySelection)
}

type FailureKind string

const (
	FailureSpawn           FailureKind = "spawn"
	FailureExit            FailureKind = "exit"
	FailureMalformedOutput FailureKind = "malformed_output"
	FailureTimeout         FailureKind = "timeout"
)

// NodeFailure is the structured outcome of an invoked node that did not
// produce a valid output document. The runner never lets a node crash
// surface as anything else.
type NodeFailure struct {
	Node       string
	Kind       FailureKind
	Message    string
	Diagnostic string
}

func (e *NodeFailure) Error() string {
	return fmt.Sprintf("node %s failed (%s): %s", e.Node, e.Kind, e.Message)
}

func AsNodeFailure(err error) (*NodeFailure, bool) {
	var target *NodeFailure
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

func IsNodeTimeout(err error) bool {
	failure, ok := AsNodeFailure(err)
	return ok && failure.Kind == FailureTimeout
}

// ValidationError carries the complete issue list produced before execution.
// The engine fails closed: no step runs when this is returned.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.String()
	}
	return fmt.Sprintf("workflow validation failed with %d issue(s): %s",
		len(e.Issues), strings.Join(msgs, "; "))
}

func AsValidationError(err error) (*ValidationError, bool) {
	var target *ValidationError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// RunError is the single structured failure a run terminates with. Step
// names the failing step, Kind classifies the cause.
type RunError struct {
	RunID string
	Step  string
	Kind  string
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("workflow run %s failed at step %q (%s): %v", e.RunID, e.Step, e.Kind, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func NewRunError(runID, step, kind string, err error) *RunError {
	return &RunError{RunID: runID, Step: step, Kind: kind, Err: err}
}
