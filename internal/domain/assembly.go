package domain

import (
	"fmt"

	"github.com/eleven-am/orchestra/internal/xjson"
)

type AssemblyAction string

const (
	ActionSelectIndex       AssemblyAction = "select_index"
	ActionSelectRandom      AssemblyAction = "select_random"
	ActionExtract           AssemblyAction = "extract"
	ActionFilter            AssemblyAction = "filter"
	ActionTransform         AssemblyAction = "transform"
	ActionIntelligentSelect AssemblyAction = "intelligent_select"
)

type TransformMode string

const (
	TransformFlatten    TransformMode = "flatten"
	TransformRenameKeys TransformMode = "rename_keys"
)

// AssemblyOp declares one derived value. From names the field of the source
// step's output the operation reads; Extract optionally projects a single
// field out of a selected element. The string shorthand "field" is sugar
// for {"action": "extract", "from": "field"}.
type AssemblyOp struct {
	Action  AssemblyAction `json:"action"`
	From    string         `json:"from,omitempty"`
	Index   *int           `json:"index,omitempty"`
	Extract string         `json:"extract,omitempty"`

	// filter predicate: Field equals/contains a value
	Field    string      `json:"field,omitempty"`
	Equals   interface{} `json:"equals,omitempty"`
	Contains string      `json:"contains,omitempty"`

	// transform parameters
	Mode   TransformMode     `json:"mode,omitempty"`
	Rename map[string]string `json:"rename,omitempty"`

	// intelligent_select parameters
	Criteria string `json:"criteria,omitempty"`

	// select_random seed for reproducible runs
	Seed *int64 `json:"seed,omitempty"`
}

func (op *AssemblyOp) UnmarshalJSON(data []byte) error {
	var shorthand string
	if err := xjson.Unmarshal(data, &shorthand); err == nil {
		*op = AssemblyOp{Action: ActionExtract, From: shorthand}
		return nil
	}

	type alias AssemblyOp
	var full alias
	if err := xjson.Unmarshal(data, &full); err != nil {
		return err
	}
	*op = AssemblyOp(full)
	return nil
}

// Validate checks the declaration shape; value-dependent failures (index out
// of range, missing fields) only surface at apply time.
func (op AssemblyOp) Validate(output string) error {
	switch op.Action {
	case ActionSelectIndex, ActionSelectRandom, ActionExtract:
		if op.From == "" {
			return NewBadOperationError(output, op.Action, "missing 'from' field")
		}
	case ActionFilter:
		if op.From == "" {
			return NewBadOperationError(output, op.Action, "missing 'from' field")
		}
		if op.Field == "" {
			return NewBadOperationError(output, op.Action, "filter requires a 'field' predicate")
		}
		if op.Equals == nil && op.Contains == "" {
			return NewBadOperationError(output, op.Action, "filter requires 'equals' or 'contains'")
		}
	case ActionTransform:
		if op.From == "" {
			return NewBadOperationError(output, op.Action, "missing 'from' field")
		}
		switch op.Mode {
		case TransformFlatten:
		case TransformRenameKeys:
			if len(op.Rename) == 0 {
				return NewBadOperationError(output, op.Action, "rename_keys requires a 'rename' mapping")
			}
		default:
			return NewBadOperationError(output, op.Action, fmt.Sprintf("unknown transform mode %q", op.Mode))
		}
	case ActionIntelligentSelect:
		if op.From == "" {
			return NewBadOperationError(output, op.Action, "missing 'from' field")
		}
		if op.Criteria == "" {
			return NewBadOperationError(output, op.Action, "intelligent_select requires 'criteria'")
		}
	default:
		return NewBadOperationError(output, op.Action, "unknown assembly action")
	}
	return nil
}
