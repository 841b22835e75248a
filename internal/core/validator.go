package core

import (
	"fmt"
	"log/slog"

	"github.com/eleven-am/orchestra/internal/domain"
	"github.com/eleven-am/orchestra/internal/ports"
)

// Validator statically checks a workflow before anything runs: every node
// exists, every required input is supplied, every reference points strictly
// backwards, literal values fit the declared types, and step names are
// unique. It collects the complete issue list instead of stopping at the
// first problem; any issue at all means the engine refuses to start.
type Validator struct {
	registry ports.SchemaRegistry
	logger   *slog.Logger
}

func NewValidator(registry ports.SchemaRegistry, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Validator{
		registry: registry,
		logger:   logger.With("component", "validator"),
	}
}

func (v *Validator) Validate(def *domain.WorkflowDefinition) []domain.ValidationIssue {
	var issues []domain.ValidationIssue

	if def == nil || len(def.Steps) == 0 {
		return append(issues, domain.ValidationIssue{
			Kind:    domain.IssueMalformedStep,
			Message: "workflow must contain a non-empty steps array",
		})
	}

	// first declaration position of each step name, for ordering checks
	positions := make(map[string]int, len(def.Steps))
	for i, step := range def.Steps {
		name := step.EffectiveName(i)
		if _, seen := positions[name]; seen {
			issues = append(issues, domain.ValidationIssue{
				Kind:     domain.IssueDuplicateStepName,
				Step:     name,
				Position: i,
				Message:  fmt.Sprintf("step name %q already used by an earlier step", name),
			})
			continue
		}
		positions[name] = i
	}

	for i, step := range def.Steps {
		name := step.EffectiveName(i)

		switch step.Kind() {
		case domain.StepKindNode:
			issues = append(issues, v.validateNodeStep(name, i, step, positions)...)
		case domain.StepKindAssembly:
			issues = append(issues, v.validateAssemblyStep(name, i, step, positions)...)
		default:
			issues = append(issues, domain.ValidationIssue{
				Kind:     domain.IssueMalformedStep,
				Step:     name,
				Position: i,
				Message:  "step must contain exactly one of 'node' or 'assembly'",
			})
		}
	}

	if len(issues) > 0 {
		v.logger.Debug("workflow validation failed",
			"workflow", def.Name,
			"issues", len(issues),
		)
	}

	return issues
}

func (v *Validator) validateNodeStep(name string, position int, step domain.Step, positions map[string]int) []domain.ValidationIssue {
	var issues []domain.ValidationIssue

	schema, err := v.registry.GetSchema(step.Node)
	if err != nil {
		issues = append(issues, domain.ValidationIssue{
			Kind:     domain.IssueUnknownNode,
			Step:     name,
			Position: position,
			Message:  fmt.Sprintf("node %q is not registered", step.Node),
		})
	}

	if schema != nil {
		for _, required := range schema.InputSchema.Required {
			if _, ok := step.Inputs[required]; ok {
				continue
			}
			if _, ok := schema.Defaults[required]; ok {
				continue
			}
			issues = append(issues, domain.ValidationIssue{
				Kind:     domain.IssueMissingRequiredInput,
				Step:     name,
				Position: position,
				Field:    required,
				Message:  fmt.Sprintf("schema %q requires input %q", schema.Name, required),
			})
		}

		issues = append(issues, v.checkLiteralTypes(name, position, step.Inputs, schema)...)
	}

	issues = append(issues, v.checkReferences(name, position, step.Inputs, positions)...)

	return issues
}

func (v *Validator) validateAssemblyStep(name string, position int, step domain.Step, positions map[string]int) []domain.ValidationIssue {
	var issues []domain.ValidationIssue

	if step.Source == "" {
		issues = append(issues, domain.ValidationIssue{
			Kind:     domain.IssueBadAssembly,
			Step:     name,
			Position: position,
			Message:  "assembly step requires a 'source' step name",
		})
	} else if sourcePos, ok := positions[step.Source]; !ok {
		issues = append(issues, domain.ValidationIssue{
			Kind:     domain.IssueUnknownSource,
			Step:     name,
			Position: position,
			Message:  fmt.Sprintf("assembly source %q is not a step in this workflow", step.Source),
		})
	} else if sourcePos >= position {
		issues = append(issues, domain.ValidationIssue{
			Kind:     domain.IssueForwardReference,
			Step:     name,
			Position: position,
			Message:  fmt.Sprintf("assembly source %q executes at position %d, not before this step", step.Source, sourcePos),
		})
	}

	for output, op := range step.Assembly {
		if err := op.Validate(output); err != nil {
			issues = append(issues, domain.ValidationIssue{
				Kind:     domain.IssueBadAssembly,
				Step:     name,
				Position: position,
				Field:    output,
				Message:  err.Error(),
			})
		}
	}

	return issues
}

// checkReferences walks every string in the input template and verifies
// each reference names a step that executes strictly earlier. Only backward
// references are legal; self-references count as forward.
func (v *Validator) checkReferences(name string, position int, value interface{}, positions map[string]int) []domain.ValidationIssue {
	var issues []domain.ValidationIssue

	for _, ref := range collectReferences(value) {
		sourcePos, known := positions[ref.Source]
		if !known {
			issues = append(issues, domain.ValidationIssue{
				Kind:     domain.IssueUnknownSource,
				Step:     name,
				Position: position,
				Message:  fmt.Sprintf("reference {{%s}} names %q, which is not a step in this workflow", ref.Raw, ref.Source),
			})
			continue
		}
		if sourcePos >= position {
			issues = append(issues, domain.ValidationIssue{
				Kind:     domain.IssueForwardReference,
				Step:     name,
				Position: position,
				Message:  fmt.Sprintf("reference {{%s}} names step %q at position %d; only earlier steps may be referenced", ref.Raw, ref.Source, sourcePos),
			})
		}
	}

	return issues
}

// checkLiteralTypes compares statically known literals against declared
// field types. Values containing references are only checkable at
// resolution time and are skipped here.
func (v *Validator) checkLiteralTypes(name string, position int, inputs map[string]interface{}, schema *domain.NodeSchema) []domain.ValidationIssue {
	var issues []domain.ValidationIssue

	for field, value := range inputs {
		declared, ok := schema.FieldType(field)
		if !ok {
			continue
		}
		if containsReference(value) {
			continue
		}
		if !domain.MatchesFieldType(declared, value) {
			issues = append(issues, domain.ValidationIssue{
				Kind:     domain.IssueTypeMismatch,
				Step:     name,
				Position: position,
				Field:    field,
				Message:  fmt.Sprintf("literal is %s, schema declares %s", domain.KindOf(value), declared),
			})
		}
	}

	return issues
}

func collectReferences(value interface{}) []*domain.Reference {
	var refs []*domain.Reference

	switch v := value.(type) {
	case string:
		for _, match := range domain.ScanReferences(v) {
			refs = append(refs, match.Ref)
		}
	case map[string]interface{}:
		for _, elem := range v {
			refs = append(refs, collectReferences(elem)...)
		}
	case []interface{}:
		for _, elem := range v {
			refs = append(refs, collectReferences(elem)...)
		}
	}

	return refs
}

func containsReference(value interface{}) bool {
	return len(collectReferences(value)) > 0
}
