package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/eleven-am/orchestra/internal/domain"
	"github.com/eleven-am/orchestra/internal/ports"
)

// Engine drives one workflow from validation to a terminal report. Steps
// execute strictly in declared order: each step's input may depend on any
// earlier output and forward references are rejected up front, so there is
// no parallelism to exploit inside a single run. The engine itself holds no
// cross-run state; independent workflows may execute concurrently against
// the same registry.
type Engine struct {
	registry  ports.SchemaRegistry
	runner    ports.NodeRunner
	resolver  *Resolver
	assembler *Assembler
	validator *Validator
	config    *domain.Config
	logger    *slog.Logger
}

var _ ports.WorkflowEngine = (*Engine)(nil)

func NewEngine(registry ports.SchemaRegistry, runner ports.NodeRunner, chooser ports.Chooser, config *domain.Config) *Engine {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		registry:  registry,
		runner:    runner,
		resolver:  NewResolver(logger),
		assembler: NewAssembler(chooser, config.Assembly, logger),
		validator: NewValidator(registry, logger),
		config:    config,
		logger:    logger.With("component", "engine"),
	}
}

func (e *Engine) Validate(def *domain.WorkflowDefinition) []domain.ValidationIssue {
	return e.validator.Validate(def)
}

// Execute runs the state machine Pending -> Validating -> Running(i) ->
// Completed | Failed. Validation failures never reach execution; any
// runtime error aborts at the failing step, and results recorded before it
// are preserved in the report as diagnostics, never as success.
func (e *Engine) Execute(ctx context.Context, def *domain.WorkflowDefinition) (*domain.RunReport, error) {
	report := &domain.RunReport{
		RunID:     uuid.NewString(),
		Workflow:  def.Name,
		Status:    domain.RunStatusPending,
		StartedAt: time.Now(),
	}

	logger := e.logger.With("run_id", report.RunID, "workflow", def.Name)
	logger.Debug("starting workflow run", "steps", len(def.Steps))

	report.Status = domain.RunStatusValidating
	if issues := e.validator.Validate(def); len(issues) > 0 {
		report.Status = domain.RunStatusFailed
		report.Issues = issues
		report.FailureKind = "validation"
		report.Message = fmt.Sprintf("workflow rejected with %d validation issue(s)", len(issues))
		report.CompletedAt = time.Now()

		logger.Error("workflow rejected by validation", "issues", len(issues))
		return report, &domain.ValidationError{Issues: issues}
	}

	results := domain.NewExecutionResults()
	report.Status = domain.RunStatusRunning

	for i, step := range def.Steps {
		name := step.EffectiveName(i)
		stepLogger := logger.With("step", name, "position", i)

		started := time.Now()
		output, err := e.executeStep(ctx, step, results, stepLogger)
		duration := time.Since(started)

		stepReport := domain.StepReport{
			Name:       name,
			Kind:       step.Kind(),
			Status:     domain.StepStatusCompleted,
			StartedAt:  started,
			DurationMS: duration.Milliseconds(),
		}

		if err != nil {
			stepReport.Status = domain.StepStatusFailed
			report.Steps = append(report.Steps, stepReport)

			kind := classifyFailure(err)
			report.Status = domain.RunStatusFailed
			report.FailedStep = name
			report.FailureKind = kind
			report.Message = err.Error()
			report.PartialResults = results.Snapshot()
			report.CompletedAt = time.Now()

			stepLogger.Error("step failed - aborting run",
				"failure_kind", kind,
				"duration", duration,
				"error", err.Error(),
			)
			return report, domain.NewRunError(report.RunID, name, kind, err)
		}

		if err := results.Record(name, output); err != nil {
			// validation guarantees unique names; reaching this is a bug
			report.Status = domain.RunStatusFailed
			report.FailedStep = name
			report.FailureKind = "internal"
			report.Message = err.Error()
			report.PartialResults = results.Snapshot()
			report.CompletedAt = time.Now()
			return report, domain.NewRunError(report.RunID, name, "internal", err)
		}

		report.Steps = append(report.Steps, stepReport)
		stepLogger.Debug("step completed", "duration", duration)
	}

	report.Status = domain.RunStatusCompleted
	report.Results = results.Snapshot()
	report.CompletedAt = time.Now()

	logger.Debug("workflow run completed",
		"steps", len(def.Steps),
		"duration", report.CompletedAt.Sub(report.StartedAt),
	)

	return report, nil
}

func (e *Engine) executeStep(ctx context.Context, step domain.Step, results *domain.ExecutionResults, logger *slog.Logger) (map[string]interface{}, error) {
	timeout := e.config.Runner.DefaultTimeout
	if step.TimeoutSeconds > 0 {
		timeout = time.Duration(step.TimeoutSeconds) * time.Second
	}

	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch step.Kind() {
	case domain.StepKindNode:
		return e.executeNodeStep(stepCtx, step, results, logger)
	case domain.StepKindAssembly:
		return e.executeAssemblyStep(stepCtx, step, results)
	default:
		return nil, domain.NewDefinitionError("step is neither a node nor an assembly step", nil)
	}
}

func (e *Engine) executeNodeStep(ctx context.Context, step domain.Step, results *domain.ExecutionResults, logger *slog.Logger) (map[string]interface{}, error) {
	schema, err := e.registry.GetSchema(step.Node)
	if err != nil {
		return nil, err
	}

	resolved, err := e.resolver.ResolveDocument(step.Inputs, results)
	if err != nil {
		return nil, err
	}

	input, err := domain.MergeDefaults(resolved, schema.Defaults)
	if err != nil {
		return nil, err
	}

	logger.Debug("invoking node",
		"node_name", schema.Name,
		"input_fields", len(input),
	)

	return e.runner.Run(ctx, schema, input)
}

func (e *Engine) executeAssemblyStep(ctx context.Context, step domain.Step, results *domain.ExecutionResults) (map[string]interface{}, error) {
	sourceValue, ok := results.Lookup(step.Source)
	if !ok {
		return nil, domain.NewUnresolvedReferenceError(step.Source, step.Source, results.StepNames())
	}

	source, ok := sourceValue.(map[string]interface{})
	if !ok {
		return nil, domain.NewDefinitionError(
			fmt.Sprintf("assembly source %q produced a %s, not an object", step.Source, domain.KindOf(sourceValue)), nil)
	}

	return e.assembler.Apply(ctx, step.Assembly, source)
}

func classifyFailure(err error) string {
	if failure, ok := domain.AsNodeFailure(err); ok {
		return "node_" + string(failure.Kind)
	}

	var assemblyErr *domain.AssemblyError
	if errors.As(err, &assemblyErr) {
		return "assembly_" + string(assemblyErr.Kind)
	}

	switch {
	case domain.IsUnresolvedReference(err):
		return "unresolved_reference"
	case domain.IsPathResolution(err):
		return "path_resolution"
	case domain.IsNotFound(err):
		return "unknown_node"
	default:
		return "internal"
	}
}
