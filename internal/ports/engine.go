package ports

import (
	"context"

	"github.com/eleven-am/orchestra/internal/domain"
)

// WorkflowEngine drives a workflow definition from validation to a terminal
// report. Execute returns the report in both outcomes; on failure the error
// is a *domain.ValidationError or *domain.RunError.
type WorkflowEngine interface {
	Validate(def *domain.WorkflowDefinition) []domain.ValidationIssue
	Execute(ctx context.Context, def *domain.WorkflowDefinition) (*domain.RunReport, error)
}
