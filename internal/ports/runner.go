package ports

import (
	"context"

	"github.com/eleven-am/orchestra/internal/domain"
)

// NodeRunner invokes one node as an isolated unit of work: the resolved
// input document goes in, exactly one output document comes back. Any crash,
// malformed output or timeout is returned as a *domain.NodeFailure, never as
// an unstructured fault. The context carries the step's deadline; on
// cancellation the in-flight invocation is terminated.
type NodeRunner interface {
	Run(ctx context.Context, schema *domain.NodeSchema, input map[string]interface{}) (map[string]interface{}, error)
}
