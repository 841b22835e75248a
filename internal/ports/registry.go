package ports

import (
	"github.com/eleven-am/orchestra/internal/domain"
)

// SchemaRegistry exposes the node schemas available to a workflow. It is
// populated before execution starts and read-only afterwards, so concurrent
// runs may read it without coordination.
type SchemaRegistry interface {
	Register(schema *domain.NodeSchema) error
	GetSchema(name string) (*domain.NodeSchema, error)
	ListSchemas() []*domain.NodeSchema
	HasSchema(name string) bool
}

type SchemaRegistrationError struct {
	Node   string
	Reason string
}

func (e *SchemaRegistrationError) Error() string {
	return "cannot register schema " + e.Node + ": " + e.Reason
}
