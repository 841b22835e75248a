package registry

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/eleven-am/orchestra/internal/domain"
	"github.com/eleven-am/orchestra/internal/ports"
)

// Adapter is the in-memory schema registry. Registration happens during
// setup; after that it is only read, so concurrent workflow runs share it
// safely.
type Adapter struct {
	schemas map[string]*domain.NodeSchema
	mu      sync.RWMutex
	logger  *slog.Logger
}

func NewAdapter(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}

	return &Adapter{
		schemas: make(map[string]*domain.NodeSchema),
		logger:  logger.With("component", "schema-registry"),
	}
}

func (r *Adapter) Register(schema *domain.NodeSchema) error {
	if schema == nil {
		r.logger.Error("attempted to register nil schema")
		return &ports.SchemaRegistrationError{
			Node:   "<nil>",
			Reason: "schema cannot be nil",
		}
	}

	if schema.Name == "" {
		r.logger.Error("attempted to register schema with empty name")
		return &ports.SchemaRegistrationError{
			Node:   schema.Name,
			Reason: "schema name cannot be empty",
		}
	}

	if problems := schema.Validate(); len(problems) > 0 {
		r.logger.Error("attempted to register invalid schema",
			"node_name", schema.Name,
			"problems", problems,
		)
		return &ports.SchemaRegistrationError{
			Node:   schema.Name,
			Reason: problems[0],
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[schema.Name]; exists {
		r.logger.Debug("schema registration failed - already exists", "node_name", schema.Name)
		return &ports.SchemaRegistrationError{
			Node:   schema.Name,
			Reason: "schema already registered",
		}
	}

	r.schemas[schema.Name] = schema
	r.logger.Debug("schema registered", "node_name", schema.Name, "total_schemas", len(r.schemas))
	return nil
}

func (r *Adapter) GetSchema(name string) (*domain.NodeSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, exists := r.schemas[name]
	if !exists {
		r.logger.Debug("schema not found", "node_name", name)
		return nil, domain.NewSchemaNotFoundError(name)
	}

	return schema, nil
}

func (r *Adapter) ListSchemas() []*domain.NodeSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemas := make([]*domain.NodeSchema, 0, len(r.schemas))
	for _, schema := range r.schemas {
		schemas = append(schemas, schema)
	}

	sort.Slice(schemas, func(i, j int) bool {
		return schemas[i].Name < schemas[j].Name
	})

	return schemas
}

func (r *Adapter) HasSchema(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.schemas[name]
	return exists
}

func (r *Adapter) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.schemas)
}
