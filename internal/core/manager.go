package core

import (
	"context"
	"log/slog"

	"github.com/eleven-am/orchestra/internal/adapters/registry"
	"github.com/eleven-am/orchestra/internal/adapters/runner"
	"github.com/eleven-am/orchestra/internal/domain"
	"github.com/eleven-am/orchestra/internal/ports"
)

// Manager wires the registry, runner and engine together behind one handle.
// Configure it fully (schemas, chooser, custom runner) before starting runs;
// after that it is safe for concurrent use.
type Manager struct {
	config   *domain.Config
	registry *registry.Adapter
	runner   ports.NodeRunner
	chooser  ports.Chooser
	logger   *slog.Logger
}

func NewManager(config *domain.Config) (*Manager, error) {
	if config == nil {
		config = domain.DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	reg := registry.NewAdapter(config.Logger)
	if config.Registry.NodesDir != "" {
		if err := registry.LoadDirectory(reg, config.Registry.NodesDir, config.Logger); err != nil {
			return nil, err
		}
	}

	return &Manager{
		config:   config,
		registry: reg,
		runner:   runner.NewProcessRunner(config.Registry.NodesDir, config.Runner, config.Logger),
		logger:   config.Logger,
	}, nil
}

// RegisterSchema adds a node schema programmatically, alongside any
// directory-discovered ones.
func (m *Manager) RegisterSchema(schema *domain.NodeSchema) error {
	return m.registry.Register(schema)
}

func (m *Manager) ListSchemas() []*domain.NodeSchema {
	return m.registry.ListSchemas()
}

func (m *Manager) GetSchema(name string) (*domain.NodeSchema, error) {
	return m.registry.GetSchema(name)
}

// UseChooser injects the decision capability behind intelligent_select.
func (m *Manager) UseChooser(chooser ports.Chooser) {
	m.chooser = chooser
}

// UseRunner replaces the process runner, e.g. with an in-process fake.
func (m *Manager) UseRunner(r ports.NodeRunner) {
	m.runner = r
}

func (m *Manager) engine() ports.WorkflowEngine {
	return NewEngine(m.registry, m.runner, m.chooser, m.config)
}

func (m *Manager) ValidateWorkflow(def *domain.WorkflowDefinition) []domain.ValidationIssue {
	return m.engine().Validate(def)
}

func (m *Manager) RunWorkflow(ctx context.Context, def *domain.WorkflowDefinition) (*domain.RunReport, error) {
	return m.engine().Execute(ctx, def)
}

func (m *Manager) RunWorkflowJSON(ctx context.Context, data []byte) (*domain.RunReport, error) {
	def, err := domain.ParseWorkflow(data)
	if err != nil {
		return nil, err
	}
	return m.RunWorkflow(ctx, def)
}

func (m *Manager) ValidateWorkflowJSON(data []byte) ([]domain.ValidationIssue, error) {
	def, err := domain.ParseWorkflow(data)
	if err != nil {
		return nil, err
	}
	return m.ValidateWorkflow(def), nil
}
