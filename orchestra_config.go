package orchestra

import (
	"log/slog"
	"time"

	"github.com/eleven-am/orchestra/internal/domain"
)

type Config = domain.Config

type RegistryConfig = domain.RegistryConfig

type RunnerConfig = domain.RunnerConfig

type AssemblyConfig = domain.AssemblyConfig

// DefaultStepTimeout bounds a node invocation unless the step or the
// configuration overrides it.
const DefaultStepTimeout = domain.DefaultStepTimeout

func DefaultConfig() *Config {
	return domain.DefaultConfig()
}

func DefaultRunnerConfig() RunnerConfig {
	return domain.DefaultRunnerConfig()
}

type ConfigBuilder struct {
	config *Config
}

func NewConfigBuilder(nodesDir string) *ConfigBuilder {
	config := DefaultConfig()
	config.Registry.NodesDir = nodesDir
	return &ConfigBuilder{config: config}
}

func (cb *ConfigBuilder) WithStepTimeout(timeout time.Duration) *ConfigBuilder {
	cb.config.WithStepTimeout(timeout)
	return cb
}

func (cb *ConfigBuilder) WithSeed(seed int64) *ConfigBuilder {
	cb.config.WithSeed(seed)
	return cb
}

func (cb *ConfigBuilder) WithLogger(logger *slog.Logger) *ConfigBuilder {
	cb.config.WithLogger(logger)
	return cb
}

func (cb *ConfigBuilder) WithInterpreter(language, command string) *ConfigBuilder {
	if cb.config.Runner.Interpreters == nil {
		cb.config.Runner.Interpreters = map[string]string{}
	}
	cb.config.Runner.Interpreters[language] = command
	return cb
}

func (cb *ConfigBuilder) Build() *Config {
	return cb.config
}
