package domain

import (
	"log/slog"
	"time"
)

type Config struct {
	Logger *slog.Logger `json:"-" yaml:"-"`

	Registry RegistryConfig `json:"registry" yaml:"registry"`
	Runner   RunnerConfig   `json:"runner" yaml:"runner"`
	Assembly AssemblyConfig `json:"assembly" yaml:"assembly"`
}

type RegistryConfig struct {
	// NodesDir is the root directory scanned for <node>/config.json
	// descriptors. Empty means no directory discovery; schemas are then
	// registered programmatically.
	NodesDir string `json:"nodes_dir" yaml:"nodes_dir"`
}

type RunnerConfig struct {
	// DefaultTimeout bounds every node invocation and every
	// intelligent_select call unless the step overrides it.
	DefaultTimeout time.Duration `json:"default_timeout" yaml:"default_timeout"`

	// Interpreters maps a schema language tag to the command that runs the
	// node's entrypoint. An empty mapping for a language means the
	// entrypoint is executed directly.
	Interpreters map[string]string `json:"interpreters,omitempty" yaml:"interpreters,omitempty"`

	// DefaultEntrypoint is used when a descriptor omits one.
	DefaultEntrypoint string `json:"default_entrypoint" yaml:"default_entrypoint"`
}

type AssemblyConfig struct {
	// Seeded pins select_random to Seed for reproducible runs. Individual
	// operations may still carry their own seed.
	Seeded bool  `json:"seeded,omitempty" yaml:"seeded,omitempty"`
	Seed   int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

func (c *Config) Validate() error {
	if c.Runner.DefaultTimeout <= 0 {
		return NewDefinitionError("runner default timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) WithNodesDir(dir string) *Config {
	c.Registry.NodesDir = dir
	return c
}

func (c *Config) WithStepTimeout(timeout time.Duration) *Config {
	c.Runner.DefaultTimeout = timeout
	return c
}

func (c *Config) WithSeed(seed int64) *Config {
	c.Assembly.Seeded = true
	c.Assembly.Seed = seed
	return c
}

func (c *Config) WithLogger(logger *slog.Logger) *Config {
	c.Logger = logger
	return c
}
