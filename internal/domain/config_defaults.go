package domain

import (
	"time"
)

const DefaultStepTimeout = 5 * time.Minute

func DefaultConfig() *Config {
	return &Config{
		Registry: DefaultRegistryConfig(),
		Runner:   DefaultRunnerConfig(),
		Assembly: AssemblyConfig{},
	}
}

func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{}
}

func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		DefaultTimeout:    DefaultStepTimeout,
		DefaultEntrypoint: "run.py",
		Interpreters: map[string]string{
			"python": "python3",
			"node":   "node",
			"sh":     "sh",
		},
	}
}
