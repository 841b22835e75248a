package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/eleven-am/orchestra/internal/domain"
	"github.com/eleven-am/orchestra/internal/xjson"
)

const diagnosticLimit = 4096

// pipeGrace bounds how long Run waits for the stdout/stderr pipes to close
// after the node exits or the deadline lapses. Without it a grandchild that
// inherits the pipes (a forked helper, a daemon) keeps Run blocked for its
// entire lifetime, ignoring the step deadline.
const pipeGrace = 2 * time.Second

// ProcessRunner executes a node as a child process: the resolved input
// document is written to stdin as one JSON text, one JSON document is read
// back from stdout. Everything that can go wrong - spawn failure, non-zero
// exit, malformed output, deadline - comes back as a *domain.NodeFailure.
type ProcessRunner struct {
	nodesDir string
	config   domain.RunnerConfig
	logger   *slog.Logger
}

func NewProcessRunner(nodesDir string, config domain.RunnerConfig, logger *slog.Logger) *ProcessRunner {
	if logger == nil {
		logger = slog.Default()
	}

	return &ProcessRunner{
		nodesDir: nodesDir,
		config:   config,
		logger:   logger.With("component", "process-runner"),
	}
}

func (p *ProcessRunner) Run(ctx context.Context, schema *domain.NodeSchema, input map[string]interface{}) (map[string]interface{}, error) {
	entrypoint := schema.Entrypoint
	if entrypoint == "" {
		entrypoint = p.config.DefaultEntrypoint
	}

	nodeDir := filepath.Join(p.nodesDir, schema.Name)
	script := filepath.Join(nodeDir, entrypoint)

	payload, err := xjson.Marshal(input)
	if err != nil {
		return nil, &domain.NodeFailure{
			Node:    schema.Name,
			Kind:    domain.FailureSpawn,
			Message: "cannot serialize input document: " + err.Error(),
		}
	}

	var cmd *exec.Cmd
	if interpreter := p.config.Interpreters[schema.Language]; interpreter != "" {
		cmd = exec.CommandContext(ctx, interpreter, script)
	} else {
		cmd = exec.CommandContext(ctx, script)
	}
	cmd.Dir = nodeDir
	cmd.Stdin = bytes.NewReader(payload)
	cmd.WaitDelay = pipeGrace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	p.logger.Debug("invoking node",
		"node_name", schema.Name,
		"entrypoint", script,
		"input_bytes", len(payload),
	)

	started := time.Now()
	runErr := cmd.Run()
	duration := time.Since(started)

	// A node that exited cleanly keeps its output even when the deadline
	// lapsed during the final moments, or when a descendant held the pipes
	// open past the grace period.
	if errors.Is(runErr, exec.ErrWaitDelay) {
		runErr = nil
	}

	if runErr != nil && ctx.Err() != nil {
		p.logger.Error("node invocation timed out",
			"node_name", schema.Name,
			"duration", duration,
		)
		return nil, &domain.NodeFailure{
			Node:       schema.Name,
			Kind:       domain.FailureTimeout,
			Message:    fmt.Sprintf("node did not complete within deadline (ran %s)", duration.Round(time.Millisecond)),
			Diagnostic: truncate(stderr.String()),
		}
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			p.logger.Error("node exited abnormally",
				"node_name", schema.Name,
				"exit_code", exitErr.ExitCode(),
				"duration", duration,
			)
			return nil, &domain.NodeFailure{
				Node:       schema.Name,
				Kind:       domain.FailureExit,
				Message:    fmt.Sprintf("node exited with status %d", exitErr.ExitCode()),
				Diagnostic: truncate(stderr.String()),
			}
		}

		p.logger.Error("node could not be started",
			"node_name", schema.Name,
			"error", runErr.Error(),
		)
		return nil, &domain.NodeFailure{
			Node:    schema.Name,
			Kind:    domain.FailureSpawn,
			Message: runErr.Error(),
		}
	}

	var output map[string]interface{}
	if err := xjson.Unmarshal(stdout.Bytes(), &output); err != nil {
		p.logger.Error("node produced malformed output",
			"node_name", schema.Name,
			"output_bytes", stdout.Len(),
		)
		return nil, &domain.NodeFailure{
			Node:       schema.Name,
			Kind:       domain.FailureMalformedOutput,
			Message:    "node output is not a JSON document: " + err.Error(),
			Diagnostic: truncate(stdout.String()),
		}
	}

	p.logger.Debug("node completed",
		"node_name", schema.Name,
		"duration", duration,
		"output_fields", len(output),
	)

	return output, nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > diagnosticLimit {
		return s[:diagnosticLimit]
	}
	return s
}
