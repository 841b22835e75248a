package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/orchestra/internal/domain"
)

func shConfig() domain.RunnerConfig {
	return domain.RunnerConfig{
		DefaultTimeout:    time.Minute,
		DefaultEntrypoint: "run.sh",
		Interpreters:      map[string]string{"sh": "sh"},
	}
}

func writeNode(t *testing.T, nodesDir, name, script string) *domain.NodeSchema {
	t.Helper()
	nodeDir := filepath.Join(nodesDir, name)
	require.NoError(t, os.MkdirAll(nodeDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nodeDir, "run.sh"), []byte(script), 0o755))
	return &domain.NodeSchema{Name: name, Language: "sh", Entrypoint: "run.sh"}
}

func TestProcessRunner_RoundTrip(t *testing.T) {
	nodesDir := t.TempDir()
	schema := writeNode(t, nodesDir, "echoer", "#!/bin/sh\ncat\n")

	runner := NewProcessRunner(nodesDir, shConfig(), nil)
	output, err := runner.Run(context.Background(), schema, map[string]interface{}{
		"query": "ai",
		"count": 3.0,
	})
	require.NoError(t, err)

	assert.Equal(t, "ai", output["query"])
	assert.Equal(t, 3.0, output["count"])
}

func TestProcessRunner_RunsInNodeDirectory(t *testing.T) {
	nodesDir := t.TempDir()
	schema := writeNode(t, nodesDir, "pwd", "#!/bin/sh\nprintf '{\"cwd\": \"%s\"}' \"$(pwd -P)\"\n")

	runner := NewProcessRunner(nodesDir, shConfig(), nil)
	output, err := runner.Run(context.Background(), schema, map[string]interface{}{})
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(filepath.Join(nodesDir, "pwd"))
	require.NoError(t, err)
	assert.Equal(t, resolved, output["cwd"])
}

func TestProcessRunner_NonZeroExit(t *testing.T) {
	nodesDir := t.TempDir()
	schema := writeNode(t, nodesDir, "crasher", "#!/bin/sh\necho 'boom: missing credential' >&2\nexit 3\n")

	runner := NewProcessRunner(nodesDir, shConfig(), nil)
	_, err := runner.Run(context.Background(), schema, map[string]interface{}{})

	failure, ok := domain.AsNodeFailure(err)
	require.True(t, ok)
	assert.Equal(t, domain.FailureExit, failure.Kind)
	assert.Contains(t, failure.Message, "status 3")
	assert.Contains(t, failure.Diagnostic, "missing credential")
}

func TestProcessRunner_MalformedOutput(t *testing.T) {
	nodesDir := t.TempDir()
	schema := writeNode(t, nodesDir, "chatty", "#!/bin/sh\necho 'progress: 50%'\n")

	runner := NewProcessRunner(nodesDir, shConfig(), nil)
	_, err := runner.Run(context.Background(), schema, map[string]interface{}{})

	failure, ok := domain.AsNodeFailure(err)
	require.True(t, ok)
	assert.Equal(t, domain.FailureMalformedOutput, failure.Kind)
	assert.Contains(t, failure.Diagnostic, "progress")
}

func TestProcessRunner_Timeout(t *testing.T) {
	nodesDir := t.TempDir()
	schema := writeNode(t, nodesDir, "sleeper", "#!/bin/sh\nsleep 30\n")

	runner := NewProcessRunner(nodesDir, shConfig(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	started := time.Now()
	_, err := runner.Run(ctx, schema, map[string]interface{}{})

	assert.Less(t, time.Since(started), 5*time.Second, "deadline must kill the child")
	assert.True(t, domain.IsNodeTimeout(err))
}

func TestProcessRunner_TimeoutWithBackgroundedChild(t *testing.T) {
	nodesDir := t.TempDir()
	// the backgrounded sleep inherits the stdio pipes; the deadline must not
	// stretch to its lifetime
	schema := writeNode(t, nodesDir, "forker", "#!/bin/sh\nsleep 10 &\nsleep 10\n")

	runner := NewProcessRunner(nodesDir, shConfig(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	started := time.Now()
	_, err := runner.Run(ctx, schema, map[string]interface{}{})

	assert.Less(t, time.Since(started), 5*time.Second, "grandchild must not extend the wait")
	assert.True(t, domain.IsNodeTimeout(err))
}

func TestProcessRunner_CleanExitWithDanglingPipe(t *testing.T) {
	nodesDir := t.TempDir()
	schema := writeNode(t, nodesDir, "spawner", "#!/bin/sh\nprintf '{\"ok\": true}'\nsleep 5 &\nexit 0\n")

	runner := NewProcessRunner(nodesDir, shConfig(), nil)
	output, err := runner.Run(context.Background(), schema, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, true, output["ok"])
}

// lapsedContext reports an expired deadline without ever firing Done, so the
// child runs to completion while the context looks timed out at check time.
type lapsedContext struct {
	context.Context
}

func (lapsedContext) Err() error { return context.DeadlineExceeded }

func TestProcessRunner_CleanExitAtDeadlineKeepsOutput(t *testing.T) {
	nodesDir := t.TempDir()
	schema := writeNode(t, nodesDir, "racer", "#!/bin/sh\nprintf '{\"done\": true}'\n")

	runner := NewProcessRunner(nodesDir, shConfig(), nil)
	output, err := runner.Run(lapsedContext{context.Background()}, schema, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, true, output["done"])
}

func TestProcessRunner_MissingEntrypoint(t *testing.T) {
	nodesDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(nodesDir, "ghost"), 0o755))
	schema := &domain.NodeSchema{Name: "ghost", Language: "sh"}

	config := shConfig()
	runner := NewProcessRunner(nodesDir, config, nil)
	_, err := runner.Run(context.Background(), schema, map[string]interface{}{})

	failure, ok := domain.AsNodeFailure(err)
	require.True(t, ok)
	// sh reports a missing script as a non-zero exit rather than a spawn error
	assert.Contains(t, []domain.FailureKind{domain.FailureSpawn, domain.FailureExit}, failure.Kind)
}

func TestProcessRunner_DefaultEntrypoint(t *testing.T) {
	nodesDir := t.TempDir()
	nodeDir := filepath.Join(nodesDir, "plain")
	require.NoError(t, os.MkdirAll(nodeDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nodeDir, "run.sh"), []byte("#!/bin/sh\necho '{}'\n"), 0o755))

	// no entrypoint on the schema; config default applies
	schema := &domain.NodeSchema{Name: "plain", Language: "sh"}

	runner := NewProcessRunner(nodesDir, shConfig(), nil)
	output, err := runner.Run(context.Background(), schema, map[string]interface{}{})
	require.NoError(t, err)
	assert.Empty(t, output)
}
