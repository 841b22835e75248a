package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDescriptor(t *testing.T, dir, node, content string) {
	t.Helper()
	nodeDir := filepath.Join(dir, node)
	require.NoError(t, os.MkdirAll(nodeDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nodeDir, "config.json"), []byte(content), 0o644))
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, "scraper", `{
		"name": "scraper",
		"language": "python",
		"entrypoint": "run.py",
		"input_schema": {"required": ["query"], "optional": ["region"]},
		"output_schema": ["articles"],
		"defaults": {"region": "US:en"}
	}`)
	writeDescriptor(t, dir, "writer", `{
		"language": "node",
		"input_schema": {"required": ["topic"]}
	}`)

	adapter := NewAdapter(nil)
	require.NoError(t, LoadDirectory(adapter, dir, nil))

	assert.Equal(t, 2, adapter.Count())

	scraper, err := adapter.GetSchema("scraper")
	require.NoError(t, err)
	assert.Equal(t, "python", scraper.Language)
	assert.Equal(t, []string{"query"}, scraper.InputSchema.Required)
	assert.Equal(t, "US:en", scraper.Defaults["region"])

	// descriptor without a name inherits the directory name
	writer, err := adapter.GetSchema("writer")
	require.NoError(t, err)
	assert.Equal(t, "writer", writer.Name)
}

func TestLoadDirectory_SkipsBrokenDescriptors(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, "good", `{"name": "good", "input_schema": {"required": []}}`)
	writeDescriptor(t, dir, "broken", `{not json`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0o644))

	adapter := NewAdapter(nil)
	require.NoError(t, LoadDirectory(adapter, dir, nil))

	assert.Equal(t, 1, adapter.Count())
	assert.True(t, adapter.HasSchema("good"))
	assert.False(t, adapter.HasSchema("broken"))
}

func TestLoadDirectory_MissingRoot(t *testing.T) {
	adapter := NewAdapter(nil)
	err := LoadDirectory(adapter, filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}
