package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionResults_RecordRefusesOverwrite(t *testing.T) {
	results := NewExecutionResults()

	require.NoError(t, results.Record("scrape", map[string]interface{}{"n": 1.0}))
	assert.Error(t, results.Record("scrape", map[string]interface{}{"n": 2.0}))

	value, ok := results.Lookup("scrape")
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"n": 1.0}, value)
}

func TestExecutionResults_RecordCopiesValue(t *testing.T) {
	results := NewExecutionResults()

	original := map[string]interface{}{"items": []interface{}{"a"}}
	require.NoError(t, results.Record("step", original))

	original["items"].([]interface{})[0] = "mutated"

	value, _ := results.Lookup("step")
	assert.Equal(t, "a", value.(map[string]interface{})["items"].([]interface{})[0])
}

func TestExecutionResults_StepNamesInCompletionOrder(t *testing.T) {
	results := NewExecutionResults()
	require.NoError(t, results.Record("first", 1.0))
	require.NoError(t, results.Record("second", 2.0))
	require.NoError(t, results.Record("third", 3.0))

	assert.Equal(t, []string{"first", "second", "third"}, results.StepNames())
}

func TestExecutionResults_SnapshotIsDetached(t *testing.T) {
	results := NewExecutionResults()
	require.NoError(t, results.Record("step", map[string]interface{}{"k": "v"}))

	snapshot := results.Snapshot()
	snapshot["step"].(map[string]interface{})["k"] = "changed"

	value, _ := results.Lookup("step")
	assert.Equal(t, "v", value.(map[string]interface{})["k"])
}
