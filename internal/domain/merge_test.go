package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDefaults_StepValuesWin(t *testing.T) {
	merged, err := MergeDefaults(
		map[string]interface{}{"region": "GB:en", "query": "ai"},
		map[string]interface{}{"region": "US:en", "period": "d"},
	)
	require.NoError(t, err)

	assert.Equal(t, "GB:en", merged["region"])
	assert.Equal(t, "ai", merged["query"])
	assert.Equal(t, "d", merged["period"])
}

func TestMergeDefaults_NilInputs(t *testing.T) {
	merged, err := MergeDefaults(nil, map[string]interface{}{"period": "d"})
	require.NoError(t, err)
	assert.Equal(t, "d", merged["period"])

	merged, err = MergeDefaults(nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, merged)
	assert.Empty(t, merged)
}

func TestMergeDefaults_DoesNotMutateArguments(t *testing.T) {
	inputs := map[string]interface{}{"query": "ai"}
	defaults := map[string]interface{}{"period": "d"}

	_, err := MergeDefaults(inputs, defaults)
	require.NoError(t, err)

	assert.Len(t, inputs, 1)
	assert.Len(t, defaults, 1)
}
