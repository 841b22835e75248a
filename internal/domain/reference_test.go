package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReference_FieldAndIndexSegments(t *testing.T) {
	ref, err := ParseReference("a.articles[0].url")
	require.NoError(t, err)

	assert.Equal(t, "a", ref.Source)
	require.Len(t, ref.Path, 3)
	assert.Equal(t, PathSegment{Field: "articles"}, ref.Path[0])
	assert.Equal(t, PathSegment{Index: 0, IsIndex: true}, ref.Path[1])
	assert.Equal(t, PathSegment{Field: "url"}, ref.Path[2])
}

func TestParseReference_NumericSegmentIsAlwaysIndex(t *testing.T) {
	ref, err := ParseReference("step.items.2")
	require.NoError(t, err)

	require.Len(t, ref.Path, 2)
	assert.True(t, ref.Path[1].IsIndex)
	assert.Equal(t, 2, ref.Path[1].Index)
}

func TestParseReference_BareSourceAddressesWholeOutput(t *testing.T) {
	ref, err := ParseReference("scraper")
	require.NoError(t, err)

	assert.Equal(t, "scraper", ref.Source)
	assert.Empty(t, ref.Path)
}

func TestParseReference_Invalid(t *testing.T) {
	cases := []string{
		"",
		".field",
		"a..b",
		"a.items[",
		"a.items[x]",
		"a b",
		"42",
	}

	for _, expr := range cases {
		_, err := ParseReference(expr)
		assert.Error(t, err, "expression %q should not parse", expr)
	}
}

func TestFullReference(t *testing.T) {
	ref, ok := FullReference("{{pick.picked}}")
	require.True(t, ok)
	assert.Equal(t, "pick", ref.Source)

	_, ok = FullReference("prefix {{pick.picked}}")
	assert.False(t, ok)

	_, ok = FullReference("{{pick.picked}} suffix")
	assert.False(t, ok)

	_, ok = FullReference("{{not valid}}")
	assert.False(t, ok)
}

func TestScanReferences_SkipsMalformedBracePairs(t *testing.T) {
	matches := ScanReferences("x {{a.b}} y {{not valid}} z {{c[1]}}")

	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].Ref.Source)
	assert.Equal(t, "c", matches[1].Ref.Source)
}

func TestResolveReference_NestedPath(t *testing.T) {
	results := NewExecutionResults()
	require.NoError(t, results.Record("a", map[string]interface{}{
		"articles": []interface{}{
			map[string]interface{}{"url": "http://x"},
		},
	}))

	ref, err := ParseReference("a.articles[0].url")
	require.NoError(t, err)

	value, err := ResolveReference(ref, results)
	require.NoError(t, err)
	assert.Equal(t, "http://x", value)
}

func TestResolveReference_IndexOutOfRange(t *testing.T) {
	results := NewExecutionResults()
	require.NoError(t, results.Record("a", map[string]interface{}{
		"articles": []interface{}{
			map[string]interface{}{"url": "http://x"},
		},
	}))

	ref, err := ParseReference("a.articles[5].url")
	require.NoError(t, err)

	_, err = ResolveReference(ref, results)
	assert.True(t, IsPathResolution(err))
}

func TestResolveReference_UnknownSourceStep(t *testing.T) {
	results := NewExecutionResults()

	ref, err := ParseReference("missing.field")
	require.NoError(t, err)

	_, err = ResolveReference(ref, results)
	assert.True(t, IsUnresolvedReference(err))
}

func TestResolveReference_MissingObjectKey(t *testing.T) {
	results := NewExecutionResults()
	require.NoError(t, results.Record("a", map[string]interface{}{"present": true}))

	ref, err := ParseReference("a.absent")
	require.NoError(t, err)

	_, err = ResolveReference(ref, results)
	assert.True(t, IsPathResolution(err))
}

func TestResolveReference_IndexIntoObjectFails(t *testing.T) {
	results := NewExecutionResults()
	require.NoError(t, results.Record("a", map[string]interface{}{
		"data": map[string]interface{}{"0": "zero"},
	}))

	// numeric segments are indices by fixed rule, even over objects
	ref, err := ParseReference("a.data[0]")
	require.NoError(t, err)

	_, err = ResolveReference(ref, results)
	assert.True(t, IsPathResolution(err))
}
