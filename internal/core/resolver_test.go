package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/orchestra/internal/domain"
)

func recordedResults(t *testing.T, steps map[string]interface{}) *domain.ExecutionResults {
	t.Helper()
	results := domain.NewExecutionResults()
	for name, value := range steps {
		require.NoError(t, results.Record(name, value))
	}
	return results
}

func TestResolver_FullReferenceKeepsNativeType(t *testing.T) {
	resolver := NewResolver(nil)
	results := recordedResults(t, map[string]interface{}{
		"scrape": map[string]interface{}{
			"articles": []interface{}{
				map[string]interface{}{"url": "http://x"},
			},
			"count": 3.0,
		},
	})

	resolved, err := resolver.ResolveDocument(map[string]interface{}{
		"list":  "{{scrape.articles}}",
		"first": "{{scrape.articles[0]}}",
		"url":   "{{scrape.articles[0].url}}",
		"n":     "{{scrape.count}}",
	}, results)
	require.NoError(t, err)

	assert.IsType(t, []interface{}{}, resolved["list"])
	assert.IsType(t, map[string]interface{}{}, resolved["first"])
	assert.Equal(t, "http://x", resolved["url"])
	assert.Equal(t, 3.0, resolved["n"])
}

func TestResolver_EmbeddedReferenceInterpolates(t *testing.T) {
	resolver := NewResolver(nil)
	results := recordedResults(t, map[string]interface{}{
		"scrape": map[string]interface{}{"topic": "fusion", "count": 3.0},
	})

	resolved, err := resolver.ResolveDocument(map[string]interface{}{
		"prompt": "write about {{scrape.topic}} using {{scrape.count}} sources",
	}, results)
	require.NoError(t, err)

	assert.Equal(t, "write about fusion using 3 sources", resolved["prompt"])
}

func TestResolver_NestedDocuments(t *testing.T) {
	resolver := NewResolver(nil)
	results := recordedResults(t, map[string]interface{}{
		"a": map[string]interface{}{"v": "inner"},
	})

	resolved, err := resolver.ResolveDocument(map[string]interface{}{
		"outer": map[string]interface{}{
			"list": []interface{}{"{{a.v}}", "literal"},
		},
	}, results)
	require.NoError(t, err)

	list := resolved["outer"].(map[string]interface{})["list"].([]interface{})
	assert.Equal(t, "inner", list[0])
	assert.Equal(t, "literal", list[1])
}

func TestResolver_UnknownStepFails(t *testing.T) {
	resolver := NewResolver(nil)

	_, err := resolver.ResolveDocument(map[string]interface{}{
		"v": "{{missing.field}}",
	}, domain.NewExecutionResults())

	assert.True(t, domain.IsUnresolvedReference(err))
}

func TestResolver_BadPathFails(t *testing.T) {
	resolver := NewResolver(nil)
	results := recordedResults(t, map[string]interface{}{
		"a": map[string]interface{}{"articles": []interface{}{}},
	})

	_, err := resolver.ResolveDocument(map[string]interface{}{
		"v": "{{a.articles[5].url}}",
	}, results)

	assert.True(t, domain.IsPathResolution(err))
}

func TestResolver_LiteralValuesPassThrough(t *testing.T) {
	resolver := NewResolver(nil)

	template := map[string]interface{}{
		"s":      "no references here",
		"braces": "{{not a reference}}",
		"n":      42.0,
		"b":      true,
		"nil":    nil,
	}

	resolved, err := resolver.ResolveDocument(template, domain.NewExecutionResults())
	require.NoError(t, err)
	assert.Equal(t, template, resolved)
}

func TestResolver_ResolutionIsIdempotent(t *testing.T) {
	resolver := NewResolver(nil)
	results := recordedResults(t, map[string]interface{}{
		"a": map[string]interface{}{"items": []interface{}{"p", "q"}},
	})

	template := map[string]interface{}{
		"v":    "{{a.items}}",
		"text": "first is {{a.items[0]}}",
	}

	first, err := resolver.ResolveDocument(template, results)
	require.NoError(t, err)

	// mutate the first resolution; the second must not see it
	first["v"].([]interface{})[0] = "mutated"

	second, err := resolver.ResolveDocument(template, results)
	require.NoError(t, err)

	assert.Equal(t, "p", second["v"].([]interface{})[0])
	assert.Equal(t, "first is p", second["text"])
}
