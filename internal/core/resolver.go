package core

import (
	"log/slog"
	"strings"

	"github.com/eleven-am/orchestra/internal/domain"
)

// Resolver substitutes variable references in an input template against the
// run's recorded results. Resolution is pure: the template and the result
// store are never mutated, so resolving twice yields identical documents.
type Resolver struct {
	logger *slog.Logger
}

func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		logger: logger.With("component", "resolver"),
	}
}

// ResolveDocument walks the template and replaces every reference. A value
// that is exactly one reference takes the referenced value's native type;
// references embedded in longer strings interpolate their stringified form.
func (r *Resolver) ResolveDocument(template map[string]interface{}, results *domain.ExecutionResults) (map[string]interface{}, error) {
	resolved := make(map[string]interface{}, len(template))
	for key, value := range template {
		rv, err := r.resolveValue(value, results)
		if err != nil {
			return nil, err
		}
		resolved[key] = rv
	}
	return resolved, nil
}

func (r *Resolver) resolveValue(value interface{}, results *domain.ExecutionResults) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return r.resolveString(v, results)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, elem := range v {
			rv, err := r.resolveValue(elem, results)
			if err != nil {
				return nil, err
			}
			out[key] = rv
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, elem := range v {
			rv, err := r.resolveValue(elem, results)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	default:
		return value, nil
	}
}

func (r *Resolver) resolveString(s string, results *domain.ExecutionResults) (interface{}, error) {
	if ref, ok := domain.FullReference(s); ok {
		value, err := domain.ResolveReference(ref, results)
		if err != nil {
			return nil, err
		}
		return domain.DeepCopyValue(value), nil
	}

	matches := domain.ScanReferences(s)
	if len(matches) == 0 {
		return s, nil
	}

	var b strings.Builder
	pos := 0
	for _, match := range matches {
		value, err := domain.ResolveReference(match.Ref, results)
		if err != nil {
			return nil, err
		}
		b.WriteString(s[pos:match.Start])
		b.WriteString(domain.Stringify(value))
		pos = match.End
	}
	b.WriteString(s[pos:])

	return b.String(), nil
}
