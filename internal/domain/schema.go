package domain

import (
	"fmt"
	"math"
)

type FieldType string

const (
	FieldString      FieldType = "string"
	FieldInteger     FieldType = "integer"
	FieldFloat       FieldType = "float"
	FieldBoolean     FieldType = "boolean"
	FieldArray       FieldType = "array"
	FieldObject      FieldType = "object"
	FieldStringArray FieldType = "array-of-string"
)

type InputSchema struct {
	Required []string             `json:"required"`
	Optional []string             `json:"optional,omitempty"`
	Types    map[string]FieldType `json:"types,omitempty"`
}

// NodeSchema is the static descriptor of a node: its identity, the
// executable contract, and the input/output field surface. Read-only during
// execution.
type NodeSchema struct {
	Name         string                 `json:"name"`
	Description  string                 `json:"description,omitempty"`
	Language     string                 `json:"language,omitempty"`
	Entrypoint   string                 `json:"entrypoint,omitempty"`
	InputSchema  InputSchema            `json:"input_schema"`
	OutputSchema []string               `json:"output_schema,omitempty"`
	Defaults     map[string]interface{} `json:"defaults,omitempty"`
}

// Validate reports descriptor-level problems as plain strings, one per
// problem, matching how broken descriptors are surfaced during discovery.
func (s *NodeSchema) Validate() []string {
	var problems []string

	if s.Name == "" {
		problems = append(problems, "missing required field: name")
	}

	for _, field := range s.InputSchema.Required {
		if field == "" {
			problems = append(problems, "input_schema.required contains an empty field name")
		}
	}

	for field, ft := range s.InputSchema.Types {
		if !knownFieldType(ft) {
			problems = append(problems, fmt.Sprintf("input_schema.types[%s]: unknown type %q", field, ft))
		}
	}

	return problems
}

func (s *NodeSchema) FieldType(field string) (FieldType, bool) {
	ft, ok := s.InputSchema.Types[field]
	return ft, ok
}

func knownFieldType(ft FieldType) bool {
	switch ft {
	case FieldString, FieldInteger, FieldFloat, FieldBoolean, FieldArray, FieldObject, FieldStringArray:
		return true
	}
	return false
}

// MatchesFieldType reports whether a decoded JSON literal satisfies a
// declared field type. Best effort: only statically known literals are ever
// checked against this.
func MatchesFieldType(ft FieldType, v interface{}) bool {
	switch ft {
	case FieldString:
		return KindOf(v) == KindString
	case FieldBoolean:
		return KindOf(v) == KindBool
	case FieldFloat:
		return KindOf(v) == KindNumber
	case FieldInteger:
		n, ok := v.(float64)
		return ok && n == math.Trunc(n)
	case FieldObject:
		return IsObject(v)
	case FieldArray:
		return IsArray(v)
	case FieldStringArray:
		arr, ok := v.([]interface{})
		if !ok {
			return false
		}
		for _, e := range arr {
			if _, ok := e.(string); !ok {
				return false
			}
		}
		return true
	}
	return true
}
