package domain

import (
	"fmt"
	"math"

	"github.com/eleven-am/orchestra/internal/xjson"
)

// Node inputs and outputs are arbitrary JSON documents decoded into
// interface{} trees: nil, bool, float64, string, []interface{} and
// map[string]interface{}. ValueKind tags the shape explicitly so callers
// never branch on reflection.
type ValueKind string

const (
	KindNull   ValueKind = "null"
	KindBool   ValueKind = "boolean"
	KindNumber ValueKind = "number"
	KindString ValueKind = "string"
	KindArray  ValueKind = "array"
	KindObject ValueKind = "object"
)

func KindOf(v interface{}) ValueKind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case float64, float32, int, int32, int64:
		return KindNumber
	case string:
		return KindString
	case []interface{}:
		return KindArray
	case map[string]interface{}:
		return KindObject
	default:
		return KindObject
	}
}

func IsObject(v interface{}) bool {
	_, ok := v.(map[string]interface{})
	return ok
}

func IsArray(v interface{}) bool {
	_, ok := v.([]interface{})
	return ok
}

// AsInt converts a decoded JSON number to an int when it carries an
// integral value.
func AsInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	}
	return 0, false
}

// DeepCopyValue clones a decoded JSON tree. Recorded step outputs and
// substituted reference values are always copies, so later mutation of one
// document can never reach another.
func DeepCopyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = DeepCopyValue(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = DeepCopyValue(e)
		}
		return out
	default:
		return t
	}
}

func DeepCopyDocument(doc map[string]interface{}) map[string]interface{} {
	if doc == nil {
		return nil
	}
	return DeepCopyValue(doc).(map[string]interface{})
}

// Stringify renders a value for string interpolation. Scalars use their
// plain form, composites their compact JSON form.
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return fmt.Sprintf("%t", t)
	case float64:
		return fmt.Sprintf("%v", t)
	default:
		data, err := xjson.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
