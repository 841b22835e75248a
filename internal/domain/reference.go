package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// A variable reference addresses a prior step's output with the grammar
//
//	{{source(.field | [index] | .index)*}}
//
// where source and field are runs of letters, digits, '_' or '-'. A path
// segment that is entirely numeric is always interpreted as an array index,
// never as an object key; this is a fixed parsing rule, not inferred from
// the value it is applied to.
type Reference struct {
	Raw    string
	Source string
	Path   []PathSegment
}

// PathSegment is one field access or one index access.
type PathSegment struct {
	Field   string
	Index   int
	IsIndex bool
}

func (p PathSegment) String() string {
	if p.IsIndex {
		return "[" + strconv.Itoa(p.Index) + "]"
	}
	return p.Field
}

// ReferenceMatch locates one well-formed reference inside a larger string.
// Start and End are byte offsets spanning the braces.
type ReferenceMatch struct {
	Start int
	End   int
	Ref   *Reference
}

func isIdentByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' ||
		b >= '0' && b <= '9' || b == '_' || b == '-'
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseReference parses the inner expression of a reference, without the
// surrounding braces. A bare source with no path addresses the step's whole
// output document.
func ParseReference(expr string) (*Reference, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty reference expression")
	}

	pos := 0
	for pos < len(expr) && isIdentByte(expr[pos]) {
		pos++
	}
	source := expr[:pos]
	if source == "" {
		return nil, fmt.Errorf("reference %q has no source step", expr)
	}
	if isAllDigits(source) {
		return nil, fmt.Errorf("reference %q source cannot be numeric", expr)
	}

	ref := &Reference{Raw: expr, Source: source}

	for pos < len(expr) {
		switch expr[pos] {
		case '.':
			pos++
			start := pos
			for pos < len(expr) && isIdentByte(expr[pos]) {
				pos++
			}
			seg := expr[start:pos]
			if seg == "" {
				return nil, fmt.Errorf("reference %q has an empty path segment", expr)
			}
			if isAllDigits(seg) {
				idx, err := strconv.Atoi(seg)
				if err != nil {
					return nil, fmt.Errorf("reference %q has invalid index %q", expr, seg)
				}
				ref.Path = append(ref.Path, PathSegment{Index: idx, IsIndex: true})
			} else {
				ref.Path = append(ref.Path, PathSegment{Field: seg})
			}
		case '[':
			end := strings.IndexByte(expr[pos:], ']')
			if end < 0 {
				return nil, fmt.Errorf("reference %q has an unterminated index", expr)
			}
			seg := expr[pos+1 : pos+end]
			if !isAllDigits(seg) {
				return nil, fmt.Errorf("reference %q has non-numeric index %q", expr, seg)
			}
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return nil, fmt.Errorf("reference %q has invalid index %q", expr, seg)
			}
			ref.Path = append(ref.Path, PathSegment{Index: idx, IsIndex: true})
			pos += end + 1
		default:
			return nil, fmt.Errorf("reference %q has unexpected character %q", expr, expr[pos])
		}
	}

	return ref, nil
}

// ScanReferences finds every well-formed reference in s. Brace pairs whose
// contents do not match the grammar are left alone and treated as literal
// text by the resolver.
func ScanReferences(s string) []ReferenceMatch {
	var matches []ReferenceMatch

	pos := 0
	for {
		open := strings.Index(s[pos:], "{{")
		if open < 0 {
			return matches
		}
		open += pos

		close := strings.Index(s[open+2:], "}}")
		if close < 0 {
			return matches
		}
		close += open + 2

		ref, err := ParseReference(s[open+2 : close])
		if err == nil {
			matches = append(matches, ReferenceMatch{
				Start: open,
				End:   close + 2,
				Ref:   ref,
			})
		}
		pos = close + 2
	}
}

// FullReference reports whether s consists of exactly one reference and
// nothing else. Such values resolve to the referenced value's native type
// instead of interpolating into a string.
func FullReference(s string) (*Reference, bool) {
	if len(s) < 4 || !strings.HasPrefix(s, "{{") || !strings.HasSuffix(s, "}}") {
		return nil, false
	}
	inner := s[2 : len(s)-2]
	if strings.Contains(inner, "{{") || strings.Contains(inner, "}}") {
		return nil, false
	}
	ref, err := ParseReference(inner)
	if err != nil {
		return nil, false
	}
	return ref, true
}

// ResolveReference looks up the reference's source step and walks its path.
// The returned value aliases the stored result; callers that embed it into
// another document must deep-copy it first.
func ResolveReference(ref *Reference, results *ExecutionResults) (interface{}, error) {
	value, ok := results.Lookup(ref.Source)
	if !ok {
		return nil, NewUnresolvedReferenceError(ref.Raw, ref.Source, results.StepNames())
	}

	for _, seg := range ref.Path {
		if seg.IsIndex {
			arr, ok := value.([]interface{})
			if !ok {
				return nil, NewPathResolutionError(ref.Raw, seg.String(),
					fmt.Sprintf("cannot index into %s value", KindOf(value)))
			}
			if seg.Index < 0 || seg.Index >= len(arr) {
				return nil, NewPathResolutionError(ref.Raw, seg.String(),
					fmt.Sprintf("index %d out of range for array of length %d", seg.Index, len(arr)))
			}
			value = arr[seg.Index]
			continue
		}

		obj, ok := value.(map[string]interface{})
		if !ok {
			return nil, NewPathResolutionError(ref.Raw, seg.String(),
				fmt.Sprintf("cannot access field %q on %s value", seg.Field, KindOf(value)))
		}
		next, ok := obj[seg.Field]
		if !ok {
			return nil, NewPathResolutionError(ref.Raw, seg.String(),
				fmt.Sprintf("field %q not present in object", seg.Field))
		}
		value = next
	}

	return value, nil
}
