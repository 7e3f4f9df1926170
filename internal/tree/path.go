// Package tree navigates decoded JSON documents. A document is built from
// map[string]interface{} mappings, []interface{} sequences and scalars, the
// shapes produced by the ojg and encoding/json decoders.
package tree

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PathSpec is an ordered list of dotted attribute paths. Resolution tries each
// path in turn and the first one that resolves wins.
type PathSpec []string

// Path builds a PathSpec from one or more alternative dotted paths.
func Path(alternatives ...string) PathSpec {
	return PathSpec(alternatives)
}

// UnmarshalJSON accepts either a single path string or a list of paths.
func (p *PathSpec) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*p = PathSpec{single}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("path spec must be a string or a list of strings: %w", err)
	}

	*p = list

	return nil
}

// String joins the alternatives with " | ".
func (p PathSpec) String() string {
	return strings.Join(p, " | ")
}

// Resolve returns the value addressed by the first alternative of spec that
// resolves against node. The boolean is false when no alternative resolves.
// A JSON null counts as resolved.
func Resolve(node interface{}, spec PathSpec) (interface{}, bool) {
	for _, path := range spec {
		if v, ok := resolvePath(node, path); ok {
			return v, true
		}
	}

	return nil, false
}

// resolvePath walks one dotted path. On a sequence the segment is looked up
// in the first mapping element that owns it; there is no index addressing.
func resolvePath(node interface{}, path string) (interface{}, bool) {
	if path == "" {
		return nil, false
	}

	current := node

	for _, seg := range strings.Split(path, ".") {
		switch c := current.(type) {
		case map[string]interface{}:
			next, ok := c[seg]
			if !ok {
				return nil, false
			}

			current = next
		case []interface{}:
			next, ok := firstOwner(c, seg)
			if !ok {
				return nil, false
			}

			current = next
		default:
			return nil, false
		}
	}

	return current, true
}

func firstOwner(seq []interface{}, key string) (interface{}, bool) {
	for _, el := range seq {
		m, ok := el.(map[string]interface{})
		if !ok {
			continue
		}

		if v, ok := m[key]; ok {
			return v, true
		}
	}

	return nil, false
}

// MappingAt resolves spec and returns the result when it is a mapping.
func MappingAt(node interface{}, spec PathSpec) (map[string]interface{}, bool) {
	v, ok := Resolve(node, spec)
	if !ok {
		return nil, false
	}

	m, ok := v.(map[string]interface{})

	return m, ok
}

// SequenceAt resolves spec and returns the result when it is a sequence.
func SequenceAt(node interface{}, spec PathSpec) ([]interface{}, bool) {
	v, ok := Resolve(node, spec)
	if !ok {
		return nil, false
	}

	s, ok := v.([]interface{})

	return s, ok
}
