package tree

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Normalize reduces a sequence of text fragments ("runs") to a single
// string: the "text" field of every mapping element, joined with a single
// space. Elements without a text field are skipped. Any other value is
// returned unchanged.
func Normalize(v interface{}) interface{} {
	seq, ok := v.([]interface{})
	if !ok {
		return v
	}

	parts := make([]string, 0, len(seq))

	for _, el := range seq {
		m, ok := el.(map[string]interface{})
		if !ok {
			continue
		}

		text, ok := m["text"]
		if !ok {
			continue
		}

		if s, ok := String(text); ok {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, " ")
}

// String renders a scalar as text. Mappings, sequences and null report false.
func String(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case json.Number:
		return s.String(), true
	default:
		return "", false
	}
}

// SortedKeys returns the keys of m in ascending order. Traversals use it to
// visit mappings deterministically.
func SortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
