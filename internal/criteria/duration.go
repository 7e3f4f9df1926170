package criteria

import (
	"math"
	"strconv"
	"strings"

	"github.com/kushwahaPrashant24/blocktube/internal/tree"
)

// NotComparable is returned by ParseDuration for values outside the grammar.
const NotComparable = -1

// ParseDuration converts a duration value to seconds. Strings follow the
// grammar H:MM:SS, MM:SS or SS with base-10 parts; numbers are taken as
// seconds. Anything else yields NotComparable.
func ParseDuration(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return NotComparable
		}

		return int(n)
	}

	s, ok := tree.String(v)
	if !ok {
		return NotComparable
	}

	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) > 3 {
		return NotComparable
	}

	seconds := 0

	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return NotComparable
		}

		seconds = seconds*60 + n
	}

	return seconds
}
