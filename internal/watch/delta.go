package watch

import (
	"fmt"
	"strings"
)

// Delta describes how the counters of cur differ from prev, for example
// "removed +2, discarded -1". It returns "" when nothing changed.
func Delta(prev, cur *RunResult) string {
	if prev == nil || cur == nil {
		return ""
	}

	counters := []struct {
		name          string
		before, after int
	}{
		{"documents", prev.Documents, cur.Documents},
		{"discarded", prev.Discarded, cur.Discarded},
		{"matched", prev.Stats.Matched, cur.Stats.Matched},
		{"deleted", prev.Stats.Deleted, cur.Stats.Deleted},
		{"removed", prev.Stats.Removed, cur.Stats.Removed},
		{"collapsed", prev.Stats.Collapsed, cur.Stats.Collapsed},
	}

	var parts []string

	for _, c := range counters {
		if d := c.after - c.before; d != 0 {
			parts = append(parts, fmt.Sprintf("%s %+d", c.name, d))
		}
	}

	return strings.Join(parts, ", ")
}
