package filter

import (
	"slices"

	"github.com/kushwahaPrashant24/blocktube/internal/tree"
)

// filter walks node depth first, deleting matched attributes and emptied
// content. It returns the node to store back into the parent (sequences may
// shrink) and whether this node caused a deletion that the parent should
// consider for cascading.
func (s *Session) filter(node interface{}) (interface{}, bool) {
	if s.halted() {
		return node, false
	}

	s.depth++
	defer func() { s.depth-- }()

	switch n := node.(type) {
	case map[string]interface{}:
		return n, s.filterMapping(n)
	case []interface{}:
		return s.filterSequence(n)
	default:
		return node, false
	}
}

// halted reports whether the pass must unwind, recording context
// cancellation on the way.
func (s *Session) halted() bool {
	if s.aborted || s.err != nil {
		return true
	}

	if err := s.ctx.Err(); err != nil {
		s.err = err
		return true
	}

	return false
}

func (s *Session) filterMapping(node map[string]interface{}) bool {
	deleted := false

	for _, m := range matchRules(node, s.engine.rules, s.engine.tags, s.engine.criteria) {
		s.stats.Matched++

		remove := true
		if m.SideEffect != nil {
			remove = m.SideEffect(s, node, m.Tag)
			if s.aborted {
				return false
			}
		}

		if remove {
			delete(node, m.Tag)
			s.stats.Deleted++
			deleted = true
		}
	}

	// Last to first, so deletions never disturb keys still to be visited.
	keys := tree.SortedKeys(node)
	for i := len(keys) - 1; i >= 0; i-- {
		key := keys[i]

		child, ok := node[key]
		if !ok {
			continue
		}

		next, signal := s.filter(child)
		if s.halted() {
			return false
		}

		// A side effect may have replaced or deleted the attribute while its
		// subtree was being filtered; that change wins over the write-back.
		current, present := node[key]
		if !present {
			continue
		}

		if seq, isSeq := next.([]interface{}); isSeq {
			if cur, ok := current.([]interface{}); ok && sameSequence(cur, child.([]interface{})) {
				node[key] = seq
				current = seq
			}
		}

		if !signal {
			continue
		}

		// Only emptied sequences and allow-listed containers cascade upward;
		// any other signal is absorbed here.
		if seq, isSeq := current.([]interface{}); isSeq && len(seq) == 0 {
			deleted = true
		} else if s.engine.Cascades(key) {
			delete(node, key)
			s.stats.Collapsed++
			deleted = true
		}
	}

	return deleted
}

func (s *Session) filterSequence(seq []interface{}) ([]interface{}, bool) {
	deleted := false
	isRoot := s.depth == 1

	for i := len(seq) - 1; i >= 0; i-- {
		next, signal := s.filter(seq[i])
		if s.halted() {
			return seq, false
		}

		if signal {
			seq = slices.Delete(seq, i, i+1)
			s.stats.Removed++
			deleted = true

			if isRoot {
				s.root = seq
			}

			continue
		}

		seq[i] = next
	}

	return seq, deleted
}

// sameSequence reports whether a and b are the same slice header contents.
func sameSequence(a, b []interface{}) bool {
	if len(a) != len(b) {
		return false
	}

	return len(a) == 0 || &a[0] == &b[0]
}
