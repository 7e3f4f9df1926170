package filter

import (
	"sort"

	"github.com/kushwahaPrashant24/blocktube/internal/criteria"
	"github.com/kushwahaPrashant24/blocktube/internal/tree"
)

// Properties maps a criteria attribute to the path of its value inside a
// tagged sub-object.
type Properties map[string]tree.PathSpec

// SideEffect is invoked with the node that owns a matched tag. It may mutate
// node[tag] or anything below it and returns whether node[tag] should be
// deleted. Returning false keeps the attribute. A side effect can cancel the
// whole pass with Session.Abort.
type SideEffect func(s *Session, node map[string]interface{}, tag string) bool

// PostAction runs once after a successful traversal. It may inspect or
// mutate the surviving document and may call Session.Abort.
type PostAction func(s *Session)

// Rule describes how to recognise a filterable sub-object under one tag.
// A rule without a side effect deletes the tagged attribute on match.
type Rule struct {
	Properties Properties
	SideEffect SideEffect
}

// Flat returns a rule that deletes on match.
func Flat(props Properties) Rule {
	return Rule{Properties: props}
}

// Extended returns a rule whose side effect decides what happens on match.
func Extended(props Properties, fx SideEffect) Rule {
	return Rule{Properties: props, SideEffect: fx}
}

// RuleSet maps a tag, an attribute name expected on a node, to its rule.
// The same tag triggers at every depth where it appears.
type RuleSet map[string]Rule

// Tags returns the tags of rs in ascending order.
func (rs RuleSet) Tags() []string {
	tags := make([]string, 0, len(rs))
	for tag := range rs {
		tags = append(tags, tag)
	}

	sort.Strings(tags)

	return tags
}

// Merge returns a new RuleSet holding rs overlaid with other.
func (rs RuleSet) Merge(other RuleSet) RuleSet {
	merged := make(RuleSet, len(rs)+len(other))
	for tag, rule := range rs {
		merged[tag] = rule
	}

	for tag, rule := range other {
		merged[tag] = rule
	}

	return merged
}

// Match is one tag of a node whose criteria matched.
type Match struct {
	Tag        string
	SideEffect SideEffect
}

// Match inspects the node's own attributes and returns every tag whose
// criteria matched the tagged value, in tag order.
func (rs RuleSet) Match(node map[string]interface{}, c *criteria.Criteria) []Match {
	return matchRules(node, rs, rs.Tags(), c)
}

func matchRules(node map[string]interface{}, rs RuleSet, tags []string, c *criteria.Criteria) []Match {
	var matches []Match

	for _, tag := range tags {
		target, ok := node[tag]
		if !ok || target == nil {
			continue
		}

		rule := rs[tag]
		if c.Match(rule.Properties, target) {
			matches = append(matches, Match{Tag: tag, SideEffect: rule.SideEffect})
		}
	}

	return matches
}
